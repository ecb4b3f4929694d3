package chat

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"yashubustudio/texteval/internal/backend"
)

// resultField is the JSON key the model is asked to answer under.
func resultField(task backend.Task) string {
	switch task {
	case backend.TaskSummarize:
		return "summary"
	case backend.TaskParaphrase:
		return "paraphrase"
	default:
		return "translation"
	}
}

func buildPrompt(text string, p backend.Params) (system, user string) {
	source := p.SourceLanguage
	if source == "" {
		source = "English"
	}
	field := resultField(p.Task)
	switch p.Task {
	case backend.TaskSummarize:
		system = fmt.Sprintf("You summarize %s text. Keep the key facts, drop detail, and write in %s.", source, source)
	case backend.TaskParaphrase:
		system = fmt.Sprintf("You paraphrase %s text. Keep the meaning, change the wording.", source)
	default:
		system = fmt.Sprintf("You are a professional translator. Translate the text from %s to %s. Preserve meaning, tone and punctuation.", source, p.TargetLanguage)
	}
	system += fmt.Sprintf(` Reply with a JSON object of the form {"%s": "..."} and nothing else.`, field)
	user = text
	return system, user
}

var fieldREs = map[string]*regexp.Regexp{}

func init() {
	for _, f := range []string{"translation", "summary", "paraphrase"} {
		fieldREs[f] = regexp.MustCompile(`(?s)"` + f + `"\s*:\s*"(.*?)"`)
	}
}

// extractField pulls field out of a model reply: plain JSON, a fenced block,
// an object embedded in prose, or labelled plain text.
func extractField(content, field string) (string, error) {
	s := strings.TrimSpace(content)
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := strings.TrimPrefix(s[idx+3:], "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			s = strings.TrimSpace(rest[:j])
		}
	}
	if v, ok := decodeField(s, field); ok {
		return v, nil
	}
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			if v, ok := decodeField(s[i:j+1], field); ok {
				return v, nil
			}
		}
	}
	if !strings.Contains(s, "{") {
		lower := strings.ToLower(s)
		for _, k := range []string{field + ":", "result:", "output:"} {
			if pos := strings.Index(lower, k); pos >= 0 && pos < 80 {
				if v := strings.TrimSpace(s[pos+len(k):]); v != "" {
					return v, nil
				}
			}
		}
		if s != "" {
			return s, nil
		}
	}
	return "", fmt.Errorf("failed to parse %s from reply: %s", field, abbreviate(s, 2000))
}

func decodeField(s, field string) (string, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err == nil {
		if v, ok := obj[field].(string); ok && v != "" {
			return v, true
		}
	}
	re := fieldREs[field]
	if re == nil {
		return "", false
	}
	if m := re.FindStringSubmatch(s); len(m) == 2 {
		v := strings.ReplaceAll(m[1], `\n`, "\n")
		return strings.ReplaceAll(v, `\"`, `"`), true
	}
	return "", false
}
