package resource

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type supportedLanguage struct {
	name string
	tag  language.Tag
}

// Translation targets are fixed; the source language is always English.
var supportedLanguages = []supportedLanguage{
	{name: "French", tag: language.MustParse("fr")},
	{name: "Hindi", tag: language.MustParse("hi")},
	{name: "Telugu", tag: language.MustParse("te")},
	{name: "Spanish", tag: language.MustParse("es")},
	{name: "German", tag: language.MustParse("de")},
	{name: "Italian", tag: language.MustParse("it")},
}

var languageLookup = buildLanguageLookup()

func buildLanguageLookup() map[string]string {
	out := make(map[string]string, len(supportedLanguages)*4)
	for _, l := range supportedLanguages {
		out[strings.ToLower(l.name)] = l.name
		out[strings.ToLower(l.tag.String())] = l.name
		if self := display.Self.Name(l.tag); self != "" {
			out[strings.ToLower(self)] = l.name
		}
		if en := display.English.Languages().Name(l.tag); en != "" {
			out[strings.ToLower(en)] = l.name
		}
	}
	return out
}

// SupportedLanguages returns the canonical names of the translation targets.
func SupportedLanguages() []string {
	out := make([]string, len(supportedLanguages))
	for i, l := range supportedLanguages {
		out[i] = l.name
	}
	return out
}

// CanonicalLanguage resolves a language name ("french"), autonym ("français")
// or BCP 47 tag ("fr", "fr-CA", "fra") to its canonical name.
func CanonicalLanguage(key string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return "", false
	}
	if name, ok := languageLookup[k]; ok {
		return name, true
	}
	tag, err := language.Parse(k)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	name, ok := languageLookup[base.String()]
	return name, ok
}

// LanguageTag returns the BCP 47 tag of a supported language.
func LanguageTag(name string) (language.Tag, bool) {
	canonical, ok := CanonicalLanguage(name)
	if !ok {
		return language.Und, false
	}
	for _, l := range supportedLanguages {
		if l.name == canonical {
			return l.tag, true
		}
	}
	return language.Und, false
}
