package scoring

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// WordsPerMinute is the reading speed assumed by ReadingMinutes.
const WordsPerMinute = 200

// TextStats are the surface numbers shown next to a text.
type TextStats struct {
	Words          int `json:"words"`
	Sentences      int `json:"sentences"`
	Characters     int `json:"characters"`
	ReadingMinutes int `json:"readingMinutes"`
}

// Stats counts whitespace-separated words, sentence terminators and runes.
func Stats(text string) TextStats {
	words := len(strings.Fields(text))
	return TextStats{
		Words:          words,
		Sentences:      strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?"),
		Characters:     utf8.RuneCountInString(text),
		ReadingMinutes: ReadingMinutes(words),
	}
}

// ReadingMinutes rounds words/WordsPerMinute, never below one minute.
func ReadingMinutes(words int) int {
	return max(1, int(math.Round(float64(words)/WordsPerMinute)))
}

// CompressionRatio is the percentage of words removed going from original to
// candidate. Negative when the candidate is longer; 0 for an empty original.
func CompressionRatio(original, candidate string) float64 {
	o := len(strings.Fields(original))
	if o == 0 {
		return 0
	}
	c := len(strings.Fields(candidate))
	return Round((1-float64(c)/float64(o))*100, 2)
}

// WordEditRate is the word-level Levenshtein distance from reference to
// candidate divided by the reference length.
func WordEditRate(reference, candidate string) float64 {
	ref := WordTokens(Tokenize(reference))
	hyp := WordTokens(Tokenize(candidate))
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0
		}
		return 1
	}
	// Map each distinct word to one rune so the rune-based distance works on words.
	vocab := make(map[string]rune)
	encode := func(words []string) []rune {
		out := make([]rune, len(words))
		for i, w := range words {
			r, ok := vocab[w]
			if !ok {
				r = rune(0xE000 + len(vocab))
				vocab[w] = r
			}
			out[i] = r
		}
		return out
	}
	d := levenshtein.DistanceForStrings(encode(ref), encode(hyp), editOptions)
	return Round(float64(d)/float64(len(ref)), 4)
}

// CharEditRate is the character-level Levenshtein distance divided by the
// reference length, ignoring whitespace.
func CharEditRate(reference, candidate string) float64 {
	ref := []rune(strings.Join(strings.Fields(reference), ""))
	hyp := []rune(strings.Join(strings.Fields(candidate), ""))
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0
		}
		return 1
	}
	d := levenshtein.DistanceForStrings(ref, hyp, editOptions)
	return Round(float64(d)/float64(len(ref)), 4)
}

var editOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}
