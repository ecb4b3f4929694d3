// Package scoring holds the pure text metrics used by the evaluator: n-gram
// overlap, readability indices, perplexity from logits and simple text stats.
// Nothing here touches a model or the network.
package scoring

import (
	"math"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/unicode/norm"
)

// Tokenize splits text into lowercase stemmed word tokens and single-rune
// punctuation tokens. Both sides of every overlap metric go through it.
func Tokenize(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))
	var (
		out  []string
		word strings.Builder
	)
	flush := func() {
		if word.Len() == 0 {
			return
		}
		out = append(out, stem(word.String()))
		word.Reset()
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			word.WriteRune(r)
		case unicode.IsSpace(r) || unicode.IsControl(r):
			flush()
		default:
			flush()
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				out = append(out, string(r))
			}
		}
	}
	flush()
	return out
}

// WordTokens drops the punctuation tokens produced by Tokenize.
func WordTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if isWordToken(t) {
			out = append(out, t)
		}
	}
	return out
}

func isWordToken(t string) bool {
	for _, r := range t {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return false
}

// The snowball stemmer only knows English suffixes; leave other scripts alone.
func stem(word string) string {
	for _, r := range word {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return word
		}
	}
	return english.Stem(word, false)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
