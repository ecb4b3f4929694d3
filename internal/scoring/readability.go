package scoring

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TextCounts are the raw quantities every readability formula is built from.
type TextCounts struct {
	Words        int
	Sentences    int
	Syllables    int
	Letters      int
	ComplexWords int // three or more syllables
}

// Count tallies words, sentences, syllables and letters in text.
func Count(text string) TextCounts {
	var c TextCounts
	words := splitWords(text)
	c.Words = len(words)
	if c.Words == 0 {
		return c
	}
	for _, w := range words {
		s := Syllables(w)
		c.Syllables += s
		if s >= 3 {
			c.ComplexWords++
		}
		for _, r := range w {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				c.Letters++
			}
		}
	}
	c.Sentences = countSentences(text)
	return c
}

// FleschKincaidGrade returns the US grade level, rounded to two decimals.
// Text without words scores 0.
func FleschKincaidGrade(text string) float64 {
	c := Count(text)
	if c.Words == 0 {
		return 0
	}
	return Round(0.39*c.wordsPerSentence()+11.8*c.syllablesPerWord()-15.59, 2)
}

// FleschReadingEase is higher for easier text; 60-70 reads as plain English.
func FleschReadingEase(text string) float64 {
	c := Count(text)
	if c.Words == 0 {
		return 0
	}
	return Round(206.835-1.015*c.wordsPerSentence()-84.6*c.syllablesPerWord(), 2)
}

func GunningFog(text string) float64 {
	c := Count(text)
	if c.Words == 0 {
		return 0
	}
	return Round(0.4*(c.wordsPerSentence()+100*float64(c.ComplexWords)/float64(c.Words)), 2)
}

func SMOGIndex(text string) float64 {
	c := Count(text)
	if c.Words == 0 {
		return 0
	}
	return Round(1.043*math.Sqrt(float64(c.ComplexWords)*30/float64(c.Sentences))+3.1291, 2)
}

func AutomatedReadabilityIndex(text string) float64 {
	c := Count(text)
	if c.Words == 0 {
		return 0
	}
	return Round(4.71*float64(c.Letters)/float64(c.Words)+0.5*c.wordsPerSentence()-21.43, 2)
}

func ColemanLiauIndex(text string) float64 {
	c := Count(text)
	if c.Words == 0 {
		return 0
	}
	l := float64(c.Letters) / float64(c.Words) * 100
	s := float64(c.Sentences) / float64(c.Words) * 100
	return Round(0.0588*l-0.296*s-15.8, 2)
}

func (c TextCounts) wordsPerSentence() float64 {
	return float64(c.Words) / float64(max(c.Sentences, 1))
}

func (c TextCounts) syllablesPerWord() float64 {
	return float64(c.Syllables) / float64(c.Words)
}

// Syllables estimates the syllable count of an English word by counting vowel
// groups, dropping a silent trailing e. Every word has at least one.
func Syllables(word string) int {
	w := strings.ToLower(word)
	letters := make([]rune, 0, len(w))
	for _, r := range w {
		if r >= 'a' && r <= 'z' {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return 1
	}
	if len(letters) <= 3 {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range letters {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	n := len(letters)
	if letters[n-1] == 'e' && !(letters[n-2] == 'l' && !isVowel(letters[n-3])) && count > 1 {
		count--
	}
	if n > 3 && letters[n-2] == 'e' && letters[n-1] == 'd' && count > 1 {
		if p := letters[n-3]; p != 't' && p != 'd' {
			count--
		}
	}
	return max(count, 1)
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func splitWords(text string) []string {
	fields := strings.FieldsFunc(norm.NFKC.String(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '\'' || r == '’')
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'’")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// countSentences counts runs of text terminated by . ! or ? that contain a
// word; trailing text without a terminator counts as one more sentence.
func countSentences(text string) int {
	n := 0
	hasWord := false
	for _, r := range text {
		switch {
		case r == '.' || r == '!' || r == '?':
			if hasWord {
				n++
			}
			hasWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			hasWord = true
		}
	}
	if hasWord {
		n++
	}
	return max(n, 1)
}
