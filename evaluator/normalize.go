package evaluator

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText performs Unicode normalization and trims whitespace.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.TrimSpace(normed)
	// Drop control characters except newlines and tabs.
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}

const keyCutset = " \t\r\n\ufeff\"'\u201c\u201d\u2018\u2019"

// referenceKey is the form both sides of a reference match are compared in:
// surrounding whitespace, quotes and byte order marks removed, case kept.
func referenceKey(text string) string {
	return strings.Trim(text, keyCutset)
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}
