package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"hello", ",", "world", "!", "run", "dog", "."},
		Tokenize("Hello, World! Running dogs."))
	assert.Empty(t, Tokenize("   \n\t"))
	// Full-width letters fold to ASCII before stemming.
	assert.Equal(t, Tokenize("cats"), Tokenize("ｃａｔｓ"))
}

func TestWordTokens(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, WordTokens([]string{"hello", ",", "world", "!"}))
}

func TestBLEUIdenticalIsHundred(t *testing.T) {
	b := NewBLEU(0)
	for _, s := range []string{
		"The quick brown fox jumps over the lazy dog.",
		"Hi",
		"A summary, with punctuation; and more!",
	} {
		assert.Equal(t, 100.0, b.Score(s, s), s)
	}
}

func TestBLEUIdenticalFormatOnlyText(t *testing.T) {
	b := NewBLEU(4)
	assert.Empty(t, Tokenize("\u200b"))
	assert.Equal(t, 100.0, b.Score("\u200b", "\u200b"))
	assert.Equal(t, 100.0, b.Score("\u200b\u200d", "\u200b\u200d"))
	assert.Equal(t, 0.0, b.Score("\u200b", "\u200d"))
}

func TestBLEUEmptySideIsZero(t *testing.T) {
	b := NewBLEU(4)
	assert.Equal(t, 0.0, b.Score("", "something"))
	assert.Equal(t, 0.0, b.Score("something", ""))
	assert.Equal(t, 0.0, b.Score("   ", ""))
}

func TestBLEUPartialOverlap(t *testing.T) {
	b := NewBLEU(4)
	got := b.Score("The quick brown fox jumps over the lazy dog.", "A fast brown fox leaps over a lazy dog.")
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 100.0)
}

func TestBLEUScoreTokens(t *testing.T) {
	b := NewBLEU(4)

	got := b.ScoreTokens([]string{"a", "b", "c", "d"}, []string{"a", "b", "c", "e"})
	assert.InDelta(t, math.Pow(0.8*0.75*(2.0/3.0)*0.5, 0.25), got, 1e-9)

	// Short candidate: full precision, brevity penalty only.
	got = b.ScoreTokens([]string{"a", "b", "c", "d"}, []string{"a", "b"})
	assert.InDelta(t, math.Exp(-1), got, 1e-9)
}

func TestRouge(t *testing.T) {
	ref := Tokenize("the cat sat on the mat")
	cand := Tokenize("the cat sat")

	r1 := RougeN(ref, cand, 1)
	assert.InDelta(t, 1.0, r1.Precision, 1e-9)
	assert.InDelta(t, 0.5, r1.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, r1.F1, 1e-9)

	r2 := RougeN(ref, cand, 2)
	assert.InDelta(t, 1.0, r2.Precision, 1e-9)
	assert.InDelta(t, 0.4, r2.Recall, 1e-9)
	assert.InDelta(t, 0.8/1.4, r2.F1, 1e-9)

	rl := RougeL(ref, cand)
	assert.InDelta(t, 2.0/3.0, rl.F1, 1e-9)
}

func TestRougeIgnoresPunctuationAndEmpty(t *testing.T) {
	s := RougeN(Tokenize("Hello, world!"), Tokenize("hello world"), 1)
	assert.InDelta(t, 1.0, s.F1, 1e-9)

	assert.Equal(t, RougeScore{}, RougeN(nil, Tokenize("x"), 1))
	assert.Equal(t, RougeScore{}, RougeL(Tokenize("x"), nil))
}

func TestRating(t *testing.T) {
	tests := []struct {
		f1   float64
		want string
	}{
		{0.9, RatingExcellent},
		{0.5, RatingExcellent},
		{0.3, RatingGood},
		{0.29, RatingNeedsImprovement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Rating(RougeScore{F1: tt.f1}, RougeScore{F1: tt.f1}), tt.f1)
	}
	assert.Equal(t, RatingNeedsImprovement, Rating())
}
