package scoring

import (
	"math"
	"strings"
)

// DefaultMaxOrder is the longest n-gram BLEU considers.
const DefaultMaxOrder = 4

// BLEU is a sentence-level BLEU scorer with add-one smoothing on every
// n-gram order, so partial overlaps never collapse to zero.
type BLEU struct {
	MaxOrder int
}

// NewBLEU returns a scorer; maxOrder <= 0 falls back to DefaultMaxOrder.
func NewBLEU(maxOrder int) *BLEU {
	if maxOrder <= 0 {
		maxOrder = DefaultMaxOrder
	}
	return &BLEU{MaxOrder: maxOrder}
}

// Score compares candidate with reference on a 0..100 scale, rounded to two
// decimals. Identical non-blank texts score 100 even when they hold no word
// or punctuation tokens; otherwise either side empty after tokenizing scores 0.
func (b *BLEU) Score(reference, candidate string) float64 {
	if reference == candidate && strings.TrimSpace(reference) != "" {
		return 100
	}
	return Round(b.ScoreTokens(Tokenize(reference), Tokenize(candidate))*100, 2)
}

// ScoreTokens returns BLEU in 0..1 for pre-tokenized input.
func (b *BLEU) ScoreTokens(reference, candidate []string) float64 {
	if len(reference) == 0 || len(candidate) == 0 {
		return 0
	}
	order := b.MaxOrder
	if order <= 0 {
		order = DefaultMaxOrder
	}
	if order > len(candidate) {
		order = len(candidate)
	}

	var logSum float64
	for n := 1; n <= order; n++ {
		cand := ngramCounts(candidate, n)
		ref := ngramCounts(reference, n)
		var matches, total int
		for g, c := range cand {
			total += c
			matches += min(c, ref[g])
		}
		logSum += math.Log(float64(matches+1) / float64(total+1))
	}

	bp := 1.0
	if c, r := len(candidate), len(reference); c < r {
		bp = math.Exp(1 - float64(r)/float64(c))
	}
	return bp * math.Exp(logSum/float64(order))
}

// RougeScore is precision, recall and F1 of one ROUGE variant.
type RougeScore struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// RougeN scores n-gram overlap of the candidate against the reference.
// Punctuation tokens are ignored.
func RougeN(reference, candidate []string, n int) RougeScore {
	reference, candidate = WordTokens(reference), WordTokens(candidate)
	ref := ngramCounts(reference, n)
	cand := ngramCounts(candidate, n)
	var overlap, refTotal, candTotal int
	for g, c := range cand {
		candTotal += c
		overlap += min(c, ref[g])
	}
	for _, c := range ref {
		refTotal += c
	}
	return newRougeScore(overlap, candTotal, refTotal)
}

// RougeL scores the longest common subsequence of the two token streams.
func RougeL(reference, candidate []string) RougeScore {
	reference, candidate = WordTokens(reference), WordTokens(candidate)
	return newRougeScore(lcsLength(reference, candidate), len(candidate), len(reference))
}

func newRougeScore(overlap, candTotal, refTotal int) RougeScore {
	var s RougeScore
	if candTotal > 0 {
		s.Precision = float64(overlap) / float64(candTotal)
	}
	if refTotal > 0 {
		s.Recall = float64(overlap) / float64(refTotal)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

func ngramCounts(tokens []string, n int) map[string]int {
	out := make(map[string]int)
	if n <= 0 {
		return out
	}
	for i := 0; i+n <= len(tokens); i++ {
		out[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return out
}

func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

const (
	RatingExcellent        = "Excellent"
	RatingGood             = "Good"
	RatingNeedsImprovement = "Needs Improvement"
)

// Rating buckets the mean F1 of the given ROUGE scores.
func Rating(scores ...RougeScore) string {
	if len(scores) == 0 {
		return RatingNeedsImprovement
	}
	var sum float64
	for _, s := range scores {
		sum += s.F1
	}
	switch mean := sum / float64(len(scores)); {
	case mean >= 0.5:
		return RatingExcellent
	case mean >= 0.3:
		return RatingGood
	default:
		return RatingNeedsImprovement
	}
}
