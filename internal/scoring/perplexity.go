package scoring

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrTooFewTokens = errors.New("perplexity needs at least two tokens")
	ErrNonFinite    = errors.New("perplexity is not finite")
)

// Perplexity returns exp of the mean negative log-likelihood of ids[1:] given
// causal LM logits. logits is row-major [len(ids) x vocab]; row i-1 predicts
// token i, so the first token is never scored.
func Perplexity(ids []int64, logits []float32, vocab int) (float64, error) {
	if len(ids) < 2 {
		return 0, ErrTooFewTokens
	}
	if vocab <= 0 {
		return 0, fmt.Errorf("invalid vocab size %d", vocab)
	}
	if len(logits) < (len(ids)-1)*vocab {
		return 0, fmt.Errorf("logits too short: have %d, need %d", len(logits), (len(ids)-1)*vocab)
	}

	var nll float64
	for i := 1; i < len(ids); i++ {
		id := ids[i]
		if id < 0 || int(id) >= vocab {
			return 0, fmt.Errorf("token id %d outside vocab %d", id, vocab)
		}
		row := logits[(i-1)*vocab : i*vocab]
		nll -= logSoftmaxAt(row, int(id))
	}
	ppl := math.Exp(nll / float64(len(ids)-1))
	if math.IsNaN(ppl) || math.IsInf(ppl, 0) {
		return 0, ErrNonFinite
	}
	return ppl, nil
}

func logSoftmaxAt(row []float32, idx int) float64 {
	maxLogit := math.Inf(-1)
	for _, v := range row {
		if float64(v) > maxLogit {
			maxLogit = float64(v)
		}
	}
	var sum float64
	for _, v := range row {
		sum += math.Exp(float64(v) - maxLogit)
	}
	return float64(row[idx]) - maxLogit - math.Log(sum)
}
