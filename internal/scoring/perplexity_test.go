package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerplexityUniformLogits(t *testing.T) {
	const vocab = 4
	ids := []int64{0, 1, 2}
	logits := make([]float32, len(ids)*vocab)

	ppl, err := Perplexity(ids, logits, vocab)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, ppl, 1e-9)
}

func TestPerplexityUsesPreviousRow(t *testing.T) {
	const vocab = 3
	ids := []int64{0, 2, 1}
	// Row 0 predicts token 2, row 1 predicts token 1; row 2 is never read.
	logits := []float32{
		0, 0, 50,
		0, 50, 0,
		50, 0, 0,
	}
	ppl, err := Perplexity(ids, logits, vocab)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ppl, 1e-6)

	// Swapping the expected tokens makes the text very unlikely.
	bad, err := Perplexity([]int64{0, 1, 2}, logits, vocab)
	require.NoError(t, err)
	assert.Greater(t, bad, 1e6)
}

func TestPerplexityErrors(t *testing.T) {
	_, err := Perplexity([]int64{1}, make([]float32, 4), 4)
	assert.ErrorIs(t, err, ErrTooFewTokens)

	_, err = Perplexity([]int64{0, 9}, make([]float32, 8), 4)
	assert.Error(t, err)

	_, err = Perplexity([]int64{0, 1, 2}, make([]float32, 4), 4)
	assert.Error(t, err)

	_, err = Perplexity([]int64{0, 1}, make([]float32, 4), 0)
	assert.Error(t, err)

	nan := float32(math.NaN())
	_, err = Perplexity([]int64{0, 1}, []float32{nan, nan, nan, nan, 0, 0, 0, 0}, 4)
	assert.ErrorIs(t, err, ErrNonFinite)
}
