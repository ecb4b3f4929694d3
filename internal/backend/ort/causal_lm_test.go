package ort

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCausalLMRequiresPaths(t *testing.T) {
	_, err := NewCausalLM(Config{TokenizerPath: "tokenizer.json"})
	assert.ErrorContains(t, err, "model path")

	_, err = NewCausalLM(Config{ModelPath: "model.onnx"})
	assert.ErrorContains(t, err, "tokenizer path")
}

func TestNewCausalLMMissingTokenizer(t *testing.T) {
	_, err := NewCausalLM(Config{
		ModelPath:     "model.onnx",
		TokenizerPath: t.TempDir() + "/missing.json",
	})
	assert.ErrorContains(t, err, "load tokenizer")
}

func TestInputFor(t *testing.T) {
	ids := []int64{464, 2068, 7586}

	got, err := inputFor("input_ids", ids)
	require.NoError(t, err)
	assert.Equal(t, ids, got)

	got, err = inputFor("attention_mask", ids)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 1}, got)

	got, err = inputFor("position_ids", ids)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, got)

	got, err = inputFor("token_type_ids", ids)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 0}, got)

	_, err = inputFor("past_key_values", ids)
	assert.Error(t, err)
}

func TestUninitializedModel(t *testing.T) {
	var m *CausalLM
	_, err := m.Encode("hello")
	assert.Error(t, err)
	_, err = m.Logits(context.Background(), []int64{1})
	assert.Error(t, err)
	assert.NoError(t, m.Close())
}

func TestClosedModelRejectsLogits(t *testing.T) {
	m := &CausalLM{cfg: Config{MaxSeqLen: 8, VocabSize: 4, InputNames: []string{"input_ids"}}}
	require.NoError(t, m.Close())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Logits(context.Background(), []int64{1, 2})
			assert.ErrorContains(t, err, "not initialized")
		}()
	}
	assert.NoError(t, m.Close())
	wg.Wait()
}
