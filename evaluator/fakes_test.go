package evaluator

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"yashubustudio/texteval/internal/backend"
	"yashubustudio/texteval/internal/logger"
	"yashubustudio/texteval/internal/resource"
)

// fakeLM tokenizes on whitespace and returns uniform logits, so perplexity is
// always exactly vocab.
type fakeLM struct {
	vocab  int
	maxLen int
	panics bool
	err    error
	calls  atomic.Int32
}

func (f *fakeLM) Encode(text string) ([]int64, error) {
	words := strings.Fields(text)
	ids := make([]int64, len(words))
	for i, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		ids[i] = int64(h.Sum32() % uint32(f.vocab))
	}
	return ids, nil
}

func (f *fakeLM) Logits(_ context.Context, ids []int64) ([]float32, error) {
	f.calls.Add(1)
	if f.panics {
		panic("tensor shape mismatch")
	}
	if f.err != nil {
		return nil, f.err
	}
	return make([]float32, len(ids)*f.vocab), nil
}

func (f *fakeLM) VocabSize() int         { return f.vocab }
func (f *fakeLM) MaxSequenceLength() int { return f.maxLen }

var _ backend.CausalLM = (*fakeLM)(nil)

func lmLoader(lm backend.CausalLM) Loader {
	return func(context.Context, string) (resource.Backend, error) {
		return lm, nil
	}
}

// fakeTransformer echoes its input with a prefix and records every call.
type fakeTransformer struct {
	prefix string
	err    error

	mu     sync.Mutex
	params []backend.Params
}

func (f *fakeTransformer) Transform(_ context.Context, text string, p backend.Params) (string, error) {
	f.mu.Lock()
	f.params = append(f.params, p)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.prefix + text, nil
}

// recordingLoader counts loads and remembers the keys it was called with.
type recordingLoader struct {
	backend resource.Backend
	err     error

	mu   sync.Mutex
	keys []string
}

func (r *recordingLoader) load(_ context.Context, key string) (resource.Backend, error) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.backend, nil
}

func (r *recordingLoader) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

var errBackendDown = errors.New("backend unavailable")

func quietLogger() *logger.Logger {
	return logger.New(io.Discard, "error")
}

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return NewEngine(Config{}, opts...)
}
