// Package ort runs causal language models exported to ONNX through
// onnxruntime, with a HuggingFace tokenizer.json for tokenization.
package ort

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	onnx "github.com/yalue/onnxruntime_go"
)

// Config locates the model files.
type Config struct {
	ModelID       string
	OrtDLL        string
	ModelPath     string
	TokenizerPath string
	MaxSeqLen     int
	VocabSize     int
	InputNames    []string
	OutputName    string
}

const (
	defaultMaxSeqLen  = 1024
	defaultOutputName = "logits"
)

var defaultInputNames = []string{"input_ids", "attention_mask"}

var envMu sync.Mutex

// initEnvironment points onnxruntime at the shared library once per process.
func initEnvironment(dll string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if onnx.IsInitialized() {
		return nil
	}
	if dll != "" {
		onnx.SetSharedLibraryPath(dll)
	}
	if err := onnx.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// CausalLM is an ONNX causal language model.
type CausalLM struct {
	cfg     Config
	tk      *tokenizer.Tokenizer
	session *onnx.DynamicAdvancedSession

	// guards session
	mu sync.Mutex
}

// NewCausalLM loads the tokenizer and model session described by cfg.
func NewCausalLM(cfg Config) (*CausalLM, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is empty")
	}
	if cfg.TokenizerPath == "" {
		return nil, errors.New("tokenizer path is empty")
	}
	if cfg.ModelID == "" {
		cfg.ModelID = filepath.Base(cfg.ModelPath)
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = defaultMaxSeqLen
	}
	if len(cfg.InputNames) == 0 {
		cfg.InputNames = append([]string(nil), defaultInputNames...)
	}
	if cfg.OutputName == "" {
		cfg.OutputName = defaultOutputName
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", cfg.TokenizerPath, err)
	}
	if cfg.VocabSize <= 0 {
		cfg.VocabSize = tk.GetVocabSize(true)
	}
	if cfg.VocabSize <= 0 {
		return nil, errors.New("vocab size is unknown")
	}

	if err := initEnvironment(cfg.OrtDLL); err != nil {
		return nil, err
	}
	session, err := onnx.NewDynamicAdvancedSession(cfg.ModelPath, cfg.InputNames, []string{cfg.OutputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", cfg.ModelPath, err)
	}
	return &CausalLM{cfg: cfg, tk: tk, session: session}, nil
}

// ModelID returns the identifier the model was loaded under.
func (m *CausalLM) ModelID() string {
	return m.cfg.ModelID
}

func (m *CausalLM) VocabSize() int {
	return m.cfg.VocabSize
}

func (m *CausalLM) MaxSequenceLength() int {
	return m.cfg.MaxSeqLen
}

// Encode tokenizes text without special tokens.
func (m *CausalLM) Encode(text string) ([]int64, error) {
	if m == nil || m.tk == nil {
		return nil, errors.New("model is not initialized")
	}
	enc, err := m.tk.EncodeSingle(text, false)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	ids := make([]int64, len(enc.Ids))
	for i, id := range enc.Ids {
		ids[i] = int64(id)
	}
	return ids, nil
}

// Logits runs one forward pass over ids.
func (m *CausalLM) Logits(ctx context.Context, ids []int64) ([]float32, error) {
	if m == nil {
		return nil, errors.New("model is not initialized")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, errors.New("model is not initialized")
	}
	if len(ids) == 0 {
		return nil, errors.New("no tokens")
	}
	if len(ids) > m.cfg.MaxSeqLen {
		return nil, fmt.Errorf("sequence of %d tokens exceeds limit %d", len(ids), m.cfg.MaxSeqLen)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := int64(len(ids))
	inputs := make([]onnx.Value, 0, len(m.cfg.InputNames))
	defer func() {
		for _, v := range inputs {
			_ = v.Destroy()
		}
	}()
	for _, name := range m.cfg.InputNames {
		data, err := inputFor(name, ids)
		if err != nil {
			return nil, err
		}
		t, err := onnx.NewTensor(onnx.NewShape(1, n), data)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", name, err)
		}
		inputs = append(inputs, t)
	}

	out, err := onnx.NewEmptyTensor[float32](onnx.NewShape(1, n, int64(m.cfg.VocabSize)))
	if err != nil {
		return nil, fmt.Errorf("allocate logits: %w", err)
	}
	defer out.Destroy()

	if err := m.session.Run(inputs, []onnx.Value{out}); err != nil {
		return nil, fmt.Errorf("forward pass: %w", err)
	}

	data := out.GetData()
	logits := make([]float32, len(data))
	copy(logits, data)
	return logits, nil
}

// Close releases the onnxruntime session.
func (m *CausalLM) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		err := m.session.Destroy()
		m.session = nil
		return err
	}
	return nil
}

func inputFor(name string, ids []int64) ([]int64, error) {
	out := make([]int64, len(ids))
	switch name {
	case "input_ids":
		copy(out, ids)
	case "attention_mask":
		for i := range out {
			out[i] = 1
		}
	case "position_ids":
		for i := range out {
			out[i] = int64(i)
		}
	case "token_type_ids":
	default:
		return nil, fmt.Errorf("unsupported model input %q", name)
	}
	return out, nil
}
