// Package backend declares the model surfaces the evaluator talks to. Concrete
// implementations live in the ort and chat subpackages; tests use fakes.
package backend

import "context"

// Task names the kind of text transformation a Transformer is asked for.
type Task string

const (
	TaskTranslate  Task = "translate"
	TaskSummarize  Task = "summarize"
	TaskParaphrase Task = "paraphrase"
)

// Params tune a single Transform call. Zero values mean backend defaults.
type Params struct {
	Task           Task
	SourceLanguage string
	TargetLanguage string
	Model          string
	MaxTokens      int
	Temperature    float64
}

// Transformer turns one text into another: a translation, a summary or a
// paraphrase. Implementations must be safe for concurrent use.
type Transformer interface {
	Transform(ctx context.Context, text string, p Params) (string, error)
}

// CausalLM is a left-to-right language model that exposes raw logits.
type CausalLM interface {
	// Encode converts text into model token ids.
	Encode(text string) ([]int64, error)
	// Logits runs a forward pass and returns row-major [len(ids) x VocabSize()] logits.
	Logits(ctx context.Context, ids []int64) ([]float32, error)
	VocabSize() int
	// MaxSequenceLength is the longest id sequence Logits accepts.
	MaxSequenceLength() int
}

// LexicalScorer compares a candidate with a reference on a 0..100 scale.
type LexicalScorer interface {
	Score(reference, candidate string) float64
}
