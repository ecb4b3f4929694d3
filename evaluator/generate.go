package evaluator

import (
	"context"
	"fmt"
	"strings"

	"yashubustudio/texteval/internal/backend"
)

// Generate produces a summary or paraphrase of text with the named generation
// model; an empty model uses the configured default. p.Task defaults to
// summarization. The result is typically passed to Evaluate as the candidate.
func (e *Engine) Generate(ctx context.Context, model, text string, p Params) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if model == "" {
		model = e.Config().Generation.Model
	}
	if p.Task == "" {
		p.Task = backend.TaskSummarize
	}
	b, err := e.cache.Acquire(ctx, KindGenerationModel, model)
	if err != nil {
		return "", fmt.Errorf("generate with %s: %w", model, err)
	}
	tr, ok := b.(backend.Transformer)
	if !ok {
		return "", fmt.Errorf("generate with %s: %w: %T", model, ErrBackendType, b)
	}
	out, err := tr.Transform(ctx, text, p)
	if err != nil {
		e.log().Warn("generation failed", "model", model, "task", string(p.Task), "error", err)
		return "", fmt.Errorf("generate with %s: %w", model, err)
	}
	return strings.TrimSpace(out), nil
}
