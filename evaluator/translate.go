package evaluator

import (
	"context"
	"fmt"
	"strings"

	"yashubustudio/texteval/internal/backend"
	"yashubustudio/texteval/internal/resource"
	"yashubustudio/texteval/internal/telemetry"
)

// SupportedLanguages returns the canonical names of the translation targets.
func SupportedLanguages() []string {
	return resource.SupportedLanguages()
}

// Translate renders candidate in targetLanguage using the cached backend for
// that language.
//
// An unsupported language fails with ErrUnsupportedLanguage before any
// backend is loaded. Blank input returns "" without a backend. Every backend
// failure, including a failed load, is returned as *TranslationError.
func (e *Engine) Translate(ctx context.Context, candidate, targetLanguage string) (out string, err error) {
	language, ok := resource.CanonicalLanguage(targetLanguage)
	if !ok {
		telemetry.RecordTranslation("unsupported", ErrUnsupportedLanguage)
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, targetLanguage)
	}
	if strings.TrimSpace(candidate) == "" {
		return "", nil
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = "", &TranslationError{Language: language, Err: fmt.Errorf("panic: %v", r)}
		}
		telemetry.RecordTranslation(language, err)
		if err != nil {
			e.log().Warn("translation failed", "language", language, "error", err)
		}
	}()

	b, err := e.cache.Acquire(ctx, KindTranslationModel, language)
	if err != nil {
		return "", &TranslationError{Language: language, Err: err}
	}
	tr, ok := b.(backend.Transformer)
	if !ok {
		return "", &TranslationError{Language: language, Err: fmt.Errorf("%w: %T", ErrBackendType, b)}
	}
	out, err = tr.Transform(ctx, candidate, backend.Params{
		Task:           backend.TaskTranslate,
		SourceLanguage: "English",
		TargetLanguage: language,
	})
	if err != nil {
		return "", &TranslationError{Language: language, Err: err}
	}
	return strings.TrimSpace(out), nil
}
