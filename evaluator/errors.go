package evaluator

import (
	"errors"

	"yashubustudio/texteval/internal/resource"
)

var (
	// ErrUnsupportedLanguage reports a translation target outside the fixed set.
	ErrUnsupportedLanguage = resource.ErrUnsupportedLanguage
	ErrNoLoader            = resource.ErrNoLoader
	ErrEmptyKey            = resource.ErrEmptyKey

	ErrSequenceTooLong = errors.New("text exceeds the model's sequence limit")
	ErrBackendType     = errors.New("backend does not implement the required interface")
)

// LoadError reports a failed backend construction; acquiring again retries.
type LoadError = resource.LoadError

// TranslationError wraps any failure of the translation backend.
type TranslationError struct {
	Language string
	Err      error
}

func (e *TranslationError) Error() string {
	return "translation error: " + e.Err.Error()
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}
