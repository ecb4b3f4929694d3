package resource

import (
	"errors"
	"fmt"
)

// Kind identifies the family of backend held by the cache.
type Kind int

const (
	// KindFluencyModel is a causal language model used for perplexity scoring.
	KindFluencyModel Kind = iota + 1
	// KindTranslationModel is one translation backend per target language.
	KindTranslationModel
	// KindLexicalScorer is an n-gram overlap scorer.
	KindLexicalScorer
	// KindGenerationModel is a summarization or paraphrasing backend.
	KindGenerationModel
)

func (k Kind) String() string {
	switch k {
	case KindFluencyModel:
		return "fluency"
	case KindTranslationModel:
		return "translation"
	case KindLexicalScorer:
		return "lexical"
	case KindGenerationModel:
		return "generation"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Handle identifies one cached backend. Translation keys are stored in their
// canonical language name so "fr" and "French" share an instance.
type Handle struct {
	Kind Kind
	Key  string
}

func (h Handle) String() string {
	return h.Kind.String() + "/" + h.Key
}

// Backend is whatever a Loader constructs. Callers type-assert to the
// interface they need.
type Backend any

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrNoLoader            = errors.New("no loader registered")
	ErrEmptyKey            = errors.New("resource key must not be empty")
	ErrUnknownKind         = errors.New("unknown resource kind")
)

// LoadError reports a failed backend construction. It is never cached, so
// acquiring the same handle again retries the load.
type LoadError struct {
	Handle Handle
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Handle, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
