package evaluator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"yashubustudio/texteval/internal/backend/chat"
	"yashubustudio/texteval/internal/backend/ort"
	"yashubustudio/texteval/internal/resource"
	"yashubustudio/texteval/internal/scoring"
)

func (e *Engine) loadFluencyModel(_ context.Context, modelID string) (resource.Backend, error) {
	cfg := e.Config().Fluency
	return ort.NewCausalLM(ort.Config{
		ModelID:       modelID,
		OrtDLL:        cfg.OrtDLL,
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		MaxSeqLen:     cfg.MaxSeqLen,
		VocabSize:     cfg.VocabSize,
		InputNames:    cfg.InputNames,
		OutputName:    cfg.OutputName,
	})
}

// lexicalKey is the cache key of a scorer: its name and n-gram order.
func lexicalKey(cfg LexicalConfig) string {
	return cfg.Scorer + "/" + strconv.Itoa(cfg.MaxOrder)
}

func (e *Engine) loadLexicalScorer(_ context.Context, key string) (resource.Backend, error) {
	name, rawOrder, hasOrder := strings.Cut(key, "/")
	order := e.Config().Lexical.MaxOrder
	if hasOrder {
		n, err := strconv.Atoi(rawOrder)
		if err != nil {
			return nil, fmt.Errorf("lexical scorer %q: bad n-gram order: %w", key, err)
		}
		order = n
	}
	switch strings.ToLower(name) {
	case "bleu":
		return scoring.NewBLEU(order), nil
	default:
		return nil, fmt.Errorf("unknown lexical scorer %q", name)
	}
}

// loadTranslationModel builds the backend for a canonical language name.
func (e *Engine) loadTranslationModel(_ context.Context, language string) (resource.Backend, error) {
	cfg := e.Config().Translation
	return chat.New(chat.Config{
		Provider:    cfg.Provider,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       translationModelFor(cfg, language),
		Temperature: cfg.Temperature,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}

// translationModelFor picks the per-language model; map keys may be names or tags.
func translationModelFor(cfg TranslationConfig, language string) string {
	for key, model := range cfg.Models {
		if name, ok := resource.CanonicalLanguage(key); ok && name == language && model != "" {
			return model
		}
	}
	return cfg.Model
}

// loadGenerationModel builds the backend for a generation model alias.
func (e *Engine) loadGenerationModel(_ context.Context, name string) (resource.Backend, error) {
	cfg := e.Config().Generation
	model := cfg.Models[name]
	if model == "" {
		model = name
	}
	return chat.New(chat.Config{
		Provider:    cfg.Provider,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}
