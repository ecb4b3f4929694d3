package evaluator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"yashubustudio/texteval/internal/backend"
	"yashubustudio/texteval/internal/logger"
	"yashubustudio/texteval/internal/resource"
	"yashubustudio/texteval/internal/scoring"
	"yashubustudio/texteval/internal/telemetry"
)

type (
	// ResourceKind identifies a family of cached backends.
	ResourceKind = resource.Kind
	// Loader constructs a backend for a key; see WithLoader.
	Loader = resource.Loader
	// ResourceHandle names one cached backend.
	ResourceHandle = resource.Handle
	// ResourceStore holds constructed backends; see WithStore.
	ResourceStore = resource.Store
)

const (
	KindFluencyModel     = resource.KindFluencyModel
	KindTranslationModel = resource.KindTranslationModel
	KindLexicalScorer    = resource.KindLexicalScorer
	KindGenerationModel  = resource.KindGenerationModel
)

const defaultConcurrency = 4

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger; nil keeps the global one.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithLoader replaces the built-in constructor for one kind of backend.
func WithLoader(kind ResourceKind, l Loader) Option {
	return func(e *Engine) {
		e.overrides[kind] = l
	}
}

// WithStore replaces the in-memory map that holds constructed backends.
func WithStore(s ResourceStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithConcurrency bounds how many pairs EvaluateAll scores at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// Engine scores generated text and dispatches translation and generation
// requests. Backends are built lazily and shared for the life of the Engine.
type Engine struct {
	cache *resource.Cache

	cfgMu sync.RWMutex
	cfg   Config

	overrides   map[ResourceKind]Loader
	store       ResourceStore
	concurrency int
	logger      *logger.Logger
}

// NewEngine constructs an engine; no backend is loaded until first use.
func NewEngine(cfg Config, opts ...Option) *Engine {
	cfg.ApplyDefaults()
	e := &Engine{
		cfg:         cfg,
		overrides:   make(map[ResourceKind]Loader),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	loaders := map[ResourceKind]Loader{
		KindFluencyModel:     e.loadFluencyModel,
		KindTranslationModel: e.loadTranslationModel,
		KindLexicalScorer:    e.loadLexicalScorer,
		KindGenerationModel:  e.loadGenerationModel,
	}
	for kind, l := range e.overrides {
		loaders[kind] = l
	}
	cacheOpts := []resource.Option{resource.WithLogger(e.logger), resource.WithStore(e.store)}
	for kind, l := range loaders {
		cacheOpts = append(cacheOpts, resource.WithLoader(kind, l))
	}
	e.cache = resource.New(cacheOpts...)
	return e
}

// Close releases backends that hold native resources.
func (e *Engine) Close() error {
	return e.cache.Close()
}

// Config returns a copy of the current configuration.
func (e *Engine) Config() Config {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg.Clone()
}

// UpdateConfig replaces the configuration. Backends already loaded are kept;
// the new settings apply to backends loaded afterwards.
func (e *Engine) UpdateConfig(cfg Config) {
	cfg.ApplyDefaults()
	e.cfgMu.Lock()
	e.cfg = cfg
	e.cfgMu.Unlock()
}

// Resources lists the backends loaded so far.
func (e *Engine) Resources() []ResourceHandle {
	return e.cache.Handles()
}

// Acquire returns the shared backend for (kind, key), loading it on first use.
func (e *Engine) Acquire(ctx context.Context, kind ResourceKind, key string) (any, error) {
	return e.cache.Acquire(ctx, kind, key)
}

// Evaluate scores candidate against original. It never fails: metrics that
// cannot be computed are 0 and the cause is logged.
func (e *Engine) Evaluate(ctx context.Context, original, candidate string) MetricBundle {
	b, _ := e.EvaluateDetailed(ctx, original, candidate)
	return b
}

// EvaluateDetailed is Evaluate plus the causes of any metric that fell back to 0.
func (e *Engine) EvaluateDetailed(ctx context.Context, original, candidate string) (MetricBundle, Diagnostics) {
	start := time.Now()
	defer func() {
		telemetry.EvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	var (
		b    MetricBundle
		diag Diagnostics
	)
	b.LexicalOverlap = e.soft(MetricLexical, &diag, func() (float64, error) {
		return e.lexicalOverlap(ctx, original, candidate)
	})
	b.Fluency = e.soft(MetricFluency, &diag, func() (float64, error) {
		return e.perplexity(ctx, candidate)
	})
	b.ReadabilityOriginal = e.soft(MetricReadability, &diag, func() (float64, error) {
		return scoring.FleschKincaidGrade(original), nil
	})
	b.ReadabilityCandidate = e.soft(MetricReadability, &diag, func() (float64, error) {
		return scoring.FleschKincaidGrade(candidate), nil
	})
	b.ReadabilityDelta = scoring.Round(b.ReadabilityOriginal-b.ReadabilityCandidate, 2)
	return b, diag
}

// Report extends the bundle with ROUGE, more readability indices and text stats.
func (e *Engine) Report(ctx context.Context, original, candidate string) Report {
	b, diag := e.EvaluateDetailed(ctx, original, candidate)
	ref := scoring.Tokenize(original)
	hyp := scoring.Tokenize(candidate)
	r := Report{
		Bundle:               b,
		Diagnostics:          diag,
		Rouge1:               roundRouge(scoring.RougeN(ref, hyp, 1)),
		Rouge2:               roundRouge(scoring.RougeN(ref, hyp, 2)),
		RougeL:               roundRouge(scoring.RougeL(ref, hyp)),
		ReadabilityOriginal:  readabilityOf(original),
		ReadabilityCandidate: readabilityOf(candidate),
		StatsOriginal:        scoring.Stats(original),
		StatsCandidate:       scoring.Stats(candidate),
		CompressionRatio:     scoring.CompressionRatio(original, candidate),
		WordEditRate:         scoring.WordEditRate(original, candidate),
		CharEditRate:         scoring.CharEditRate(original, candidate),
	}
	r.Rating = scoring.Rating(r.Rouge1, r.Rouge2, r.RougeL)
	return r
}

// Compare evaluates (original, candidate) and, if the dataset at path holds a
// gold pair for original, the gold pair too. An empty path uses the
// configured reference dataset.
func (e *Engine) Compare(ctx context.Context, original, candidate, path string) Comparison {
	if path == "" {
		path = e.Config().ReferencePath
	}
	return e.CompareWith(ctx, original, candidate, datasetFinder{path: path, log: e.log()})
}

// CompareWith is Compare against any ReferenceFinder, such as a ReferenceIndex.
func (e *Engine) CompareWith(ctx context.Context, original, candidate string, refs ReferenceFinder) Comparison {
	c := Comparison{Generated: e.Evaluate(ctx, original, candidate)}
	if refs == nil {
		return c
	}
	entry, ok := refs.Find(original)
	if !ok {
		return c
	}
	gold := e.Evaluate(ctx, entry.Original, entry.Transformed)
	c.Reference = &entry
	c.ReferenceBundle = &gold
	return c
}

// EvaluateAll scores every pair, preserving order.
func (e *Engine) EvaluateAll(ctx context.Context, pairs []Pair) []PairResult {
	out := make([]PairResult, len(pairs))
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, p := range pairs {
		g.Go(func() error {
			b, diag := e.EvaluateDetailed(ctx, p.Original, p.Candidate)
			out[i] = PairResult{Pair: p, Bundle: b, Diagnostics: diag}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Engine) lexicalOverlap(ctx context.Context, original, candidate string) (float64, error) {
	if strings.TrimSpace(original) == "" || strings.TrimSpace(candidate) == "" {
		return 0, nil
	}
	b, err := e.cache.Acquire(ctx, KindLexicalScorer, lexicalKey(e.Config().Lexical))
	if err != nil {
		return 0, err
	}
	scorer, ok := b.(backend.LexicalScorer)
	if !ok {
		return 0, fmt.Errorf("%w: %T is not a lexical scorer", ErrBackendType, b)
	}
	return scorer.Score(original, candidate), nil
}

func (e *Engine) perplexity(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	b, err := e.cache.Acquire(ctx, KindFluencyModel, e.Config().Fluency.ModelID)
	if err != nil {
		return 0, err
	}
	lm, ok := b.(backend.CausalLM)
	if !ok {
		return 0, fmt.Errorf("%w: %T is not a causal LM", ErrBackendType, b)
	}
	ids, err := lm.Encode(text)
	if err != nil {
		return 0, err
	}
	if len(ids) < 2 {
		return 0, scoring.ErrTooFewTokens
	}
	if limit := lm.MaxSequenceLength(); limit > 0 && len(ids) > limit {
		return 0, fmt.Errorf("%w: %d tokens, limit %d", ErrSequenceTooLong, len(ids), limit)
	}
	logits, err := lm.Logits(ctx, ids)
	if err != nil {
		return 0, err
	}
	ppl, err := scoring.Perplexity(ids, logits, lm.VocabSize())
	if err != nil {
		return 0, err
	}
	return scoring.Round(ppl, 2), nil
}

// soft runs one metric, turning errors, panics and non-finite values into 0.
func (e *Engine) soft(metric string, diag *Diagnostics, fn func() (float64, error)) (v float64) {
	defer func() {
		if r := recover(); r != nil {
			v = 0
			e.fail(metric, fmt.Errorf("panic: %v", r), diag)
		}
	}()
	v, err := fn()
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = scoring.ErrNonFinite
	}
	if err != nil {
		e.fail(metric, err, diag)
		return 0
	}
	return v
}

func (e *Engine) fail(metric string, err error, diag *Diagnostics) {
	*diag = append(*diag, MetricFailure{Metric: metric, Err: err})
	telemetry.MetricSoftFailures.WithLabelValues(metric).Inc()
	level := e.log().Warn
	if errors.Is(err, context.Canceled) {
		level = e.log().Debug
	}
	level("metric unavailable", "metric", metric, "error", err)
}

func (e *Engine) log() *logger.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logger.Log
}

func readabilityOf(text string) Readability {
	return Readability{
		FleschKincaidGrade:        scoring.FleschKincaidGrade(text),
		FleschReadingEase:         scoring.FleschReadingEase(text),
		GunningFog:                scoring.GunningFog(text),
		SMOGIndex:                 scoring.SMOGIndex(text),
		AutomatedReadabilityIndex: scoring.AutomatedReadabilityIndex(text),
		ColemanLiauIndex:          scoring.ColemanLiauIndex(text),
	}
}

func roundRouge(s RougeScore) RougeScore {
	return RougeScore{
		Precision: scoring.Round(s.Precision, 4),
		Recall:    scoring.Round(s.Recall, 4),
		F1:        scoring.Round(s.F1, 4),
	}
}
