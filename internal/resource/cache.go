package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"yashubustudio/texteval/internal/logger"
	"yashubustudio/texteval/internal/telemetry"
)

// Loader constructs the backend for key. It may be slow (loading weights,
// warming a remote model) and is called at most once per successful handle.
type Loader func(ctx context.Context, key string) (Backend, error)

// Option configures a Cache.
type Option func(*Cache)

// WithStore replaces the default in-memory store.
func WithStore(s Store) Option {
	return func(c *Cache) {
		if s != nil {
			c.store = s
		}
	}
}

// WithLoader registers the constructor for a kind.
func WithLoader(kind Kind, l Loader) Option {
	return func(c *Cache) {
		c.loaders[kind] = l
	}
}

// WithLogger sets the logger used for load events.
func WithLogger(l *logger.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// Cache lazily constructs and memoizes backends keyed by Handle.
//
// Concurrent first requests for the same handle share one construction.
// Failed constructions are not remembered; the next Acquire retries.
type Cache struct {
	store  Store
	flight singleflight.Group

	mu      sync.RWMutex
	loaders map[Kind]Loader

	logger *logger.Logger
}

// New constructs a cache with the given options.
func New(opts ...Option) *Cache {
	c := &Cache{
		store:   NewMapStore(),
		loaders: make(map[Kind]Loader),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register sets or replaces the loader for kind. Backends already built are kept.
func (c *Cache) Register(kind Kind, l Loader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaders[kind] = l
}

// Handle validates kind and key and returns the canonical handle.
func (c *Cache) Handle(kind Kind, key string) (Handle, error) {
	key = strings.TrimSpace(key)
	switch kind {
	case KindFluencyModel, KindLexicalScorer, KindGenerationModel:
	case KindTranslationModel:
		if key == "" {
			return Handle{}, ErrEmptyKey
		}
		name, ok := CanonicalLanguage(key)
		if !ok {
			return Handle{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, key)
		}
		key = name
	default:
		return Handle{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	if key == "" {
		return Handle{}, ErrEmptyKey
	}
	return Handle{Kind: kind, Key: key}, nil
}

// Acquire returns the backend for (kind, key), constructing it on first use.
//
// A caller whose ctx ends while waiting gets ctx.Err(); the shared load keeps
// running for the other waiters and is stored when it succeeds.
func (c *Cache) Acquire(ctx context.Context, kind Kind, key string) (Backend, error) {
	h, err := c.Handle(kind, key)
	if err != nil {
		return nil, err
	}
	if b, ok := c.store.Get(h); ok {
		telemetry.ResourceCacheHits.WithLabelValues(kind.String()).Inc()
		return b, nil
	}
	load := c.loader(kind)
	if load == nil {
		return nil, &LoadError{Handle: h, Err: ErrNoLoader}
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(h.String(), func() (interface{}, error) {
		if b, ok := c.store.Get(h); ok {
			return b, nil
		}
		return c.construct(loadCtx, h, load)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	}
}

// Len reports how many backends are currently held.
func (c *Cache) Len() int {
	return len(c.store.Handles())
}

// Handles lists the backends currently held.
func (c *Cache) Handles() []Handle {
	return c.store.Handles()
}

// Close closes every held backend that implements io.Closer. Backends stay in
// the store; Close is meant for process shutdown.
func (c *Cache) Close() error {
	var errs []error
	for _, h := range c.store.Handles() {
		b, ok := c.store.Get(h)
		if !ok {
			continue
		}
		if closer, ok := b.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", h, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Cache) loader(kind Kind) Loader {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaders[kind]
}

func (c *Cache) construct(ctx context.Context, h Handle, load Loader) (b Backend, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("loader panic: %v", r)
		}
		telemetry.RecordLoad(h.Kind.String(), time.Since(start), err)
		if err != nil {
			c.log().Warn("backend load failed", "handle", h.String(), "error", err)
			err = &LoadError{Handle: h, Err: err}
			return
		}
		c.log().Info("backend loaded", "handle", h.String(), "duration", time.Since(start).String())
	}()

	b, err = load(ctx, h.Key)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errors.New("loader returned nil backend")
	}
	c.store.Put(h, b)
	return b, nil
}

func (c *Cache) log() *logger.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logger.Log
}
