// Package engine runs the whole pipeline for one diagram: decode, compile,
// filter, and optionally persist the resulting model.
package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/liamcoop/bpmnconstraints/bpmn"
	"github.com/liamcoop/bpmnconstraints/compiler"
	"github.com/liamcoop/bpmnconstraints/filter"
	"github.com/liamcoop/bpmnconstraints/internal/logger"
	"github.com/liamcoop/bpmnconstraints/store"
)

// ErrNoStore is returned when persistence is requested from an engine
// created without a store.
var ErrNoStore = errors.New("no model store configured")

// Config configures an Engine.
type Config struct {
	// Defaults are the compile flags returned by Engine.Defaults.
	Defaults compiler.Options
	// CacheSize bounds the number of cached diagrams; 0 disables caching.
	CacheSize int
}

// Request describes one compilation.
type Request struct {
	Name    string
	Options compiler.Options
	Filter  string // CEL expression, see package filter
	Persist bool
}

// Engine compiles diagrams and manages compiled models.
// Safe for concurrent use.
type Engine struct {
	defaults compiler.Options
	store    store.ModelStore
	cache    ConstraintCache

	filters map[string]*filter.Filter // expression -> compiled filter
	mu      sync.RWMutex
}

// New creates an engine. st may be nil when models are never persisted.
func New(cfg Config, st store.ModelStore) (*Engine, error) {
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default options: %w", err)
	}

	en := &Engine{
		defaults: cfg.Defaults,
		store:    st,
		filters:  make(map[string]*filter.Filter),
	}
	if cfg.CacheSize > 0 {
		c, err := NewLRUCache(cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		en.cache = c
	}
	return en, nil
}

// Defaults returns the configured compile flags.
func (en *Engine) Defaults() compiler.Options { return en.defaults }

// Store returns the model store, or nil.
func (en *Engine) Store() store.ModelStore { return en.store }

// CompileFile compiles the diagram at path. The model name defaults to the
// file name without extension.
func (en *Engine) CompileFile(ctx context.Context, path string, req Request) (*store.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read diagram: %w", err)
	}
	if req.Name == "" {
		req.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return en.CompileBytes(ctx, data, req)
}

// CompileString compiles a diagram held in memory.
func (en *Engine) CompileString(ctx context.Context, s string, req Request) (*store.Model, error) {
	return en.CompileBytes(ctx, []byte(s), req)
}

// CompileReader compiles the diagram read from r.
func (en *Engine) CompileReader(ctx context.Context, r io.Reader, req Request) (*store.Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read diagram: %w", err)
	}
	return en.CompileBytes(ctx, data, req)
}

// CompileBytes compiles data, consulting the cache first. Parse errors
// unwrap to the bpmn sentinels; bad filters unwrap to
// filter.ErrInvalidExpression.
func (en *Engine) CompileBytes(ctx context.Context, data []byte, req Request) (*store.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := en.Filter(req.Filter)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	constraints, err := en.compile(digest, data, req.Options)
	if err != nil {
		logger.CompileFailures.Add(1)
		logger.Warn("compile failed", "diagram", req.Name, "digest", digest, "error", err)
		return nil, err
	}

	constraints, err = f.Apply(constraints)
	if err != nil {
		return nil, fmt.Errorf("failed to filter constraints: %w", err)
	}

	m := &store.Model{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Digest: digest,
		Options: store.Options{
			Transitivity:      req.Options.Transitivity,
			SkipNamedGateways: req.Options.SkipNamedGateways,
			Filter:            f.String(),
		},
		Constraints: append([]compiler.CompiledConstraint(nil), constraints...),
		CreatedAt:   time.Now().UTC(),
	}

	if req.Persist {
		if en.store == nil {
			return nil, ErrNoStore
		}
		if err := en.store.Add(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to persist model: %w", err)
		}
		logger.Info("model stored", "id", m.ID, "name", m.Name)
	}
	return m, nil
}

func (en *Engine) compile(digest string, data []byte, opts compiler.Options) ([]compiler.CompiledConstraint, error) {
	key := cacheKey(digest, opts)
	if en.cache != nil {
		if cs, ok := en.cache.Get(key); ok {
			logger.CacheHits.Add(1)
			logger.Debug("cache hit", "digest", digest)
			return cloneConstraints(cs), nil
		}
	}

	start := time.Now()
	g, err := bpmn.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	cs, err := compiler.Compile(g, opts)
	if err != nil {
		return nil, err
	}
	logger.DiagramsCompiled.Add(1)
	logger.Debug("diagram compiled",
		"digest", digest,
		"elements", g.Len(),
		"constraints", len(cs),
		"duration", time.Since(start),
	)

	if en.cache != nil {
		en.cache.Add(key, cloneConstraints(cs))
	}
	return cs, nil
}

// cloneConstraints copies cs with its activity lists, so cached entries
// share no memory with returned models.
func cloneConstraints(cs []compiler.CompiledConstraint) []compiler.CompiledConstraint {
	out := make([]compiler.CompiledConstraint, len(cs))
	for i, c := range cs {
		c.Activities = append([]string(nil), c.Activities...)
		out[i] = c
	}
	return out
}

func cacheKey(digest string, opts compiler.Options) string {
	order := "default"
	if opts.Order != nil {
		order = opts.Order.String()
	}
	return fmt.Sprintf("%s|t=%t|s=%t|o=%s", digest, opts.Transitivity, opts.SkipNamedGateways, order)
}

// Filter returns the compiled filter for expr, compiling it once. A blank
// expression yields a nil filter that keeps everything.
func (en *Engine) Filter(expr string) (*filter.Filter, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	en.mu.RLock()
	f, ok := en.filters[expr]
	en.mu.RUnlock()
	if ok {
		return f, nil
	}

	f, err := filter.New(expr)
	if err != nil {
		return nil, err
	}

	en.mu.Lock()
	en.filters[expr] = f
	en.mu.Unlock()
	return f, nil
}

// Get returns a stored model.
func (en *Engine) Get(ctx context.Context, id string) (*store.Model, error) {
	if en.store == nil {
		return nil, ErrNoStore
	}
	return en.store.Get(ctx, id)
}

// List returns every stored model.
func (en *Engine) List(ctx context.Context) ([]*store.Model, error) {
	if en.store == nil {
		return nil, ErrNoStore
	}
	return en.store.List(ctx)
}

// Delete removes a stored model.
func (en *Engine) Delete(ctx context.Context, id string) error {
	if en.store == nil {
		return ErrNoStore
	}
	if err := en.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("model deleted", "id", id)
	return nil
}

// PurgeCache drops every cached compilation.
func (en *Engine) PurgeCache() {
	if en.cache != nil {
		en.cache.Purge()
	}
}
