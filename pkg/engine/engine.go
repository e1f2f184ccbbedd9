package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"mercator-hq/strata/pkg/graph"
	"mercator-hq/strata/pkg/store"
)

// Snapshot is one immutable (store, precedence graph) pair. Snapshots are
// built once and replaced wholesale; they are never mutated in place.
type Snapshot struct {
	store *store.Store
	graph *graph.PrecedenceGraph
}

// NewSnapshot builds the precedence graph for a store and pairs them into a
// snapshot. It fails if the store's relations are cyclic.
func NewSnapshot(s *store.Store) (*Snapshot, error) {
	g, err := graph.Build(s.Documents())
	if err != nil {
		return nil, err
	}
	return &Snapshot{store: s, graph: g}, nil
}

// Store returns the snapshot's document store.
func (s *Snapshot) Store() *store.Store {
	return s.store
}

// Graph returns the snapshot's precedence graph.
func (s *Snapshot) Graph() *graph.PrecedenceGraph {
	return s.graph
}

// Observer receives the outcome of each query. Observers are invoked after
// the result is composed; they must not mutate it.
type Observer interface {
	ObserveQuery(ctx context.Context, qctx Context, result *CompositionResult, duration time.Duration, err error)
}

// Engine is the query boundary. It holds the current snapshot behind an
// atomic pointer so many queries can run concurrently with no coordination,
// and a snapshot swap never disturbs in-flight queries.
type Engine struct {
	snapshot  atomic.Pointer[Snapshot]
	logger    *slog.Logger
	observers []Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers a query observer (metrics, audit).
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observers = append(e.observers, observer)
		}
	}
}

// New creates an engine serving queries from the given snapshot.
func New(snapshot *Snapshot, opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default().With("component", "engine"),
	}
	e.snapshot.Store(snapshot)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query resolves the effective ruleset for a context against the current
// snapshot. It is a pure function of (snapshot, context): same inputs always
// produce the same output. An unusable context fails with a structured
// *InvalidContextError rather than an empty default result.
func (e *Engine) Query(ctx context.Context, qctx Context) (*CompositionResult, error) {
	start := time.Now()

	if err := validateContext(qctx); err != nil {
		e.notify(ctx, qctx, nil, time.Since(start), err)
		return nil, err
	}

	snapshot := e.snapshot.Load()

	matched := Match(snapshot.graph, qctx)
	result := Compose(snapshot.graph, matched)
	result.SnapshotVersion = snapshot.store.Version()

	duration := time.Since(start)

	e.logger.Debug("query resolved",
		"identifier", qctx.Identifier,
		"language", qctx.Language,
		"applied", len(result.AppliedDocuments),
		"topics", result.TopicCount(),
		"conflicts", len(result.Conflicts),
		"duration_us", duration.Microseconds(),
	)

	if result.HasConflicts() {
		e.logger.Warn("query produced unresolved conflicts",
			"identifier", qctx.Identifier,
			"conflicts", len(result.Conflicts),
		)
	}

	e.notify(ctx, qctx, result, duration, nil)

	return result, nil
}

// Swap atomically replaces the engine's snapshot. In-flight queries keep
// observing the snapshot that was current when they started.
func (e *Engine) Swap(snapshot *Snapshot) {
	old := e.snapshot.Swap(snapshot)
	e.logger.Info("snapshot swapped",
		"old_version", old.store.Version(),
		"new_version", snapshot.store.Version(),
		"documents", snapshot.store.Len(),
	)
}

// Snapshot returns the snapshot currently serving queries.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// notify fans a query outcome out to all observers.
func (e *Engine) notify(ctx context.Context, qctx Context, result *CompositionResult, duration time.Duration, err error) {
	for _, observer := range e.observers {
		observer.ObserveQuery(ctx, qctx, result, duration, err)
	}
}

// validateContext rejects contexts that cannot be resolved.
func validateContext(qctx Context) error {
	if strings.TrimSpace(qctx.Identifier) == "" {
		return &InvalidContextError{
			Field:   "identifier",
			Message: "identifier is required",
		}
	}
	if strings.TrimSpace(qctx.Language) == "" {
		return &InvalidContextError{
			Field:   "language",
			Message: "language is required",
		}
	}
	return nil
}
