package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/strata/pkg/config"
	"mercator-hq/strata/pkg/engine"
	"mercator-hq/strata/pkg/store"
	"mercator-hq/strata/pkg/store/gitsource"
)

// ReloadRecorder receives reload outcomes (implemented by the metrics
// collector).
type ReloadRecorder interface {
	RecordReload(success bool, documentCount int)
}

// Manager owns the document loading lifecycle and the engine's snapshot.
type Manager struct {
	cfg        config.DocumentsConfig
	loader     *store.Loader
	logger     *slog.Logger
	engineOpts []engine.Option
	recorder   ReloadRecorder

	engine *engine.Engine

	mu            sync.RWMutex
	lastLoadTime  time.Time
	lastLoadError error

	events  chan ReloadEvent
	watcher *FileWatcher
	gitRepo *gitsource.Repository
}

// ReloadEvent describes the outcome of one load or reload attempt.
type ReloadEvent struct {
	// Time is when the attempt finished.
	Time time.Time

	// Documents is the document count of the new snapshot (0 on failure).
	Documents int

	// Version is the content version of the new snapshot (empty on
	// failure).
	Version string

	// Err is the load error, nil on success.
	Err error
}

// Option configures a Manager.
type Option func(*Manager)

// WithLoader sets a custom document loader.
func WithLoader(loader *store.Loader) Option {
	return func(m *Manager) {
		if loader != nil {
			m.loader = loader
		}
	}
}

// WithLogger sets the manager's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithReloadRecorder attaches a reload outcome recorder.
func WithReloadRecorder(recorder ReloadRecorder) Option {
	return func(m *Manager) {
		m.recorder = recorder
	}
}

// WithEngineOptions passes options through to the engine constructed by
// Start (logger, observers).
func WithEngineOptions(opts ...engine.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// New creates a manager for the given document source configuration.
func New(cfg config.DocumentsConfig, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		loader: store.NewLoader(nil),
		logger: slog.Default().With("component", "manager"),
		events: make(chan ReloadEvent, 16),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start performs the initial load and constructs the engine.
// It fails if the initial load fails; there is no engine without a valid
// first snapshot. In git mode the document repository is cloned first and
// documents are read from the local clone.
func (m *Manager) Start(ctx context.Context) (*engine.Engine, error) {
	if m.cfg.Mode == "git" {
		m.logger.Info("initializing git document source",
			"repository", m.cfg.Git.Repository,
			"branch", m.cfg.Git.Branch,
		)

		repo, err := gitsource.NewRepository(m.cfg.Git, m.cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create git repository: %w", err)
		}
		if err := repo.Clone(ctx); err != nil {
			return nil, fmt.Errorf("failed to clone document repository: %w", err)
		}
		m.gitRepo = repo
	}

	snapshot, err := m.buildSnapshot()
	if err != nil {
		m.recordLoad(err)
		m.emit(nil, err)
		return nil, fmt.Errorf("initial document load failed: %w", err)
	}
	m.recordLoad(nil)
	m.emit(snapshot, nil)

	m.engine = engine.New(snapshot, m.engineOpts...)
	if m.recorder != nil {
		m.recorder.RecordReload(true, snapshot.Store().Len())
	}

	m.logger.Info("documents loaded",
		"path", m.documentsPath(),
		"documents", snapshot.Store().Len(),
		"version", snapshot.Store().Version(),
	)

	return m.engine, nil
}

// Engine returns the engine, or nil before Start succeeds.
func (m *Manager) Engine() *engine.Engine {
	return m.engine
}

// Reload rebuilds the snapshot from the document source and swaps it into
// the engine. The swap only happens after the whole new snapshot validates;
// on failure the active snapshot is untouched and the error is retained.
func (m *Manager) Reload() error {
	if m.engine == nil {
		return fmt.Errorf("manager not started")
	}

	snapshot, err := m.buildSnapshot()
	if err != nil {
		m.recordLoad(err)
		m.emit(nil, err)
		if m.recorder != nil {
			m.recorder.RecordReload(false, 0)
		}
		m.logger.Error("document reload failed, keeping previous snapshot",
			"error", err,
		)
		return err
	}

	m.recordLoad(nil)
	m.engine.Swap(snapshot)
	m.emit(snapshot, nil)
	if m.recorder != nil {
		m.recorder.RecordReload(true, snapshot.Store().Len())
	}

	return nil
}

// Events returns a channel of load and reload outcomes. The channel is
// buffered; events are dropped rather than blocking the reload path when no
// one is draining it.
func (m *Manager) Events() <-chan ReloadEvent {
	return m.events
}

// emit publishes a reload event without blocking.
func (m *Manager) emit(snapshot *engine.Snapshot, err error) {
	event := ReloadEvent{Time: time.Now(), Err: err}
	if snapshot != nil {
		event.Documents = snapshot.Store().Len()
		event.Version = snapshot.Store().Version()
	}

	select {
	case m.events <- event:
	default:
	}
}

// Watch blocks reloading on document changes until the context is
// cancelled. In file mode changes are detected by a filesystem watcher; in
// git mode the remote is polled and a reload runs when the head commit
// moves.
func (m *Manager) Watch(ctx context.Context) error {
	switch m.cfg.Mode {
	case "file":
		watcher, err := NewFileWatcher(m.cfg.Path, m.cfg.DebounceInterval, m.logger)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		m.watcher = watcher

		return watcher.Watch(ctx, func() error {
			return m.Reload()
		})
	case "git":
		if m.gitRepo == nil {
			return fmt.Errorf("manager not started")
		}
		return m.gitRepo.Poll(ctx, func() error {
			return m.Reload()
		})
	default:
		return fmt.Errorf("watching is not supported in mode %q", m.cfg.Mode)
	}
}

// Status returns the time and error of the most recent load attempt.
func (m *Manager) Status() (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLoadTime, m.lastLoadError
}

// Close stops the watcher if one is running.
func (m *Manager) Close() error {
	if m.watcher != nil {
		return m.watcher.Stop()
	}
	return nil
}

// buildSnapshot loads documents from the configured source and validates
// them into a snapshot.
func (m *Manager) buildSnapshot() (*engine.Snapshot, error) {
	s, err := m.loader.LoadStore(m.documentsPath())
	if err != nil {
		return nil, err
	}
	return engine.NewSnapshot(s)
}

// documentsPath resolves the directory documents are read from. In git mode
// the configured path is relative to the local clone.
func (m *Manager) documentsPath() string {
	if m.gitRepo != nil {
		return m.gitRepo.DocumentsPath()
	}
	return m.cfg.Path
}

// recordLoad retains the outcome of the latest load attempt.
func (m *Manager) recordLoad(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLoadTime = time.Now()
	m.lastLoadError = err
}
