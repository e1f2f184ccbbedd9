// Package gitsource loads policy documents from a git repository.
//
// The repository is cloned locally (or opened if already present) and the
// document directory within it is read by the regular file loader. A poller
// periodically fetches and fast-forwards the tracked branch; when the head
// commit changes, the caller is notified so it can rebuild the snapshot.
package gitsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"mercator-hq/strata/pkg/config"
)

// Repository manages the local clone of a document repository.
type Repository struct {
	cfg       config.GitConfig
	localPath string
	docsPath  string

	mu   sync.Mutex
	repo *gogit.Repository
}

// NewRepository creates a repository manager from git configuration.
// docsPath is the directory within the repository holding documents.
func NewRepository(cfg config.GitConfig, docsPath string) (*Repository, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}

	localPath := cfg.LocalPath
	if localPath == "" {
		localPath = filepath.Join(os.TempDir(), "strata-documents")
	}

	return &Repository{
		cfg:       cfg,
		localPath: localPath,
		docsPath:  docsPath,
	}, nil
}

// Clone initializes the local clone. If a clone already exists at the local
// path it is opened instead.
func (r *Repository) Clone(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(filepath.Join(r.localPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(r.localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repository: %w", err)
		}
		r.repo = repo
		return nil
	}

	if err := os.MkdirAll(r.localPath, 0o755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}

	repo, err := gogit.PlainCloneContext(ctx, r.localPath, false, &gogit.CloneOptions{
		URL:           r.cfg.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(r.cfg.Branch),
		SingleBranch:  true,
		Depth:         r.cfg.Depth,
	})
	if err != nil {
		return fmt.Errorf("failed to clone %q: %w", r.cfg.Repository, err)
	}

	r.repo = repo
	return nil
}

// Pull fast-forwards the tracked branch and reports whether the head commit
// changed.
func (r *Repository) Pull(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return false, fmt.Errorf("repository not cloned")
	}

	before, err := r.headLocked()
	if err != nil {
		return false, err
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.PullContext(ctx, &gogit.PullOptions{
		ReferenceName: plumbing.NewBranchReferenceName(r.cfg.Branch),
		SingleBranch:  true,
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return false, fmt.Errorf("failed to pull: %w", err)
	}

	after, err := r.headLocked()
	if err != nil {
		return false, err
	}

	return before != after, nil
}

// Head returns the current head commit hash.
func (r *Repository) Head() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.headLocked()
}

func (r *Repository) headLocked() (string, error) {
	if r.repo == nil {
		return "", fmt.Errorf("repository not cloned")
	}
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve head: %w", err)
	}
	return ref.Hash().String(), nil
}

// DocumentsPath returns the local path of the document directory within the
// clone.
func (r *Repository) DocumentsPath() string {
	return filepath.Join(r.localPath, r.docsPath)
}

// Poll fetches the remote on the configured interval and invokes onChange
// whenever the head commit moves. It blocks until the context is cancelled.
func (r *Repository) Poll(ctx context.Context, onChange func() error) error {
	interval := r.cfg.PollInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	logger := slog.Default().With("component", "gitsource")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			changed, err := r.Pull(ctx)
			if err != nil {
				// Transient network failures should not stop polling.
				logger.Error("poll failed", "error", err)
				continue
			}
			if changed {
				head, _ := r.Head()
				logger.Info("new document revision detected", "head", head)
				if err := onChange(); err != nil {
					logger.Error("document reload after pull failed", "error", err)
				}
			}
		}
	}
}
