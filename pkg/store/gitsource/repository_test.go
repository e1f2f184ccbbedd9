package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/strata/pkg/config"
)

// createTestRepo creates a local git repository with one committed document.
func createTestRepo(t *testing.T, dir string) *gogit.Repository {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	docsDir := filepath.Join(dir, "documents")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "name: base\nsections:\n  - topic: errors\n    rule: crash fast\n"
	if err := os.WriteFile(filepath.Join(docsDir, "base.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := worktree.Add("documents/base.yaml"); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}
	_, err = worktree.Commit("add base document", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}

	return repo
}

func TestNewRepository_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.GitConfig
		wantErr bool
	}{
		{
			name:    "empty repository URL",
			cfg:     config.GitConfig{Branch: "main"},
			wantErr: true,
		},
		{
			name:    "empty branch",
			cfg:     config.GitConfig{Repository: "https://example.com/policies.git"},
			wantErr: true,
		},
		{
			name:    "valid",
			cfg:     config.GitConfig{Repository: "https://example.com/policies.git", Branch: "main"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRepository(tt.cfg, "documents")
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRepository() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRepository_CloneAndHead(t *testing.T) {
	sourceDir := t.TempDir()
	source := createTestRepo(t, sourceDir)

	headRef, err := source.Head()
	if err != nil {
		t.Fatal(err)
	}

	r, err := NewRepository(config.GitConfig{
		Repository: sourceDir,
		Branch:     headRef.Name().Short(),
		LocalPath:  filepath.Join(t.TempDir(), "clone"),
	}, "documents")
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	if err := r.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if head != headRef.Hash().String() {
		t.Errorf("Head() = %s, want %s", head, headRef.Hash())
	}

	docsPath := r.DocumentsPath()
	if _, err := os.Stat(filepath.Join(docsPath, "base.yaml")); err != nil {
		t.Errorf("cloned document missing at %s: %v", docsPath, err)
	}

	// A second Clone opens the existing checkout instead of recloning.
	if err := r.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() on existing checkout error = %v", err)
	}
}

func TestRepository_Pull(t *testing.T) {
	sourceDir := t.TempDir()
	source := createTestRepo(t, sourceDir)

	headRef, err := source.Head()
	if err != nil {
		t.Fatal(err)
	}

	r, err := NewRepository(config.GitConfig{
		Repository: sourceDir,
		Branch:     headRef.Name().Short(),
		LocalPath:  filepath.Join(t.TempDir(), "clone"),
	}, "documents")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	// Nothing new upstream.
	changed, err := r.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if changed {
		t.Error("Pull() = changed, want unchanged with no new commits")
	}

	// Commit a new document upstream.
	content := "name: python\nrelation:\n  kind: extends\n  target: base\nsections:\n  - topic: errors\n    rule: catch with recovery\n"
	if err := os.WriteFile(filepath.Join(sourceDir, "documents", "python.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	worktree, err := source.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := worktree.Add("documents/python.yaml"); err != nil {
		t.Fatal(err)
	}
	if _, err := worktree.Commit("add python overlay", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	}); err != nil {
		t.Fatal(err)
	}

	changed, err = r.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if !changed {
		t.Error("Pull() = unchanged, want changed after upstream commit")
	}

	if _, err := os.Stat(filepath.Join(r.DocumentsPath(), "python.yaml")); err != nil {
		t.Errorf("pulled document missing: %v", err)
	}
}

func TestRepository_PullBeforeClone(t *testing.T) {
	r, err := NewRepository(config.GitConfig{
		Repository: "https://example.com/policies.git",
		Branch:     "main",
	}, "documents")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Pull(context.Background()); err == nil {
		t.Fatal("Pull() before Clone() should fail")
	}
	if _, err := r.Head(); err == nil {
		t.Fatal("Head() before Clone() should fail")
	}
}
