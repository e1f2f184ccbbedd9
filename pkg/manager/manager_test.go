package manager

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/strata/pkg/config"
	"mercator-hq/strata/pkg/engine"
)

const baseDocument = `
name: base
sections:
  - topic: errors
    rule: crash fast
`

const pythonDocument = `
name: python
relation:
  kind: extends
  target: base
applies_to:
  language: python
sections:
  - topic: errors
    rule: catch with a recovery path
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type reloadLog struct {
	mu    sync.Mutex
	calls []bool
}

func (r *reloadLog) RecordReload(success bool, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, success)
}

func (r *reloadLog) outcomes() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.calls...)
}

func TestManager_Start(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "base.yaml", baseDocument)
	writeDoc(t, dir, "python.yaml", pythonDocument)

	m := New(config.DocumentsConfig{Mode: "file", Path: dir}, WithLogger(testLogger()))

	e, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if e == nil || m.Engine() != e {
		t.Fatal("Start() should return the constructed engine")
	}

	result, err := e.Query(context.Background(), engine.Context{Identifier: "app.py", Language: "python"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.AppliedDocuments) != 2 {
		t.Errorf("AppliedDocuments = %v, want base and python", result.AppliedDocuments)
	}

	loadTime, loadErr := m.Status()
	if loadTime.IsZero() || loadErr != nil {
		t.Errorf("Status() = %v, %v", loadTime, loadErr)
	}
}

func TestManager_Start_InvalidDocuments(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "orphan.yaml", pythonDocument) // relation target missing

	m := New(config.DocumentsConfig{Mode: "file", Path: dir}, WithLogger(testLogger()))

	if _, err := m.Start(context.Background()); err == nil {
		t.Fatal("Start() expected error for unresolved relation, got nil")
	}

	_, loadErr := m.Status()
	if loadErr == nil {
		t.Error("Status() should retain the load error")
	}
}

func TestManager_Reload(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "base.yaml", baseDocument)

	recorder := &reloadLog{}
	m := New(config.DocumentsConfig{Mode: "file", Path: dir},
		WithLogger(testLogger()),
		WithReloadRecorder(recorder))

	e, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	beforeVersion := e.Snapshot().Store().Version()

	writeDoc(t, dir, "python.yaml", pythonDocument)
	if err := m.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	afterVersion := e.Snapshot().Store().Version()
	if afterVersion == beforeVersion {
		t.Error("snapshot version should change after reload")
	}
	if e.Snapshot().Store().Len() != 2 {
		t.Errorf("store has %d documents after reload, want 2", e.Snapshot().Store().Len())
	}

	outcomes := recorder.outcomes()
	if len(outcomes) != 2 || !outcomes[0] || !outcomes[1] {
		t.Errorf("reload outcomes = %v, want [true true]", outcomes)
	}
}

func TestManager_Reload_KeepsLastGoodSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "base.yaml", baseDocument)

	recorder := &reloadLog{}
	m := New(config.DocumentsConfig{Mode: "file", Path: dir},
		WithLogger(testLogger()),
		WithReloadRecorder(recorder))

	e, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	goodVersion := e.Snapshot().Store().Version()

	// Break the corpus: a document with an unresolvable relation.
	writeDoc(t, dir, "broken.yaml", pythonDocument)
	writeDoc(t, dir, "base.yaml", "name: renamed\nsections:\n  - topic: errors\n    rule: x\n")

	if err := m.Reload(); err == nil {
		t.Fatal("Reload() expected error, got nil")
	}

	// The engine still serves the last good snapshot.
	if e.Snapshot().Store().Version() != goodVersion {
		t.Error("failed reload must not replace the active snapshot")
	}

	result, err := e.Query(context.Background(), engine.Context{Identifier: "a.py", Language: "python"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.AppliedDocuments) != 1 || result.AppliedDocuments[0] != "base" {
		t.Errorf("AppliedDocuments = %v, want the original base", result.AppliedDocuments)
	}

	_, loadErr := m.Status()
	if loadErr == nil {
		t.Error("Status() should report the failed reload")
	}

	outcomes := recorder.outcomes()
	if len(outcomes) != 2 || !outcomes[0] || outcomes[1] {
		t.Errorf("reload outcomes = %v, want [true false]", outcomes)
	}
}

func TestManager_Events(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "base.yaml", baseDocument)

	m := New(config.DocumentsConfig{Mode: "file", Path: dir}, WithLogger(testLogger()))

	if _, err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case event := <-m.Events():
		if event.Err != nil || event.Documents != 1 || event.Version == "" {
			t.Errorf("start event = %+v, want successful load of 1 document", event)
		}
	default:
		t.Fatal("no event after Start()")
	}

	writeDoc(t, dir, "orphan.yaml", pythonDocument) // target will be missing
	writeDoc(t, dir, "base.yaml", "name: renamed\nsections:\n  - topic: errors\n    rule: x\n")
	if err := m.Reload(); err == nil {
		t.Fatal("Reload() expected error")
	}

	select {
	case event := <-m.Events():
		if event.Err == nil || event.Documents != 0 {
			t.Errorf("failure event = %+v, want error and zero documents", event)
		}
	default:
		t.Fatal("no event after failed Reload()")
	}
}

func TestManager_Reload_BeforeStart(t *testing.T) {
	m := New(config.DocumentsConfig{Mode: "file", Path: t.TempDir()}, WithLogger(testLogger()))
	if err := m.Reload(); err == nil {
		t.Fatal("Reload() before Start() should fail")
	}
}

func TestManager_Watch_UnsupportedMode(t *testing.T) {
	m := New(config.DocumentsConfig{Mode: "inline", Path: "documents/"}, WithLogger(testLogger()))
	if err := m.Watch(context.Background()); err == nil {
		t.Fatal("Watch() should fail for an unsupported mode")
	}
}

func TestManager_Watch_GitModeBeforeStart(t *testing.T) {
	m := New(config.DocumentsConfig{Mode: "git", Path: "documents"}, WithLogger(testLogger()))
	if err := m.Watch(context.Background()); err == nil {
		t.Fatal("Watch() in git mode before Start() should fail")
	}
}

// initUpstreamRepo creates a local git repository holding one document under
// documents/ and returns the repository and its branch name.
func initUpstreamRepo(t *testing.T, dir string) (*gogit.Repository, string) {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	docsDir := filepath.Join(dir, "documents")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docsDir, "base.yaml"), []byte(baseDocument), 0o644); err != nil {
		t.Fatal(err)
	}
	commitUpstream(t, repo, "documents/base.yaml")

	headRef, err := repo.Head()
	if err != nil {
		t.Fatal(err)
	}
	return repo, headRef.Name().Short()
}

func commitUpstream(t *testing.T, repo *gogit.Repository, path string) {
	t.Helper()

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := worktree.Add(path); err != nil {
		t.Fatalf("failed to add %s: %v", path, err)
	}
	if _, err := worktree.Commit("update "+path, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	}); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
}

func TestManager_GitMode(t *testing.T) {
	sourceDir := t.TempDir()
	upstream, branch := initUpstreamRepo(t, sourceDir)

	m := New(config.DocumentsConfig{
		Mode: "git",
		Path: "documents",
		Git: config.GitConfig{
			Repository:   sourceDir,
			Branch:       branch,
			LocalPath:    filepath.Join(t.TempDir(), "clone"),
			PollInterval: 50 * time.Millisecond,
		},
	}, WithLogger(testLogger()))

	e, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if e.Snapshot().Store().Len() != 1 {
		t.Fatalf("store has %d documents after clone, want 1", e.Snapshot().Store().Len())
	}
	beforeVersion := e.Snapshot().Store().Version()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- m.Watch(ctx)
	}()

	// Commit a new document upstream; the poller should pick it up.
	if err := os.WriteFile(filepath.Join(sourceDir, "documents", "python.yaml"), []byte(pythonDocument), 0o644); err != nil {
		t.Fatal(err)
	}
	commitUpstream(t, upstream, "documents/python.yaml")

	deadline := time.After(5 * time.Second)
	for e.Snapshot().Store().Version() == beforeVersion {
		select {
		case <-deadline:
			t.Fatal("git poller did not reload within the deadline")
		case <-time.After(20 * time.Millisecond):
		}
	}

	if e.Snapshot().Store().Len() != 2 {
		t.Errorf("store has %d documents after pull, want 2", e.Snapshot().Store().Len())
	}

	cancel()
	if err := <-watchDone; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestManager_WatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "base.yaml", baseDocument)

	m := New(config.DocumentsConfig{
		Mode:             "file",
		Path:             dir,
		Watch:            true,
		DebounceInterval: 20 * time.Millisecond,
	}, WithLogger(testLogger()))

	e, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	beforeVersion := e.Snapshot().Store().Version()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- m.Watch(ctx)
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeDoc(t, dir, "python.yaml", pythonDocument)

	deadline := time.After(3 * time.Second)
	for e.Snapshot().Store().Version() == beforeVersion {
		select {
		case <-deadline:
			t.Fatal("watcher did not reload within the deadline")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	if err := <-watchDone; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}
