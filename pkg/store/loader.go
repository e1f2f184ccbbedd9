package store

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mercator-hq/strata/pkg/doc"
)

// Loader loads policy documents from the file system.
// It supports single files and directory trees.
type Loader struct {
	parser     *doc.Parser
	extensions []string
	skipHidden bool
}

// NewLoader creates a loader with the given parser.
// A nil parser gets the default parser configuration.
func NewLoader(parser *doc.Parser) *Loader {
	if parser == nil {
		parser = doc.NewParser()
	}
	return &Loader{
		parser:     parser,
		extensions: []string{".yaml", ".yml"},
		skipHidden: true,
	}
}

// LoadPath loads documents from a file or directory path.
// Directories are walked recursively; only files with a recognized
// extension are parsed, hidden files and directories are skipped.
// Loading is all-or-nothing: the first parse or schema error aborts the
// whole load.
func (l *Loader) LoadPath(path string) ([]*doc.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Path: path, Message: "path not found", Cause: err}
		}
		if os.IsPermission(err) {
			return nil, &LoadError{Path: path, Message: "permission denied", Cause: err}
		}
		return nil, &LoadError{Path: path, Message: "failed to access path", Cause: err}
	}

	if !info.IsDir() {
		document, err := l.parser.ParseFile(path)
		if err != nil {
			return nil, err
		}
		return []*doc.Document{document}, nil
	}

	return l.loadDirectory(path)
}

// LoadStore loads documents from a path and constructs a store from them.
func (l *Loader) LoadStore(path string) (*Store, error) {
	documents, err := l.LoadPath(path)
	if err != nil {
		return nil, err
	}
	return Load(documents)
}

// loadDirectory walks a directory tree and parses every document file.
// Files are visited in sorted path order so load results are deterministic.
func (l *Loader) loadDirectory(dir string) ([]*doc.Document, error) {
	var paths []string

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if l.skipHidden && path != dir && strings.HasPrefix(filepath.Base(path), ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			return nil
		}

		if l.hasValidExtension(path) {
			paths = append(paths, path)
		}

		return nil
	})
	if err != nil {
		return nil, &LoadError{Path: dir, Message: "failed to walk directory", Cause: err}
	}

	sort.Strings(paths)

	documents := make([]*doc.Document, 0, len(paths))
	for _, path := range paths {
		document, err := l.parser.ParseFile(path)
		if err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}

	return documents, nil
}

// hasValidExtension checks if a file should be treated as a document source.
func (l *Loader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range l.extensions {
		if ext == valid {
			return true
		}
	}
	return false
}
