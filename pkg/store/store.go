package store

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"mercator-hq/strata/pkg/doc"
)

// Store is an immutable, name-indexed snapshot of policy documents.
type Store struct {
	docs    map[string]*doc.Document
	names   []string // sorted
	version string
}

// Load constructs a store from a batch of parsed documents.
// It fails with a *doc.SchemaError when a document is missing its identity,
// a name appears twice, or a relation names a document absent from the
// batch. No partial store is ever produced.
func Load(documents []*doc.Document) (*Store, error) {
	s := &Store{
		docs: make(map[string]*doc.Document, len(documents)),
	}

	for _, document := range documents {
		if document.Name == "" {
			return nil, &doc.SchemaError{
				Document: document.SourceFile,
				Field:    "name",
				Message:  "document name is required",
			}
		}
		if existing, ok := s.docs[document.Name]; ok {
			return nil, &doc.SchemaError{
				Document: document.Name,
				Field:    "name",
				Message:  fmt.Sprintf("duplicate document name (also declared in %q)", existing.SourceFile),
			}
		}
		s.docs[document.Name] = document
	}

	// Every relation target must resolve within this batch.
	for _, document := range documents {
		for i, rel := range document.Relations {
			if _, ok := s.docs[rel.Target]; !ok {
				return nil, &doc.SchemaError{
					Document: document.Name,
					Field:    fmt.Sprintf("relations[%d].target", i),
					Message:  fmt.Sprintf("relation target %q is not present in the load batch", rel.Target),
				}
			}
		}
	}

	s.names = make([]string, 0, len(s.docs))
	for name := range s.docs {
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)

	s.version = s.computeVersion()

	return s, nil
}

// Get retrieves a document by name.
// It fails with a *NotFoundError if the name is unknown.
func (s *Store) Get(name string) (*doc.Document, error) {
	document, ok := s.docs[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return document, nil
}

// Has returns true if the store contains a document with the given name.
func (s *Store) Has(name string) bool {
	_, ok := s.docs[name]
	return ok
}

// Documents returns all documents sorted by name.
// The returned slice is a copy; the store itself is never exposed for
// mutation.
func (s *Store) Documents() []*doc.Document {
	documents := make([]*doc.Document, 0, len(s.names))
	for _, name := range s.names {
		documents = append(documents, s.docs[name])
	}
	return documents
}

// Names returns all document names in lexicographic order.
func (s *Store) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// Len returns the number of documents in the store.
func (s *Store) Len() int {
	return len(s.docs)
}

// Version returns a content hash identifying this snapshot. Two stores with
// identical documents have identical versions; any content change produces
// a new version.
func (s *Store) Version() string {
	return s.version
}

// computeVersion hashes the full document content in name order.
func (s *Store) computeVersion() string {
	h := sha256.New()
	for _, name := range s.names {
		document := s.docs[name]
		fmt.Fprintf(h, "doc:%s\x00%s\x00", document.Name, document.Description)
		for _, rel := range document.Relations {
			fmt.Fprintf(h, "rel:%s\x00%s\x00", rel.Kind, rel.Target)
		}
		if document.Selector != nil {
			fmt.Fprintf(h, "sel:%s\x00", document.Selector.Language)
			for _, signal := range document.Selector.Signals {
				fmt.Fprintf(h, "sig:%s\x00", signal)
			}
		}
		for _, directive := range document.Directives {
			fmt.Fprintf(h, "dir:%s\x00%s\x00%s\x00", directive.Topic, directive.Mode, directive.Statement)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
