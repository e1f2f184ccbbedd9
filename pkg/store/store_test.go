package store

import (
	"errors"
	"reflect"
	"testing"

	"mercator-hq/strata/pkg/doc"
)

func makeDoc(name string, targets ...string) *doc.Document {
	document := &doc.Document{
		Name:       name,
		SourceFile: name + ".yaml",
		Directives: []*doc.Directive{
			{Topic: "errors", Statement: "rule for " + name, Mode: doc.MergeOverride},
		},
	}
	for _, target := range targets {
		document.Relations = append(document.Relations, doc.Relation{
			Kind:   doc.RelationExtends,
			Target: target,
		})
	}
	return document
}

func TestLoad(t *testing.T) {
	s, err := Load([]*doc.Document{
		makeDoc("base"),
		makeDoc("python", "base"),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if !s.Has("base") || s.Has("unknown") {
		t.Error("Has() results wrong")
	}

	names := s.Names()
	if !reflect.DeepEqual(names, []string{"base", "python"}) {
		t.Errorf("Names() = %v, want sorted [base python]", names)
	}
}

func TestLoad_DuplicateName(t *testing.T) {
	first := makeDoc("base")
	second := makeDoc("base")
	second.SourceFile = "other/base.yaml"

	_, err := Load([]*doc.Document{first, second})
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}

	var schemaErr *doc.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Load() error = %T, want *doc.SchemaError", err)
	}
	if schemaErr.Document != "base" || schemaErr.Field != "name" {
		t.Errorf("SchemaError = {%q %q}, want {base name}", schemaErr.Document, schemaErr.Field)
	}
}

func TestLoad_UnresolvedRelation(t *testing.T) {
	_, err := Load([]*doc.Document{makeDoc("python", "base")})
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}

	var schemaErr *doc.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Load() error = %T, want *doc.SchemaError", err)
	}
	if schemaErr.Field != "relations[0].target" {
		t.Errorf("SchemaError.Field = %q, want relations[0].target", schemaErr.Field)
	}
}

func TestStore_Get(t *testing.T) {
	s, err := Load([]*doc.Document{makeDoc("base")})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	document, err := s.Get("base")
	if err != nil {
		t.Fatalf("Get(base) error = %v", err)
	}
	if document.Name != "base" {
		t.Errorf("Get(base).Name = %q", document.Name)
	}

	_, err = s.Get("missing")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Get(missing) error = %T, want *NotFoundError", err)
	}
	if notFound.Name != "missing" {
		t.Errorf("NotFoundError.Name = %q, want missing", notFound.Name)
	}
}

func TestStore_Version(t *testing.T) {
	s1, err := Load([]*doc.Document{makeDoc("base"), makeDoc("python", "base")})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Same content, different input order: same version.
	s2, err := Load([]*doc.Document{makeDoc("python", "base"), makeDoc("base")})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s1.Version() != s2.Version() {
		t.Errorf("Version() should be input-order independent: %q vs %q", s1.Version(), s2.Version())
	}

	// Changed directive text: different version.
	changed := makeDoc("base")
	changed.Directives[0].Statement = "a different rule"
	s3, err := Load([]*doc.Document{changed, makeDoc("python", "base")})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s3.Version() == s1.Version() {
		t.Error("Version() should change when document content changes")
	}

	if s1.Version() == "" {
		t.Error("Version() should not be empty")
	}
}

func TestStore_DocumentsSorted(t *testing.T) {
	s, err := Load([]*doc.Document{
		makeDoc("zeta"),
		makeDoc("alpha"),
		makeDoc("mid"),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var names []string
	for _, document := range s.Documents() {
		names = append(names, document.Name)
	}
	if !reflect.DeepEqual(names, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("Documents() order = %v", names)
	}
}
