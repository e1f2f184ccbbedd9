package doc

import (
	"reflect"
	"testing"
)

func TestDocument_Topics(t *testing.T) {
	document := &Document{
		Name: "layered",
		Directives: []*Directive{
			{Topic: "errors", Statement: "a", Mode: MergeOverride},
			{Topic: "naming", Statement: "b", Mode: MergeOverride},
			{Topic: "errors", Statement: "c", Mode: MergeAugment},
		},
	}

	topics := document.Topics()
	want := []string{"errors", "naming"}
	if !reflect.DeepEqual(topics, want) {
		t.Errorf("Topics() = %v, want %v", topics, want)
	}
}

func TestDocument_DirectivesForTopic(t *testing.T) {
	document := &Document{
		Name: "layered",
		Directives: []*Directive{
			{Topic: "errors", Statement: "a", Mode: MergeOverride},
			{Topic: "naming", Statement: "b", Mode: MergeOverride},
			{Topic: "errors", Statement: "c", Mode: MergeAugment},
		},
	}

	matched := document.DirectivesForTopic("errors")
	if len(matched) != 2 {
		t.Fatalf("DirectivesForTopic(errors) returned %d directives, want 2", len(matched))
	}
	if matched[0].Statement != "a" || matched[1].Statement != "c" {
		t.Errorf("DirectivesForTopic(errors) order wrong: %q, %q", matched[0].Statement, matched[1].Statement)
	}

	if got := document.DirectivesForTopic("unknown"); got != nil {
		t.Errorf("DirectivesForTopic(unknown) = %v, want nil", got)
	}
}

func TestDocument_RelationTargets(t *testing.T) {
	document := &Document{
		Name: "overlay",
		Relations: []Relation{
			{Kind: RelationExtends, Target: "base"},
			{Kind: RelationSupplements, Target: "testing-standards"},
		},
	}

	if !document.HasRelations() {
		t.Error("HasRelations() = false, want true")
	}

	targets := document.RelationTargets()
	want := []string{"base", "testing-standards"}
	if !reflect.DeepEqual(targets, want) {
		t.Errorf("RelationTargets() = %v, want %v", targets, want)
	}
}

func TestDocument_AlwaysApplicable(t *testing.T) {
	base := &Document{Name: "base"}
	if !base.AlwaysApplicable() {
		t.Error("document without selector should always apply")
	}

	scoped := &Document{Name: "scoped", Selector: &Selector{Language: "go"}}
	if scoped.AlwaysApplicable() {
		t.Error("document with selector should not report always applicable")
	}
}
