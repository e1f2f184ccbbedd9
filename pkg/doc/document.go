package doc

// RelationKind identifies how a document relates to another document.
type RelationKind string

const (
	// RelationSupplements declares that this document adds guidance on top of
	// the target without changing the target's own applicability.
	RelationSupplements RelationKind = "supplements"

	// RelationExtends declares that this document refines the target for a
	// narrower context and may override its directives.
	RelationExtends RelationKind = "extends"
)

// IsValid returns true if the relation kind is one of the known kinds.
func (k RelationKind) IsValid() bool {
	return k == RelationSupplements || k == RelationExtends
}

// MergeMode determines how a directive combines with a lower-tier directive
// on the same topic during composition.
type MergeMode string

const (
	// MergeOverride replaces any same-topic directive from a lower tier.
	MergeOverride MergeMode = "override"

	// MergeAugment is appended alongside lower-tier directives on the same
	// topic instead of replacing them.
	MergeAugment MergeMode = "augment"
)

// IsValid returns true if the merge mode is one of the known modes.
func (m MergeMode) IsValid() bool {
	return m == MergeOverride || m == MergeAugment
}

// Relation is a declared, machine-checkable edge to another document.
// It replaces the free-text cross-references ("Extends Python coding
// patterns") found in prose-only policy corpora.
type Relation struct {
	// Kind is the relation kind (supplements, extends).
	Kind RelationKind

	// Target is the name of the related document. The target must resolve
	// to a document loaded in the same store.
	Target string
}

// Selector is a document's applicability predicate over a query context.
// A nil selector means the document always applies; this is how a base
// policy applies everywhere.
type Selector struct {
	// Language matches the context's language tag exactly (case-insensitive).
	// Empty means any language.
	Language string

	// Signals lists framework signals that must all be present in the
	// context's signal set.
	Signals []string
}

// Directive is one atomic, topic-tagged rule statement within a document.
type Directive struct {
	// Topic is the topic tag this directive addresses
	// (e.g. "error-handling", "state-management").
	Topic string

	// Statement is the rule text.
	Statement string

	// Mode determines override vs. augment semantics during composition.
	Mode MergeMode

	// Examples are optional illustrations of the rule applied correctly.
	Examples []string

	// AntiPatterns are optional illustrations of what the rule forbids.
	AntiPatterns []string
}

// Document represents one parsed policy document.
// Documents are immutable once loaded.
type Document struct {
	// Name is the stable, unique document identity (kebab-case).
	Name string

	// Description is free text describing the document's purpose.
	Description string

	// Relations are the declared edges to other documents.
	Relations []Relation

	// Selector is the applicability predicate; nil means always applicable.
	Selector *Selector

	// Directives is the ordered sequence of directives in source order.
	Directives []*Directive

	// SourceFile is the path the document was parsed from, if any.
	SourceFile string
}

// HasRelations returns true if the document declares at least one relation.
func (d *Document) HasRelations() bool {
	return len(d.Relations) > 0
}

// RelationTargets returns the names of all related documents in declaration
// order.
func (d *Document) RelationTargets() []string {
	targets := make([]string, 0, len(d.Relations))
	for _, rel := range d.Relations {
		targets = append(targets, rel.Target)
	}
	return targets
}

// DirectivesForTopic returns all directives on the given topic in source
// order.
func (d *Document) DirectivesForTopic(topic string) []*Directive {
	var matched []*Directive
	for _, directive := range d.Directives {
		if directive.Topic == topic {
			matched = append(matched, directive)
		}
	}
	return matched
}

// Topics returns the distinct topics addressed by the document, in first
// appearance order.
func (d *Document) Topics() []string {
	seen := make(map[string]bool, len(d.Directives))
	var topics []string
	for _, directive := range d.Directives {
		if !seen[directive.Topic] {
			seen[directive.Topic] = true
			topics = append(topics, directive.Topic)
		}
	}
	return topics
}

// AlwaysApplicable returns true if the document has no selector and therefore
// applies to every context.
func (d *Document) AlwaysApplicable() bool {
	return d.Selector == nil
}
