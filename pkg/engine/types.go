package engine

import (
	"strings"

	"mercator-hq/strata/pkg/doc"
)

// Context describes the working situation a query resolves policies for.
// It is immutable and supplied per query.
type Context struct {
	// Identifier names the file or component being worked on.
	Identifier string `json:"identifier"`

	// Language is the language or runtime tag (e.g. "python", "typescript").
	Language string `json:"language"`

	// Signals is the set of detected framework signals
	// (e.g. "uses-notebook-cells", "uses-ui-framework").
	Signals []string `json:"frameworkSignals"`
}

// HasSignal returns true if the context carries the given framework signal.
func (c Context) HasSignal(signal string) bool {
	for _, s := range c.Signals {
		if s == signal {
			return true
		}
	}
	return false
}

// normalizedLanguage returns the language tag lowered for comparison.
func (c Context) normalizedLanguage() string {
	return strings.ToLower(c.Language)
}

// EffectiveDirective is one directive as it appears in a composition result,
// attributed to its source document.
type EffectiveDirective struct {
	// Statement is the rule text.
	Statement string `json:"statement"`

	// Source is the name of the document the directive came from.
	Source string `json:"source"`

	// Mode is the directive's merge mode. Retained for introspection; not
	// part of the wire format.
	Mode doc.MergeMode `json:"-"`
}

// Conflict reports same-tier directives on one topic with incompatible
// statements. Conflicts are normal, expected composition output, not errors;
// the engine surfaces them for the caller to resolve and withholds the topic
// from the merged directives.
type Conflict struct {
	// Topic is the contested topic.
	Topic string `json:"topic"`

	// Candidates are the disagreeing directives, in document order.
	Candidates []EffectiveDirective `json:"candidates"`
}

// Override records a cross-tier replacement that occurred during
// composition. Overrides are intended behavior, recorded for observability
// only.
type Override struct {
	// Topic is the topic that was overridden.
	Topic string `json:"topic"`

	// Winner is the higher-tier directive that took effect.
	Winner EffectiveDirective `json:"winner"`

	// Replaced are the lower-tier directives that were displaced.
	Replaced []EffectiveDirective `json:"replaced"`
}

// CompositionResult is the composed ruleset for one query.
// It is produced fresh per query and never mutated after construction.
type CompositionResult struct {
	// AppliedDocuments lists the matched documents in tier order.
	AppliedDocuments []string `json:"appliedDocuments"`

	// Directives is the merged set of effective directives keyed by topic.
	// A topic maps to multiple directives when augment semantics stacked
	// them, lower tier first.
	Directives map[string][]EffectiveDirective `json:"directives"`

	// Conflicts lists unresolved same-tier conflicts. Possibly empty, never
	// nil.
	Conflicts []Conflict `json:"conflicts"`

	// Overrides lists cross-tier replacements that occurred, for
	// observability.
	Overrides []Override `json:"overrides,omitempty"`

	// SnapshotVersion is the content version of the store snapshot the
	// result was composed from.
	SnapshotVersion string `json:"snapshotVersion,omitempty"`
}

// TopicCount returns the number of topics with effective directives.
func (r *CompositionResult) TopicCount() int {
	return len(r.Directives)
}

// HasConflicts returns true if composition left unresolved conflicts.
func (r *CompositionResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Effective returns the effective directives for a topic, or nil if the
// topic is absent (unaddressed or withheld by an unresolved conflict).
func (r *CompositionResult) Effective(topic string) []EffectiveDirective {
	return r.Directives[topic]
}
