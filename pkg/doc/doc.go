// Package doc defines the document model for Strata policy documents and the
// YAML parser that produces it.
//
// A policy document is a named collection of directives (topic-tagged rule
// statements) together with zero or more relations to other documents
// ("supplements" or "extends") and an optional applicability selector. The
// relations are the raw material for the precedence graph (pkg/graph); the
// selector is evaluated by the match engine (pkg/engine) against a query
// context.
//
// Documents are immutable once parsed. The parser validates structure only:
// required identity, known relation kinds and merge modes, non-empty topics
// and statements. Cross-document validation (relation targets resolving,
// acyclicity) belongs to pkg/store and pkg/graph respectively.
//
// # Source format
//
//	name: python-patterns
//	description: Extends general coding principles for Python
//	relation:
//	  kind: extends
//	  target: general-principles
//	applies_to:
//	  language: python
//	sections:
//	  - topic: error-handling
//	    mode: override
//	    rule: Only catch exceptions with a recovery path
//
// A document may declare several relations with a `relations:` list; the
// singular `relation:` form is shorthand for a one-element list.
package doc
