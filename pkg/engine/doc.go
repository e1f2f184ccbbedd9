// Package engine resolves layered policy documents into one effective
// ruleset for a given working context.
//
// The engine is the read side of Strata. It operates on an immutable
// snapshot (document store plus precedence graph) and answers queries in
// three steps:
//
//  1. Match - select every document whose selector is satisfied by the
//     context, ordered by precedence tier (base first) with a deterministic
//     name tiebreak.
//  2. Compose - merge the matched documents' directives in tier order,
//     applying override and augment semantics across tiers.
//  3. Resolve - detect same-tier directives on one topic with incompatible
//     statements and surface them as conflicts instead of guessing a winner.
//
// # Query Flow
//
//	Context (identifier, language, signals)
//	       |
//	Match  -> [base, python-patterns, ...]   (tier asc, name asc)
//	       |
//	Compose -> effective directives per topic
//	       |       override: higher tier replaces lower
//	       |       augment:  higher tier appended after lower
//	       |
//	Resolve -> same-tier disagreement => Conflict, topic withheld
//	       |
//	CompositionResult
//
// Queries are synchronous, side-effect-free, and safe to run concurrently
// against one snapshot. A query is a pure function of (snapshot, context):
// identical inputs always produce identical results. Cross-tier overrides
// are expected behavior and are recorded for observability only; conflicts
// are always user-visible in the result, never hidden by precedence guesses.
package engine
