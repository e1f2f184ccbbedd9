package engine

import (
	"mercator-hq/strata/pkg/doc"
	"mercator-hq/strata/pkg/graph"
)

// Match selects every document whose selector is satisfied by the context
// and returns the selection ordered by tier ascending (base first), breaking
// ties among same-tier matches by document name. Repeated calls with the
// same graph and context return the same sequence in the same order.
func Match(g *graph.PrecedenceGraph, qctx Context) []*doc.Document {
	// TopoOrder is already tier ascending with a name tiebreak, so filtering
	// preserves the required order.
	var matched []*doc.Document
	for _, document := range g.TopoOrder() {
		if SelectorMatches(document.Selector, qctx) {
			matched = append(matched, document)
		}
	}
	return matched
}

// SelectorMatches reports whether a document selector is satisfied by the
// context. A nil selector always matches; this is how a base policy applies
// everywhere.
func SelectorMatches(selector *doc.Selector, qctx Context) bool {
	if selector == nil {
		return true
	}

	if selector.Language != "" && selector.Language != qctx.normalizedLanguage() {
		return false
	}

	for _, signal := range selector.Signals {
		if !qctx.HasSignal(signal) {
			return false
		}
	}

	return true
}
