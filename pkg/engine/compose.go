package engine

import (
	"mercator-hq/strata/pkg/doc"
	"mercator-hq/strata/pkg/graph"
)

// mergedEntry is one directive in the running merge, tagged with the
// precedence tier it came from. Augment semantics can stack entries from
// several tiers under one topic.
type mergedEntry struct {
	directive EffectiveDirective
	tier      int
}

// composer accumulates the merge state for a single composition.
type composer struct {
	g          *graph.PrecedenceGraph
	merged     map[string][]mergedEntry
	conflicted map[string]int // topic -> index into conflicts
	conflicts  []Conflict
	overrides  []Override
}

// Compose merges the matched documents' directives in precedence order into
// one effective ruleset. The input must already be in tier order (the output
// of Match). Composition is deterministic and idempotent: identical inputs
// yield identical results.
func Compose(g *graph.PrecedenceGraph, matched []*doc.Document) *CompositionResult {
	c := &composer{
		g:          g,
		merged:     make(map[string][]mergedEntry),
		conflicted: make(map[string]int),
	}

	applied := make([]string, 0, len(matched))
	for _, document := range matched {
		applied = append(applied, document.Name)
		tier, _ := g.Tier(document.Name)

		for _, directive := range document.Directives {
			c.apply(directive.Topic, mergedEntry{
				directive: EffectiveDirective{
					Statement: directive.Statement,
					Source:    document.Name,
					Mode:      directive.Mode,
				},
				tier: tier,
			})
		}
	}

	return c.result(applied)
}

// apply merges one directive into the running state.
func (c *composer) apply(topic string, incoming mergedEntry) {
	// A topic already in conflict stays withheld; later directives join the
	// candidate list instead of quietly winning.
	if idx, ok := c.conflicted[topic]; ok {
		c.conflicts[idx].Candidates = append(c.conflicts[idx].Candidates, incoming.directive)
		return
	}

	entries := c.merged[topic]
	if len(entries) == 0 {
		c.merged[topic] = []mergedEntry{incoming}
		return
	}

	highest := entries[len(entries)-1].tier
	for _, entry := range entries {
		if entry.tier > highest {
			highest = entry.tier
		}
	}

	if incoming.tier > highest {
		// Strictly higher tier: override replaces, augment accumulates.
		// Cross-tier override is intended behavior, recorded for
		// observability rather than reported as a conflict.
		if incoming.directive.Mode == doc.MergeOverride {
			replaced := make([]EffectiveDirective, 0, len(entries))
			for _, entry := range entries {
				replaced = append(replaced, entry.directive)
			}
			c.overrides = append(c.overrides, Override{
				Topic:    topic,
				Winner:   incoming.directive,
				Replaced: replaced,
			})
			c.merged[topic] = []mergedEntry{incoming}
			return
		}
		c.merged[topic] = append(entries, incoming)
		return
	}

	// Same tier: two documents tied in the partial order both address the
	// topic. Hand off to the conflict resolver; never silently pick one.
	c.resolveSameTier(topic, entries, incoming)
}

// result freezes the merge state into a CompositionResult.
func (c *composer) result(applied []string) *CompositionResult {
	directives := make(map[string][]EffectiveDirective, len(c.merged))
	for topic, entries := range c.merged {
		effective := make([]EffectiveDirective, 0, len(entries))
		for _, entry := range entries {
			effective = append(effective, entry.directive)
		}
		directives[topic] = effective
	}

	conflicts := c.conflicts
	if conflicts == nil {
		conflicts = []Conflict{}
	}

	return &CompositionResult{
		AppliedDocuments: applied,
		Directives:       directives,
		Conflicts:        conflicts,
		Overrides:        c.overrides,
	}
}
