package engine

import "mercator-hq/strata/pkg/doc"

// resolveSameTier decides whether an incoming directive is compatible with
// the same-tier directives already merged for a topic.
//
// Two same-tier directives on one topic are compatible when their statements
// are textually identical or either one is flagged augment; compatibility
// must not depend on which document happened to be processed first. Anything
// else is an unresolved conflict: the engine never guesses a winner between
// tied documents. The conflict is surfaced in the result and the topic is
// withheld from the merged directives until a policy author resolves it.
func (c *composer) resolveSameTier(topic string, entries []mergedEntry, incoming mergedEntry) {
	if incoming.directive.Mode == doc.MergeAugment {
		c.merged[topic] = append(entries, incoming)
		return
	}

	for _, entry := range entries {
		if entry.tier == incoming.tier && entry.directive.Statement == incoming.directive.Statement {
			// Textually identical restatement; nothing new to merge.
			return
		}
	}

	// An incoming override conflicts only with a differing same-tier
	// override. Same-tier augments are compatible with it whichever side
	// arrived first.
	for _, entry := range entries {
		if entry.tier == incoming.tier && entry.directive.Mode == doc.MergeOverride {
			c.reportConflict(topic, entries, incoming)
			return
		}
	}

	// Every same-tier entry is an augment. The override merges ahead of
	// them and displaces lower-tier entries, exactly as it would have had
	// it been processed before the augments.
	kept := make([]mergedEntry, 0, len(entries)+1)
	kept = append(kept, incoming)
	var replaced []EffectiveDirective
	for _, entry := range entries {
		if entry.tier == incoming.tier {
			kept = append(kept, entry)
			continue
		}
		replaced = append(replaced, entry.directive)
	}
	if len(replaced) > 0 {
		c.overrides = append(c.overrides, Override{
			Topic:    topic,
			Winner:   incoming.directive,
			Replaced: replaced,
		})
	}
	c.merged[topic] = kept
}

// reportConflict withholds the topic and records every same-tier candidate.
func (c *composer) reportConflict(topic string, entries []mergedEntry, incoming mergedEntry) {
	candidates := make([]EffectiveDirective, 0, len(entries)+1)
	for _, entry := range entries {
		if entry.tier == incoming.tier {
			candidates = append(candidates, entry.directive)
		}
	}
	candidates = append(candidates, incoming.directive)

	delete(c.merged, topic)
	c.conflicted[topic] = len(c.conflicts)
	c.conflicts = append(c.conflicts, Conflict{
		Topic:      topic,
		Candidates: candidates,
	})
}
