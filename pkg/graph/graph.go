package graph

import (
	"fmt"
	"sort"
	"strings"

	"mercator-hq/strata/pkg/doc"
)

// PrecedenceGraph is the validated, acyclic relation graph over a set of
// policy documents, with a derived precedence tier per document.
// It is immutable once built.
type PrecedenceGraph struct {
	docs  map[string]*doc.Document
	edges map[string][]string // document name -> relation targets
	tiers map[string]int
	order []*doc.Document // tier ascending, then name ascending
}

// CycleError reports a cycle in the relation graph. The graph is never
// silently repaired; the full cycle path is surfaced for diagnosability.
type CycleError struct {
	// Path is the exact cycle, with the first document repeated at the end
	// (e.g. ["a", "b", "a"]).
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("relation cycle detected: %s", strings.Join(e.Path, " -> "))
}

// MissingTargetError reports a relation naming a document that is not part
// of the build input.
type MissingTargetError struct {
	// Document is the document declaring the relation.
	Document string

	// Target is the relation target that failed to resolve.
	Target string
}

// Error implements the error interface.
func (e *MissingTargetError) Error() string {
	return fmt.Sprintf("document %q relates to unknown document %q", e.Document, e.Target)
}

// Build constructs the precedence graph from the given documents.
// It fails with a *MissingTargetError if any relation target does not
// resolve within the input, or a *CycleError carrying the exact cycle path
// if the relations are cyclic.
func Build(documents []*doc.Document) (*PrecedenceGraph, error) {
	g := &PrecedenceGraph{
		docs:  make(map[string]*doc.Document, len(documents)),
		edges: make(map[string][]string, len(documents)),
		tiers: make(map[string]int, len(documents)),
	}

	for _, document := range documents {
		g.docs[document.Name] = document
	}

	// Construct edges, validating that every target resolves.
	for _, document := range documents {
		targets := document.RelationTargets()
		for _, target := range targets {
			if _, ok := g.docs[target]; !ok {
				return nil, &MissingTargetError{
					Document: document.Name,
					Target:   target,
				}
			}
		}
		g.edges[document.Name] = targets
	}

	if err := g.assignTiers(); err != nil {
		return nil, err
	}

	g.buildOrder()

	return g, nil
}

// assignTiers walks the graph depth-first with a recursion-stack marker,
// failing on cycles and memoizing each document's tier.
func (g *PrecedenceGraph) assignTiers() error {
	visited := make(map[string]bool, len(g.docs))
	visiting := make(map[string]bool, len(g.docs))

	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		if visited[name] {
			return nil
		}

		if visiting[name] {
			return &CycleError{Path: extractCycle(stack, name)}
		}

		visiting[name] = true
		stack = append(stack, name)

		tier := 0
		for _, target := range g.edges[name] {
			if err := visit(target, stack); err != nil {
				return err
			}
			if t := g.tiers[target] + 1; t > tier {
				tier = t
			}
		}

		visiting[name] = false
		visited[name] = true
		g.tiers[name] = tier

		return nil
	}

	// Sorted iteration keeps error reporting deterministic.
	for _, name := range g.sortedNames() {
		if err := visit(name, nil); err != nil {
			return err
		}
	}

	return nil
}

// extractCycle trims the DFS stack down to the cycle itself and closes it.
func extractCycle(stack []string, repeated string) []string {
	start := 0
	for i, name := range stack {
		if name == repeated {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(stack)-start+1)
	cycle = append(cycle, stack[start:]...)
	cycle = append(cycle, repeated)
	return cycle
}

// buildOrder materializes the deterministic topological order:
// tier ascending, then document name ascending within a tier.
func (g *PrecedenceGraph) buildOrder() {
	g.order = make([]*doc.Document, 0, len(g.docs))
	for _, name := range g.sortedNames() {
		g.order = append(g.order, g.docs[name])
	}
	sort.SliceStable(g.order, func(i, j int) bool {
		ti, tj := g.tiers[g.order[i].Name], g.tiers[g.order[j].Name]
		if ti != tj {
			return ti < tj
		}
		return g.order[i].Name < g.order[j].Name
	})
}

// sortedNames returns all document names in lexicographic order.
func (g *PrecedenceGraph) sortedNames() []string {
	names := make([]string, 0, len(g.docs))
	for name := range g.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tier returns the derived precedence tier for the named document.
// The second return value is false if the document is not in the graph.
func (g *PrecedenceGraph) Tier(name string) (int, bool) {
	tier, ok := g.tiers[name]
	return tier, ok
}

// Document returns the named document, or nil if it is not in the graph.
func (g *PrecedenceGraph) Document(name string) *doc.Document {
	return g.docs[name]
}

// TopoOrder returns all documents ordered by tier ascending, then name
// ascending. The returned slice is a copy.
func (g *PrecedenceGraph) TopoOrder() []*doc.Document {
	order := make([]*doc.Document, len(g.order))
	copy(order, g.order)
	return order
}

// Targets returns the relation targets of the named document.
func (g *PrecedenceGraph) Targets(name string) []string {
	targets := make([]string, len(g.edges[name]))
	copy(targets, g.edges[name])
	return targets
}

// Len returns the number of documents in the graph.
func (g *PrecedenceGraph) Len() int {
	return len(g.docs)
}

// MaxTier returns the highest tier present in the graph, or -1 for an empty
// graph.
func (g *PrecedenceGraph) MaxTier() int {
	max := -1
	for _, tier := range g.tiers {
		if tier > max {
			max = tier
		}
	}
	return max
}
