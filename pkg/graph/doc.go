// Package graph builds the precedence graph over policy documents.
//
// Each declared relation ("supplements", "extends") becomes a directed edge
// from the declaring document to its target. The builder validates that the
// result is acyclic and derives a precedence tier for every document: a
// document with no relations sits at tier 0 (base), and a document's tier is
// one more than the highest tier among its targets.
//
// Tiers are always derived from the relation graph, never declared by hand;
// hand-assigned tiers could silently drift from the declared relations.
//
// Two documents with no relation path between them may share a tier. The
// graph establishes a partial order, not a total order, which is what makes
// same-tier conflict detection during composition meaningful.
package graph
