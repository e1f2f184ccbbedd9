package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/strata/pkg/graph"
	"mercator-hq/strata/pkg/store"
)

var graphFlags struct {
	dir string
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the derived precedence graph",
	Long: `Show every document's derived precedence tier and declared relations.

Tiers are derived from the relation graph: documents with no relations are
tier 0 (base), and each document sits one tier above the highest of its
relation targets.

Example:
  strata graph --dir documents/`,
	RunE: showGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringVarP(&graphFlags.dir, "dir", "d", "", "directory of policy documents (required)")
	graphCmd.MarkFlagRequired("dir")
}

func showGraph(cmd *cobra.Command, args []string) error {
	loader := store.NewLoader(nil)
	s, err := loader.LoadStore(graphFlags.dir)
	if err != nil {
		return err
	}

	g, err := graph.Build(s.Documents())
	if err != nil {
		return err
	}

	for _, document := range g.TopoOrder() {
		tier, _ := g.Tier(document.Name)
		fmt.Printf("tier %d  %s\n", tier, document.Name)

		for _, rel := range document.Relations {
			fmt.Printf("        %s -> %s\n", rel.Kind, rel.Target)
		}

		if document.Selector != nil {
			var parts []string
			if document.Selector.Language != "" {
				parts = append(parts, "language="+document.Selector.Language)
			}
			if len(document.Selector.Signals) > 0 {
				parts = append(parts, "signals="+strings.Join(document.Selector.Signals, ","))
			}
			fmt.Printf("        applies to: %s\n", strings.Join(parts, " "))
		} else {
			fmt.Printf("        applies to: all contexts\n")
		}
	}

	return nil
}
