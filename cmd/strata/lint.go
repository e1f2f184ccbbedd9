package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/strata/pkg/engine"
	"mercator-hq/strata/pkg/store"
)

var lintFlags struct {
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate policy documents",
	Long: `Validate a directory of policy documents.

The lint command loads every document and performs full validation:
  - YAML syntax and document structure
  - Unique names and resolvable relation targets
  - Relation graph acyclicity

Examples:
  # Lint a document directory
  strata lint --dir documents/

  # JSON output for CI/CD
  strata lint --dir documents/ --format json`,
	RunE: lintDocuments,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of policy documents (required)")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
	lintCmd.MarkFlagRequired("dir")
}

// lintResult is the JSON shape of a lint run.
type lintResult struct {
	Valid     bool     `json:"valid"`
	Documents []string `json:"documents,omitempty"`
	MaxTier   int      `json:"maxTier,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func lintDocuments(cmd *cobra.Command, args []string) error {
	result := runLint(lintFlags.dir)

	switch lintFlags.format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	default:
		if result.Valid {
			fmt.Printf("OK: %d documents, %d tiers\n", len(result.Documents), result.MaxTier+1)
			for _, name := range result.Documents {
				fmt.Printf("  %s\n", name)
			}
		} else {
			fmt.Printf("FAIL: %s\n", result.Error)
		}
	}

	if !result.Valid {
		os.Exit(1)
	}
	return nil
}

// runLint loads and validates a document directory end to end.
func runLint(dir string) lintResult {
	loader := store.NewLoader(nil)

	s, err := loader.LoadStore(dir)
	if err != nil {
		return lintResult{Valid: false, Error: err.Error()}
	}

	snapshot, err := engine.NewSnapshot(s)
	if err != nil {
		return lintResult{Valid: false, Error: err.Error()}
	}

	return lintResult{
		Valid:     true,
		Documents: s.Names(),
		MaxTier:   snapshot.Graph().MaxTier(),
	}
}
