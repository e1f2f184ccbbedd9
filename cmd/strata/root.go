package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Strata - layered policy resolution engine",
	Long: `Strata resolves layered policy documents into one effective ruleset.

Policy documents declare relations to one another ("supplements", "extends").
Strata derives precedence tiers from those relations, matches documents
against a working context (language, framework signals), and composes the
applicable directives with override and augment semantics. Same-tier
disagreements are surfaced as conflicts, never silently resolved.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
