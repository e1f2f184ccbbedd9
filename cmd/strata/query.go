package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/strata/pkg/config"
	"mercator-hq/strata/pkg/engine"
	"mercator-hq/strata/pkg/store"
	"mercator-hq/strata/pkg/telemetry/logging"
)

var queryFlags struct {
	dir        string
	identifier string
	language   string
	signals    []string
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Resolve the effective ruleset for a context",
	Long: `Resolve which policy documents apply to a working context and compose
their directives into one effective ruleset.

The result is printed as JSON: the applied documents in tier order, the
merged directives per topic, and any unresolved same-tier conflicts.

Examples:
  # Resolve for a Python file
  strata query --dir documents/ --identifier app.py --language python

  # Include framework signals
  strata query --dir documents/ --identifier Dash.tsx --language typescript \
    --signal uses-ui-framework`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryFlags.dir, "dir", "d", "", "directory of policy documents (required)")
	queryCmd.Flags().StringVarP(&queryFlags.identifier, "identifier", "i", "", "file or component identifier (required)")
	queryCmd.Flags().StringVarP(&queryFlags.language, "language", "l", "", "language tag (required)")
	queryCmd.Flags().StringArrayVar(&queryFlags.signals, "signal", nil, "framework signal (repeatable)")
	queryCmd.MarkFlagRequired("dir")
	queryCmd.MarkFlagRequired("identifier")
	queryCmd.MarkFlagRequired("language")
}

func runQuery(cmd *cobra.Command, args []string) error {
	var logWriter io.Writer = io.Discard
	if verbose {
		logWriter = os.Stderr
	}
	logger := logging.New(config.LoggingConfig{Level: "debug", Format: "text"}, logWriter)
	slog.SetDefault(logger)

	loader := store.NewLoader(nil)
	s, err := loader.LoadStore(queryFlags.dir)
	if err != nil {
		return err
	}

	snapshot, err := engine.NewSnapshot(s)
	if err != nil {
		return err
	}

	eng := engine.New(snapshot, engine.WithLogger(logger))

	result, err := eng.Query(context.Background(), engine.Context{
		Identifier: queryFlags.identifier,
		Language:   queryFlags.language,
		Signals:    queryFlags.signals,
	})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
