package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mercator-hq/strata/pkg/audit"
	"mercator-hq/strata/pkg/audit/retention"
	"mercator-hq/strata/pkg/audit/storage"
	"mercator-hq/strata/pkg/config"
	"mercator-hq/strata/pkg/engine"
	"mercator-hq/strata/pkg/manager"
	"mercator-hq/strata/pkg/telemetry/logging"
	"mercator-hq/strata/pkg/telemetry/metrics"
)

var watchFlags struct {
	configPath string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Load documents and keep the snapshot current",
	Long: `Load the configured document source and keep the active snapshot
current until interrupted.

In file mode with watching enabled, document changes are picked up by a
filesystem watcher; in git mode the remote repository is cloned and polled
for new commits. Every reload is atomic: a source that fails validation
leaves the previous snapshot in place.

Metrics and the query audit trail are initialized from the same config file
when enabled.

Examples:
  # Run with a config file
  strata watch --config strata.yaml

  # Environment overrides (STRATA_*) apply on top of the file
  STRATA_DOCUMENTS_MODE=git strata watch --config strata.yaml`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.configPath, "config", "c", "", "config file path (required)")
	watchCmd.MarkFlagRequired("config")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(watchFlags.configPath)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var engineOpts []engine.Option
	engineOpts = append(engineOpts, engine.WithLogger(logger))

	managerOpts := []manager.Option{manager.WithLogger(logger)}

	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector(cfg.Metrics, nil)
		engineOpts = append(engineOpts, engine.WithObserver(collector))
		managerOpts = append(managerOpts, manager.WithReloadRecorder(collector))
	}

	if cfg.Audit.Enabled {
		sqliteCfg := storage.DefaultSQLiteConfig()
		if cfg.Audit.Path != "" {
			sqliteCfg.Path = cfg.Audit.Path
		}
		auditStore, err := storage.NewSQLiteStorage(sqliteCfg)
		if err != nil {
			return fmt.Errorf("failed to open audit storage: %w", err)
		}
		defer auditStore.Close()

		engineOpts = append(engineOpts, engine.WithObserver(audit.NewRecorder(auditStore, logger)))

		pruner := retention.NewPruner(auditStore, &retention.Config{
			RetentionDays: cfg.Audit.RetentionDays,
			MaxRecords:    cfg.Audit.MaxRecords,
			PruneSchedule: cfg.Audit.PruneSchedule,
		})
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start audit pruning: %w", err)
		}
		defer scheduler.Stop()
	}

	managerOpts = append(managerOpts, manager.WithEngineOptions(engineOpts...))

	mgr := manager.New(cfg.Documents, managerOpts...)
	defer mgr.Close()

	if _, err := mgr.Start(ctx); err != nil {
		return err
	}

	go logReloadEvents(ctx, logger, mgr.Events())

	watching := cfg.Documents.Mode == "git" ||
		(cfg.Documents.Mode == "file" && cfg.Documents.Watch)
	if !watching {
		logger.Info("watching disabled, holding current snapshot")
		<-ctx.Done()
		return nil
	}

	return mgr.Watch(ctx)
}

// logReloadEvents drains the manager's event channel until the context is
// cancelled.
func logReloadEvents(ctx context.Context, logger *slog.Logger, events <-chan manager.ReloadEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			if event.Err != nil {
				logger.Error("reload failed", "error", event.Err)
				continue
			}
			logger.Info("snapshot reloaded",
				"documents", event.Documents,
				"version", event.Version,
			)
		}
	}
}
