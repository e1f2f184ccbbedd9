package config

import "fmt"

// Validate checks a configuration for invalid values.
// It returns the first error found; a configuration that fails validation
// must not be used.
func Validate(cfg *Config) error {
	switch cfg.Documents.Mode {
	case "file", "git":
	default:
		return fmt.Errorf("documents.mode: unknown mode %q (expected \"file\" or \"git\")", cfg.Documents.Mode)
	}

	if cfg.Documents.Path == "" {
		return fmt.Errorf("documents.path: path is required")
	}

	if cfg.Documents.DebounceInterval < 0 {
		return fmt.Errorf("documents.debounce_interval: must not be negative")
	}

	if cfg.Documents.MaxFileSize < 0 {
		return fmt.Errorf("documents.max_file_size: must not be negative")
	}

	if cfg.Documents.Mode == "git" {
		if cfg.Documents.Git.Repository == "" {
			return fmt.Errorf("documents.git.repository: repository URL is required in git mode")
		}
		if cfg.Documents.Git.PollInterval < 0 {
			return fmt.Errorf("documents.git.poll_interval: must not be negative")
		}
		if cfg.Documents.Git.Depth < 0 {
			return fmt.Errorf("documents.git.depth: must not be negative")
		}
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format: unknown format %q", cfg.Logging.Format)
	}

	if cfg.Audit.Enabled {
		if cfg.Audit.Path == "" {
			return fmt.Errorf("audit.path: path is required when audit is enabled")
		}
		if cfg.Audit.RetentionDays < 0 {
			return fmt.Errorf("audit.retention_days: must not be negative")
		}
		if cfg.Audit.MaxRecords < 0 {
			return fmt.Errorf("audit.max_records: must not be negative")
		}
	}

	return nil
}
