package config

import "time"

// ApplyDefaults fills in default values for unset configuration fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Documents.Mode == "" {
		cfg.Documents.Mode = "file"
	}
	if cfg.Documents.Path == "" {
		cfg.Documents.Path = "documents/"
	}
	if cfg.Documents.DebounceInterval == 0 {
		cfg.Documents.DebounceInterval = 100 * time.Millisecond
	}
	if cfg.Documents.MaxFileSize == 0 {
		cfg.Documents.MaxFileSize = 1 * 1024 * 1024
	}

	if cfg.Documents.Git.Branch == "" {
		cfg.Documents.Git.Branch = "main"
	}
	if cfg.Documents.Git.PollInterval == 0 {
		cfg.Documents.Git.PollInterval = 60 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "strata"
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = "engine"
	}

	if cfg.Audit.Path == "" {
		cfg.Audit.Path = "data/audit.db"
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = 90
	}
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
