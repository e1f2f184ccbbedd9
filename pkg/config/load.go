package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path.
// It applies default values, validates the result, and returns any errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention STRATA_SECTION_FIELD (e.g., STRATA_DOCUMENTS_PATH) and always
// take precedence over file-based configuration.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("STRATA_DOCUMENTS_MODE"); val != "" {
		cfg.Documents.Mode = val
	}
	if val := os.Getenv("STRATA_DOCUMENTS_PATH"); val != "" {
		cfg.Documents.Path = val
	}
	if val := os.Getenv("STRATA_DOCUMENTS_GIT_REPOSITORY"); val != "" {
		cfg.Documents.Git.Repository = val
	}
	if val := os.Getenv("STRATA_DOCUMENTS_GIT_BRANCH"); val != "" {
		cfg.Documents.Git.Branch = val
	}
	if val := os.Getenv("STRATA_DOCUMENTS_GIT_POLL_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Documents.Git.PollInterval = d
		}
	}
	if val := os.Getenv("STRATA_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("STRATA_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("STRATA_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}
}
