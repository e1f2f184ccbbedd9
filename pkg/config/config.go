package config

import "time"

// Config is the root configuration for Strata.
type Config struct {
	// Documents configures the policy document source.
	Documents DocumentsConfig `yaml:"documents"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`

	// Audit configures the query audit trail.
	Audit AuditConfig `yaml:"audit"`
}

// DocumentsConfig configures where policy documents are loaded from and how
// changes are picked up.
type DocumentsConfig struct {
	// Mode selects the document source: "file" or "git".
	Mode string `yaml:"mode"`

	// Path is the document file or directory (file mode), or the directory
	// within the repository holding documents (git mode).
	Path string `yaml:"path"`

	// Watch enables hot reload on document changes (file mode).
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a change triggers a
	// reload.
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// MaxFileSize is the maximum size of a single document file in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`

	// Git configures the git document source (git mode only).
	Git GitConfig `yaml:"git"`
}

// GitConfig configures the git document source.
type GitConfig struct {
	// Repository is the clone URL.
	Repository string `yaml:"repository"`

	// Branch is the branch to track.
	Branch string `yaml:"branch"`

	// LocalPath is where the repository is cloned. Empty means a directory
	// under the system temp dir.
	LocalPath string `yaml:"local_path"`

	// PollInterval is how often the remote is polled for new commits.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Depth is the clone depth; 0 means a full clone.
	Depth int `yaml:"depth"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Format is the output format: "json" or "text".
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric namespace (default "strata").
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem (default "engine").
	Subsystem string `yaml:"subsystem"`
}

// AuditConfig configures the query audit trail.
type AuditConfig struct {
	// Enabled turns audit recording on.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// RetentionDays is how long records are kept; 0 keeps them forever.
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the number of records kept; 0 means unlimited.
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for scheduled pruning
	// (e.g. "0 3 * * *" for daily at 3 AM). Empty disables scheduling.
	PruneSchedule string `yaml:"prune_schedule"`
}
