// Package storage implements SQLite-backed persistence for the query audit
// trail.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/strata/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It creates the parent directory if needed, initializes the schema, and
// enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, audit.NewStorageError("sqlite", "mkdir", err)
		}
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the schema and pragmas.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}

	return nil
}

// Insert implements audit.Storage.
func (s *SQLiteStorage) Insert(ctx context.Context, record *audit.QueryRecord) error {
	signals, err := json.Marshal(record.Signals)
	if err != nil {
		return audit.NewStorageError("sqlite", "marshal_signals", err)
	}
	applied, err := json.Marshal(record.AppliedDocuments)
	if err != nil {
		return audit.NewStorageError("sqlite", "marshal_applied", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO query_records
			(id, timestamp, identifier, language, signals, snapshot_version,
			 applied_documents, topic_count, conflict_count, duration_us, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.UnixNano(),
		record.Identifier,
		record.Language,
		string(signals),
		record.SnapshotVersion,
		string(applied),
		record.TopicCount,
		record.ConflictCount,
		record.Duration.Microseconds(),
		record.Error,
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "insert", err)
	}

	return nil
}

// QueryRange implements audit.Storage.
func (s *SQLiteStorage) QueryRange(ctx context.Context, from, to time.Time, limit int) ([]*audit.QueryRecord, error) {
	query := `
		SELECT id, timestamp, identifier, language, signals, snapshot_version,
		       applied_documents, topic_count, conflict_count, duration_us, error
		FROM query_records
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp DESC`
	args := []any{from.UnixNano(), to.UnixNano()}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "query_range", err)
	}
	defer rows.Close()

	var records []*audit.QueryRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "query_range", err)
	}

	return records, nil
}

// Count implements audit.Storage.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM query_records").Scan(&count)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteBefore implements audit.Storage.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM query_records WHERE timestamp < ?", cutoff.UnixNano())
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete_before", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete_before", err)
	}
	return deleted, nil
}

// DeleteOldest implements audit.Storage.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM query_records
		WHERE id NOT IN (
			SELECT id FROM query_records ORDER BY timestamp DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete_oldest", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete_oldest", err)
	}
	return deleted, nil
}

// Close implements audit.Storage.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError("sqlite", "close", err)
	}
	return nil
}

// scanRecord reads one row into a QueryRecord.
func scanRecord(rows *sql.Rows) (*audit.QueryRecord, error) {
	var (
		record     audit.QueryRecord
		timestamp  int64
		signals    string
		applied    string
		durationUs int64
	)

	err := rows.Scan(
		&record.ID,
		&timestamp,
		&record.Identifier,
		&record.Language,
		&signals,
		&record.SnapshotVersion,
		&applied,
		&record.TopicCount,
		&record.ConflictCount,
		&durationUs,
		&record.Error,
	)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "scan", err)
	}

	record.Timestamp = time.Unix(0, timestamp).UTC()
	record.Duration = time.Duration(durationUs) * time.Microsecond

	if err := json.Unmarshal([]byte(signals), &record.Signals); err != nil {
		return nil, audit.NewStorageError("sqlite", "unmarshal_signals", err)
	}
	if err := json.Unmarshal([]byte(applied), &record.AppliedDocuments); err != nil {
		return nil, audit.NewStorageError("sqlite", "unmarshal_applied", err)
	}

	return &record, nil
}
