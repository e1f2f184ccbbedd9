package audit

import (
	"context"
	"fmt"
	"time"
)

// QueryRecord is one audit entry for a resolution query.
type QueryRecord struct {
	// ID is the record's UUID.
	ID string `json:"id"`

	// Timestamp is when the query was answered.
	Timestamp time.Time `json:"timestamp"`

	// Identifier is the queried file or component identifier.
	Identifier string `json:"identifier"`

	// Language is the queried language tag.
	Language string `json:"language"`

	// Signals are the queried framework signals.
	Signals []string `json:"signals"`

	// SnapshotVersion is the content version of the store snapshot that
	// answered the query.
	SnapshotVersion string `json:"snapshot_version"`

	// AppliedDocuments are the documents that applied, in tier order.
	AppliedDocuments []string `json:"applied_documents"`

	// TopicCount is the number of topics with effective directives.
	TopicCount int `json:"topic_count"`

	// ConflictCount is the number of unresolved conflicts surfaced.
	ConflictCount int `json:"conflict_count"`

	// Duration is how long the query took.
	Duration time.Duration `json:"duration"`

	// Error is the query failure message, if the query failed.
	Error string `json:"error,omitempty"`
}

// Storage persists and retrieves audit records.
type Storage interface {
	// Insert stores one record.
	Insert(ctx context.Context, record *QueryRecord) error

	// QueryRange returns records with timestamps in [from, to), newest
	// first, up to limit (0 means no limit).
	QueryRange(ctx context.Context, from, to time.Time, limit int) ([]*QueryRecord, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes records older than the cutoff and returns how
	// many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the oldest records until at most keep remain,
	// returning how many were removed.
	DeleteOldest(ctx context.Context, keep int64) (int64, error)

	// Close releases storage resources.
	Close() error
}

// StorageError wraps a storage backend failure with the backend and
// operation for context.
type StorageError struct {
	// Backend names the storage backend (e.g. "sqlite").
	Backend string

	// Operation is the operation that failed.
	Operation string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s: %s failed: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}
