package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/strata/pkg/engine"
)

// Recorder turns query outcomes into audit records and persists them.
// It implements engine.Observer.
type Recorder struct {
	storage Storage
	logger  *slog.Logger
}

// NewRecorder creates a recorder writing to the given storage.
func NewRecorder(storage Storage, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		storage: storage,
		logger:  logger.With("component", "audit.recorder"),
	}
}

// ObserveQuery implements engine.Observer.
// A storage failure is logged and does not affect the query itself.
func (r *Recorder) ObserveQuery(ctx context.Context, qctx engine.Context, result *engine.CompositionResult, duration time.Duration, err error) {
	record := &QueryRecord{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Identifier: qctx.Identifier,
		Language:   qctx.Language,
		Signals:    qctx.Signals,
		Duration:   duration,
	}

	if err != nil {
		record.Error = err.Error()
	}
	if result != nil {
		record.SnapshotVersion = result.SnapshotVersion
		record.AppliedDocuments = result.AppliedDocuments
		record.TopicCount = result.TopicCount()
		record.ConflictCount = len(result.Conflicts)
	}

	if insertErr := r.storage.Insert(ctx, record); insertErr != nil {
		r.logger.Error("failed to record query audit entry",
			"record_id", record.ID,
			"error", insertErr,
		)
	}
}
