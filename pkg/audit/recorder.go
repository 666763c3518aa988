package audit

import (
	"context"
	"time"

	"gatehouse-hq/janus/pkg/telemetry/logging"
)

// DefaultRetention is how long records are kept when no retention is
// configured.
const DefaultRetention = 90 * 24 * time.Hour

// Recorder is the write-side facade the gateway uses. Appends are
// best-effort: an audit storage failure is logged but never fails the
// request that triggered it.
type Recorder struct {
	store     Store
	logger    *logging.Logger
	retention time.Duration
}

// NewRecorder creates a Recorder over the given store.
func NewRecorder(store Store, retention time.Duration, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Recorder{
		store:     store,
		logger:    logger,
		retention: retention,
	}
}

// Record appends one record, absorbing storage errors.
func (r *Recorder) Record(ctx context.Context, record *Record) {
	if err := r.store.Append(ctx, record); err != nil {
		r.logger.Error("failed to append audit record",
			"action", string(record.Action),
			"error", err.Error(),
		)
	}
}

// Sweep purges records past the retention horizon. Scheduled on the
// service's cron runner.
func (r *Recorder) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-r.retention)
	removed, err := r.store.Purge(ctx, cutoff)
	if err != nil {
		r.logger.Error("audit retention sweep failed", "error", err.Error())
		return
	}
	if removed > 0 {
		r.logger.Info("audit retention sweep completed",
			"removed", removed,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
}

// Store exposes the underlying store for query endpoints.
func (r *Recorder) Store() Store {
	return r.store
}
