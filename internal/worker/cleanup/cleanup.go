// Package cleanup sweeps expired session tokens.
//
// Expired tokens are already rejected and deleted when they are read. The
// sweep only removes the ones nobody presents again, so the table does not
// grow without bound.
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/dda/internal/metrics"
)

// Executor is satisfied by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SweepJob deletes every session token whose expiry has passed.
type SweepJob struct {
	db      Executor
	logger  *slog.Logger
	metrics metrics.MetricsCollector
}

// NewSweepJob returns a SweepJob. collector may be nil.
func NewSweepJob(db Executor, logger *slog.Logger, collector metrics.MetricsCollector) *SweepJob {
	return &SweepJob{
		db:      db,
		logger:  logger,
		metrics: collector,
	}
}

// Run deletes expired tokens once and returns how many were removed.
// Running it with nothing to delete is not an error.
func (j *SweepJob) Run(ctx context.Context) (int64, error) {
	start := time.Now()

	result, err := j.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE expires_at <= now()`)
	if err != nil {
		j.logger.ErrorContext(ctx, "session sweep failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to sweep expired sessions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		j.logger.ErrorContext(ctx, "failed to read swept row count", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to read swept row count: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordSessionsSwept(deleted)
	}

	j.logger.InfoContext(ctx, "session sweep completed",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return deleted, nil
}

// Start runs the sweep immediately and then every interval until ctx is done.
func (j *SweepJob) Start(ctx context.Context, interval time.Duration) {
	j.runLogged(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

// runLogged runs one sweep; Run has already logged any failure.
func (j *SweepJob) runLogged(ctx context.Context) {
	_, _ = j.Run(ctx)
}
