package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/lumen-ngo/lumen/internal/jobs"
)

// AuditPruner deletes audit entries older than retention.
type AuditPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditPruneJob enforces the audit log retention window.
type AuditPruneJob struct {
	Audit   AuditPruner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAuditPruneJob constructs the job handler.
func NewAuditPruneJob(audit AuditPruner, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditPruneJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditPruneJob{Audit: audit, Logger: logger, Metrics: metrics}
}

// Handle processes audit:prune tasks.
func (j *AuditPruneJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Audit == nil {
		return errors.New("jobs: audit prune not configured")
	}
	payload := AuditPrunePayload{RetentionDays: DefaultAuditRetentionDays}
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("jobs: decode prune payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = DefaultAuditRetentionDays
	}

	tracker := j.Metrics.Track(TaskAuditPrune)
	removed, err := j.Audit.Prune(ctx, time.Duration(payload.RetentionDays)*24*time.Hour)
	if err != nil {
		return tracker.End(err)
	}
	j.Metrics.AddItems(TaskAuditPrune, removed)
	j.Logger.Info("audit log pruned", slog.Int("retention_days", payload.RetentionDays), slog.Int64("removed", removed))
	return tracker.End(nil)
}
