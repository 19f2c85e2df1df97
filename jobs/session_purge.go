package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/lumen-ngo/lumen/internal/jobs"
)

// SessionStore removes the sessions of one user.
type SessionStore interface {
	PurgeUser(ctx context.Context, userID string) (int, error)
}

// SessionPurgeJob revokes stored sessions of deactivated users.
type SessionPurgeJob struct {
	Sessions SessionStore
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewSessionPurgeJob constructs the job handler.
func NewSessionPurgeJob(sessions SessionStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionPurgeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionPurgeJob{Sessions: sessions, Logger: logger, Metrics: metrics}
}

// Handle processes sessions:purge tasks. Every user is attempted; the task
// fails, and is retried, when any of them could not be purged.
func (j *SessionPurgeJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Sessions == nil {
		return errors.New("jobs: session purge not configured")
	}
	var payload SessionsPurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("jobs: decode purge payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskSessionsPurge)
	var (
		errs    []error
		removed int
	)
	for _, userID := range payload.UserIDs {
		n, err := j.Sessions.PurgeUser(ctx, userID)
		if err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		removed += n
	}
	j.Metrics.AddItems(TaskSessionsPurge, int64(removed))
	j.Logger.Info("sessions purged", slog.Int("users", len(payload.UserIDs)), slog.Int("sessions", removed))
	return tracker.End(errors.Join(errs...))
}
