package jobs

import (
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionsPurge deletes every stored session of the given users.
	TaskSessionsPurge = "sessions:purge"
	// TaskAuditPrune deletes audit entries older than the retention window.
	TaskAuditPrune = "audit:prune"

	// DefaultAuditRetentionDays applies when a prune task carries no window.
	DefaultAuditRetentionDays = 180
)

// SessionsPurgePayload lists the users whose sessions are revoked.
type SessionsPurgePayload struct {
	UserIDs []string `json:"user_ids"`
}

// AuditPrunePayload configures the retention window.
type AuditPrunePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewSessionsPurgeTask constructs a sessions:purge task.
func NewSessionsPurgeTask(userIDs []string) (*asynq.Task, error) {
	if len(userIDs) == 0 {
		return nil, errors.New("jobs: sessions purge requires user ids")
	}
	body, err := json.Marshal(SessionsPurgePayload{UserIDs: userIDs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionsPurge, body, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// NewAuditPruneTask constructs an audit:prune task.
func NewAuditPruneTask(retentionDays int) (*asynq.Task, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultAuditRetentionDays
	}
	body, err := json.Marshal(AuditPrunePayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, body, asynq.Queue(QueueDefault)), nil
}
