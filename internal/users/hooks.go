package users

import (
	"context"

	"github.com/lumen-ngo/lumen/internal/bulk"
)

// SessionPurger schedules removal of every session held by the given users.
type SessionPurger interface {
	EnqueuePurgeSessions(ctx context.Context, userIDs []string) error
}

// DeactivationHook revokes the sessions of users switched off in bulk. The
// guard already rejects inactive users on every request; purging frees the
// stored sessions.
func DeactivationHook(purger SessionPurger) bulk.Hook {
	return func(ctx context.Context, req bulk.Request, res bulk.Result) error {
		if req.Field != "isActive" || res.MatchedCount == 0 {
			return nil
		}
		if active, ok := req.Value.(bool); !ok || active {
			return nil
		}
		return purger.EnqueuePurgeSessions(ctx, req.IDs)
	}
}
