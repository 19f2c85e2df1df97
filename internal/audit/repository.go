package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the pgx surface used for reads.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads audit_logs.
type Repository struct {
	db Querier
}

// NewRepository constructs a Repository.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

const timelineSQL = `SELECT a.occurred_at, a.actor_id::text, u.email, a.action, a.entity, a.entity_id, a.meta
FROM audit_logs a
LEFT JOIN users u ON u.id = a.actor_id
WHERE ($1::timestamptz IS NULL OR a.occurred_at >= $1)
  AND ($2::timestamptz IS NULL OR a.occurred_at < $2)
  AND ($3::text IS NULL OR a.actor_id::text = $3 OR lower(u.email) = lower($3))
  AND ($4::text IS NULL OR a.entity = $4)
  AND ($5::text IS NULL OR a.action = $5)
ORDER BY a.occurred_at DESC, a.id DESC
LIMIT $6 OFFSET $7`

// Window returns up to limit rows starting at offset, newest first.
func (r *Repository) Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]TimelineRow, error) {
	rows, err := r.db.Query(ctx, timelineSQL,
		toPgTime(filters.From),
		toPgTime(filters.To),
		optionalText(filters.Actor),
		optionalText(filters.Entity),
		optionalText(filters.Action),
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("audit: timeline: %w", err)
	}
	defer rows.Close()

	var out []TimelineRow
	for rows.Next() {
		var (
			row   TimelineRow
			at    time.Time
			actor pgtype.Text
			email pgtype.Text
			meta  []byte
		)
		if err := rows.Scan(&at, &actor, &email, &row.Action, &row.Entity, &row.EntityID, &meta); err != nil {
			return nil, fmt.Errorf("audit: scan timeline: %w", err)
		}
		row.At = at.UTC()
		row.ActorID = actor.String
		row.ActorEmail = email.String
		if len(meta) > 0 && string(meta) != "null" {
			row.Meta = meta
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: timeline rows: %w", err)
	}
	return out, nil
}

func toPgTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalText(value string) pgtype.Text {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: trimmed, Valid: true}
}
