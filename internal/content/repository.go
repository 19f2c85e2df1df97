package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lumen-ngo/lumen/internal/shared"
)

// Querier is the pgx surface used for lookups.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads single records of catalog entities.
type Repository struct {
	db Querier
}

// NewRepository constructs a Repository.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// FindByID returns one row of entity as a column map, without hidden columns.
// It returns shared.ErrNotFound when no row has the identifier.
func (r *Repository) FindByID(ctx context.Context, entity Entity, id string) (map[string]any, error) {
	sql := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, pgx.Identifier{entity.Table}.Sanitize())
	rows, err := r.db.Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("content: find %s: %w", entity.Name, err)
	}
	record, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("content: find %s: %w", entity.Name, err)
	}
	for _, col := range entity.Hidden {
		delete(record, col)
	}
	for col, v := range record {
		// pgx decodes uuid columns to raw bytes when scanning into any.
		if raw, ok := v.([16]byte); ok {
			record[col] = uuid.UUID(raw).String()
		}
	}
	return record, nil
}
