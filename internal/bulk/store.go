package bulk

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lumen-ngo/lumen/internal/shared"
)

// PGStore runs bulk updates on PostgreSQL.
type PGStore struct {
	db shared.Execer
}

// NewPGStore constructs a PGStore.
func NewPGStore(db shared.Execer) *PGStore {
	return &PGStore{db: db}
}

// UpdateMany sets column = value on every row whose id is in ids, in one
// statement. Table and column come from the catalog and are quoted.
func (s *PGStore) UpdateMany(ctx context.Context, table, column string, value any, ids []string) (int64, error) {
	sql := fmt.Sprintf(`UPDATE %s SET %s = $1, updated_at = NOW() WHERE id = ANY($2::uuid[])`,
		pgx.Identifier{table}.Sanitize(), pgx.Identifier{column}.Sanitize())
	tag, err := s.db.Exec(ctx, sql, value, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
