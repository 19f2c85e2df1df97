package content

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ngo/lumen/internal/shared"
)

func TestFindByIDDropsHiddenColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	users, _ := NewCatalog().Entity("users")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "is_active"}).
			AddRow("a1", "a@lumen.test", "$2a$10$hash", true))

	record, err := NewRepository(mock).FindByID(context.Background(), users, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a@lumen.test", record["email"])
	assert.NotContains(t, record, "password_hash")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	news, _ := NewCatalog().Entity("news")
	mock.ExpectQuery(`SELECT \* FROM "news"`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err = NewRepository(mock).FindByID(context.Background(), news, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
