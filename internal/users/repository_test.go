package users

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ngo/lumen/internal/roles"
)

func TestListUsersBuildsFilteredPage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE \(email ILIKE \$1 OR name ILIKE \$1\) AND role = \$2 ORDER BY created_at DESC, id LIMIT \$3 OFFSET \$4`).
		WithArgs("%ana%", "SUPERVISOR", 10, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "role", "is_active", "must_change_password", "created_at", "updated_at", "count"}).
			AddRow("u-1", "ana@lumen.test", "Ana", "SUPERVISOR", true, false, now, now, 11))

	users, total, err := NewRepository(mock).ListUsers(context.Background(), ListFilter{Search: "ana", Role: roles.Supervisor, Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, users, 1)
	assert.Equal(t, roles.Supervisor, users[0].Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserWritesAuditInSameTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("new@lumen.test", "New", "TECHNICIAN", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "role", "is_active", "must_change_password", "created_at", "updated_at"}).
			AddRow("u-9", "new@lumen.test", "New", "TECHNICIAN", true, true, now, now))
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(pgxmock.AnyArg(), "users.create", "users", "u-9", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	user, err := NewRepository(mock).CreateUser(context.Background(), NewUser{Email: "new@lumen.test", Name: "New", Role: roles.Technician, PasswordHash: "hash"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "u-9", user.ID)
	assert.True(t, user.MustChangePassword)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err = NewRepository(mock).CreateUser(context.Background(), NewUser{Email: "dup@lumen.test", Name: "Dup", Role: roles.Technician, PasswordHash: "hash"}, "admin-1")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}
