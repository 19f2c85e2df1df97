package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumen-ngo/lumen/internal/platform/db"
	"github.com/lumen-ngo/lumen/internal/platform/httpx"
	"github.com/lumen-ngo/lumen/internal/roles"
	"github.com/lumen-ngo/lumen/internal/shared"
)

// ErrDuplicateEmail is returned when the email is already registered.
var ErrDuplicateEmail = fmt.Errorf("users: email already registered: %w", httpx.ErrDuplicate)

// DB is the pgx surface the repository needs. *pgxpool.Pool satisfies it.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	db.TxStarter
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	db DB
}

// NewRepository constructs a repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// ListUsers returns one page of users and the total number of matches.
func (r *Repository) ListUsers(ctx context.Context, filter ListFilter) ([]User, int, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(email ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	sql := `SELECT id::text, email, name, role, is_active, must_change_password, created_at, updated_at, COUNT(*) OVER() FROM users`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.PerPage, shared.Offset(filter.Page, filter.PerPage))
	sql += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var (
		users []User
		total int
	)
	for rows.Next() {
		var (
			user User
			role string
		)
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &role, &user.IsActive, &user.MustChangePassword, &user.CreatedAt, &user.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("users: scan: %w", err)
		}
		user.Role = roles.Role(role)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	return users, total, nil
}

// CreateUser inserts the account and its audit entry in one transaction.
func (r *Repository) CreateUser(ctx context.Context, input NewUser, actorID string) (User, error) {
	var user User
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var role string
		err := tx.QueryRow(ctx, `INSERT INTO users (email, name, role, password_hash, is_active, must_change_password)
VALUES (lower($1), $2, $3, $4, TRUE, TRUE)
RETURNING id::text, email, name, role, is_active, must_change_password, created_at, updated_at`,
			input.Email, input.Name, string(input.Role), input.PasswordHash,
		).Scan(&user.ID, &user.Email, &user.Name, &role, &user.IsActive, &user.MustChangePassword, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("users: insert: %w", err)
		}
		user.Role = roles.Role(role)
		return shared.NewAuditLogger(tx).Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "users.create",
			Entity:   "users",
			EntityID: user.ID,
			Meta:     map[string]any{"role": role},
		})
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}
