package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumen-ngo/lumen/internal/auth"
	"github.com/lumen-ngo/lumen/internal/platform/httpx"
	"github.com/lumen-ngo/lumen/internal/roles"
)

type fakeRepo struct {
	created []NewUser
	actor   string
	filter  ListFilter
	users   []User
}

func (f *fakeRepo) ListUsers(_ context.Context, filter ListFilter) ([]User, int, error) {
	f.filter = filter
	return f.users, len(f.users), nil
}

func (f *fakeRepo) CreateUser(_ context.Context, input NewUser, actorID string) (User, error) {
	f.created = append(f.created, input)
	f.actor = actorID
	return User{ID: "new-id", Email: input.Email, Name: input.Name, Role: input.Role, IsActive: true, MustChangePassword: true}, nil
}

func input(role string) CreateInput {
	return CreateInput{Email: " new@lumen.test ", Name: "New Staff", Role: role, Password: "temporary-pass"}
}

func TestCreateUserHashesPasswordAndNormalises(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, roles.NewRegistry())
	actor := auth.Identity{UserID: "admin-1", Role: roles.Administrator, IsActive: true}

	user, err := svc.CreateUser(context.Background(), actor, input("technician"))
	require.NoError(t, err)
	assert.Equal(t, roles.Technician, user.Role)
	assert.True(t, user.MustChangePassword)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "new@lumen.test", repo.created[0].Email)
	assert.Equal(t, "admin-1", repo.actor)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created[0].PasswordHash), []byte("temporary-pass")))
}

func TestCreateUserRoleRules(t *testing.T) {
	cases := []struct {
		actor roles.Role
		role  string
		err   error
	}{
		{roles.Administrator, "ADMINISTRATOR", nil},
		{roles.Supervisor, "SUPERVISOR", nil},
		{roles.Supervisor, "TECHNICIAN", nil},
		{roles.Supervisor, "ADMINISTRATOR", httpx.ErrForbidden},
		{roles.Technician, "SUPERVISOR", httpx.ErrForbidden},
		{roles.Role("LEGACY"), "TECHNICIAN", httpx.ErrForbidden},
		{roles.Administrator, "OWNER", httpx.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(string(tc.actor)+"->"+tc.role, func(t *testing.T) {
			repo := &fakeRepo{}
			svc := NewService(repo, roles.NewRegistry())
			_, err := svc.CreateUser(context.Background(), auth.Identity{UserID: "a", Role: tc.actor, IsActive: true}, input(tc.role))
			if tc.err == nil {
				require.NoError(t, err)
				assert.Len(t, repo.created, 1)
				return
			}
			assert.ErrorIs(t, err, tc.err)
			assert.Empty(t, repo.created)
		})
	}
}

func TestListUsersRejectsUnknownRoleFilter(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, roles.NewRegistry())

	_, _, err := svc.ListUsers(context.Background(), ListFilter{Role: "OWNER"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, _, err = svc.ListUsers(context.Background(), ListFilter{Role: roles.Supervisor, Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, roles.Supervisor, repo.filter.Role)
}

func TestBootstrapCreatesAdministrator(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, roles.NewRegistry())

	user, err := svc.Bootstrap(context.Background(), "root@lumen.test", "Root", "first-password")
	require.NoError(t, err)
	assert.Equal(t, roles.Administrator, user.Role)
	assert.Empty(t, repo.actor)
}

func TestBootstrapValidatesInput(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, roles.NewRegistry())

	_, err := svc.Bootstrap(context.Background(), "not-an-email", "Root", "short")
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, repo.created)
}
