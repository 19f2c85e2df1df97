package users

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ngo/lumen/internal/auth"
	"github.com/lumen-ngo/lumen/internal/roles"
)

// identityGuard admits everyone as the given identity and records the
// permissions each route asked for.
type identityGuard struct {
	identity auth.Identity
	asked    []roles.Permission
}

func (g *identityGuard) RequirePermission(p roles.Permission) func(http.Handler) http.Handler {
	g.asked = append(g.asked, p)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), g.identity)))
		})
	}
}

func newUsersRouter(repo *fakeRepo, actor roles.Role) (http.Handler, *identityGuard) {
	guard := &identityGuard{identity: auth.Identity{UserID: "actor", Role: actor, IsActive: true}}
	h := NewHandler(nil, NewService(repo, roles.NewRegistry()), guard)
	r := chi.NewRouter()
	r.Route("/api/users", h.MountRoutes)
	return r, guard
}

func TestListUsersEndpoint(t *testing.T) {
	repo := &fakeRepo{users: []User{{ID: "u1", Email: "a@lumen.test", Role: roles.Technician}}}
	router, guard := newUsersRouter(repo, roles.Supervisor)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users?page=1&perPage=5&role=technician", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"a@lumen.test"`)
	assert.Contains(t, rr.Body.String(), `"perPage":5`)
	assert.Equal(t, roles.Technician, repo.filter.Role)
	assert.ElementsMatch(t, []roles.Permission{roles.PermUsersView, roles.PermUsersManage}, guard.asked)
}

func TestCreateUserEndpoint(t *testing.T) {
	router, _ := newUsersRouter(&fakeRepo{}, roles.Supervisor)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	rr := post(`{"email":"t@lumen.test","name":"Tech","role":"TECHNICIAN","password":"temporary-pass"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"mustChangePassword":true`)

	rr = post(`{"email":"boss@lumen.test","name":"Boss","role":"ADMINISTRATOR","password":"temporary-pass"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = post(`{"email":"nope","name":"","role":"TECHNICIAN","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email"`)
	assert.Contains(t, rr.Body.String(), `"password"`)
}

func TestListUsersRejectsHugePage(t *testing.T) {
	repo := &fakeRepo{}
	router, _ := newUsersRouter(repo, roles.Supervisor)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users?page=4611686018427387904", nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"validation"`)
	assert.Contains(t, rr.Body.String(), `"page"`)
	assert.Empty(t, repo.filter.Search)
	assert.Zero(t, repo.filter.Page)
}
