// Package authz gates operations on the caller's role or permissions.
package authz

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lumen-ngo/lumen/internal/auth"
	"github.com/lumen-ngo/lumen/internal/platform/httpx"
	"github.com/lumen-ngo/lumen/internal/roles"
)

var (
	// ErrUnauthorized rejects requests without a usable, active identity.
	ErrUnauthorized = fmt.Errorf("authz: %w", httpx.ErrUnauthorized)
	// ErrForbidden rejects identities that lack the required role or permission.
	ErrForbidden = fmt.Errorf("authz: %w", httpx.ErrForbidden)
)

type requirementKind int

// The zero kind is not a valid requirement, so a zero Requirement rejects
// every caller.
const (
	kindAuthenticated requirementKind = iota + 1
	kindMinRole
	kindPermission
)

// Requirement is what a guarded operation demands of its caller.
type Requirement struct {
	kind       requirementKind
	role       roles.Role
	permission roles.Permission
}

// MinRole requires a role at least as privileged as min.
func MinRole(min roles.Role) Requirement {
	return Requirement{kind: kindMinRole, role: min}
}

// Permission requires p to be granted to the caller's role.
func Permission(p roles.Permission) Requirement {
	return Requirement{kind: kindPermission, permission: p}
}

// Authenticated only requires an active identity.
func Authenticated() Requirement {
	return Requirement{kind: kindAuthenticated}
}

func (r Requirement) String() string {
	switch r.kind {
	case kindMinRole:
		return "role<=" + r.role.String()
	case kindPermission:
		return "permission:" + string(r.permission)
	case kindAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// IdentityResolver turns a request into an identity.
type IdentityResolver interface {
	Resolve(r *http.Request) (auth.Identity, error)
}

// Recorder counts rejections by reason.
type Recorder interface {
	ObserveAuthzRejection(reason string)
}

// Guard checks requirements against the identity of each request. It keeps
// no per-request state and is safe for concurrent use.
type Guard struct {
	resolver IdentityResolver
	registry *roles.Registry
	logger   *slog.Logger
	recorder Recorder
}

// NewGuard constructs a Guard. recorder may be nil.
func NewGuard(resolver IdentityResolver, registry *roles.Registry, logger *slog.Logger, recorder Recorder) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{resolver: resolver, registry: registry, logger: logger, recorder: recorder}
}

// Authorize resolves the caller and checks req. It returns the identity on
// success, ErrUnauthorized or ErrForbidden on rejection, and an error wrapping
// httpx.ErrSessionStore when the identity could not be resolved.
func (g *Guard) Authorize(r *http.Request, req Requirement) (auth.Identity, error) {
	identity, err := g.resolver.Resolve(r)
	if err != nil {
		if errors.Is(err, httpx.ErrSessionStore) {
			g.reject("session_store")
			return auth.Identity{}, err
		}
		g.reject("unauthenticated")
		return auth.Identity{}, ErrUnauthorized
	}
	if err := g.Decide(identity, req); err != nil {
		return auth.Identity{}, err
	}
	return identity, nil
}

// Decide applies req to an already resolved identity.
func (g *Guard) Decide(identity auth.Identity, req Requirement) error {
	if !identity.IsActive {
		g.reject("inactive")
		return ErrUnauthorized
	}
	switch req.kind {
	case kindMinRole:
		if !g.atLeast(identity.Role, req.role) {
			g.reject("forbidden")
			return ErrForbidden
		}
	case kindPermission:
		if !g.registry.Has(identity.Role, req.permission) {
			g.reject("forbidden")
			return ErrForbidden
		}
	case kindAuthenticated:
	default:
		g.logger.Error("invalid authorization requirement", slog.String("requirement", req.String()))
		g.reject("invalid_requirement")
		return ErrForbidden
	}
	return nil
}

// atLeast reports whether have is as privileged as min. Unknown roles sit at
// the least privileged level and never satisfy a role requirement.
func (g *Guard) atLeast(have, min roles.Role) bool {
	haveLevel, err := g.registry.LevelOf(have)
	if err != nil {
		g.logger.Warn("unknown role on identity", slog.String("role", string(have)))
		return false
	}
	minLevel, err := g.registry.LevelOf(min)
	if err != nil {
		return false
	}
	return haveLevel <= minLevel
}

func (g *Guard) reject(reason string) {
	if g.recorder != nil {
		g.recorder.ObserveAuthzRejection(reason)
	}
}

// Require returns middleware that runs the next handler only when req holds.
// The identity is stored in the request context for downstream handlers.
func (g *Guard) Require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := g.Authorize(r, req)
			if err != nil {
				if errors.Is(err, httpx.ErrSessionStore) {
					g.logger.Error("resolve identity", slog.String("path", r.URL.Path), slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole is Require(MinRole(min)).
func (g *Guard) RequireRole(min roles.Role) func(http.Handler) http.Handler {
	return g.Require(MinRole(min))
}

// RequirePermission is Require(Permission(p)).
func (g *Guard) RequirePermission(p roles.Permission) func(http.Handler) http.Handler {
	return g.Require(Permission(p))
}

// RequireAuthenticated is Require(Authenticated()).
func (g *Guard) RequireAuthenticated() func(http.Handler) http.Handler {
	return g.Require(Authenticated())
}

// Protect wraps op so it only runs for callers satisfying req. On rejection
// op is never invoked and the zero T is returned with the guard's error.
func Protect[T any](g *Guard, req Requirement, op func(r *http.Request, identity auth.Identity) (T, error)) func(*http.Request) (T, error) {
	return func(r *http.Request) (T, error) {
		identity, err := g.Authorize(r, req)
		if err != nil {
			var zero T
			return zero, err
		}
		return op(r, identity)
	}
}
