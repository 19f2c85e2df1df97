package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/lumen-ngo/lumen/internal/platform/httpx"
	"github.com/lumen-ngo/lumen/internal/shared"
)

const maxAuthBody = 16 << 10

// Guard is the subset of the authorization guard used by auth routes.
type Guard interface {
	RequireAuthenticated() func(http.Handler) http.Handler
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *shared.SessionManager
	csrf      *shared.CSRFManager
	guard     Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, guard Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		sessions:  sessions,
		csrf:      csrf,
		guard:     guard,
		validator: httpx.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(httprate.LimitByIP(10, time.Minute)).Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Get("/csrf", h.csrfToken)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuthenticated())
		r.Get("/me", h.me)
		r.Post("/change-password", h.changePassword)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	User      Identity   `json:"user"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CSRFToken string     `json:"csrfToken,omitempty"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(w, r, maxAuthBody, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FieldErrors(w, httpx.ValidationFields(err))
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("authenticate", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	resp := loginResponse{User: user.Identity()}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Renew(sess)
		sess.SetUser(user.ID)
		if token, err := h.csrf.EnsureToken(sess); err == nil {
			resp.CSRFToken = token
		}
	}
	token, expires, err := h.service.IssueToken(user.ID)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if token != "" {
		resp.Token = token
		resp.ExpiresAt = &expires
	}
	h.logger.Info("user logged in", slog.String("user_id", user.ID))
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrf.EnsureToken(sess)
	if err != nil {
		httpx.RespondError(w, ErrSessionStore)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, ErrUnauthenticated)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": identity})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, ErrUnauthenticated)
		return
	}
	var req changePasswordRequest
	if err := httpx.DecodeJSON(w, r, maxAuthBody, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FieldErrors(w, httpx.ValidationFields(err))
		return
	}
	if err := h.service.ChangePassword(r.Context(), identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) && !errors.Is(err, httpx.ErrValidation) {
			h.logger.Error("change password", slog.String("user_id", identity.UserID), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
