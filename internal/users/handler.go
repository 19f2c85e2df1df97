package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lumen-ngo/lumen/internal/auth"
	"github.com/lumen-ngo/lumen/internal/platform/httpx"
	"github.com/lumen-ngo/lumen/internal/roles"
	"github.com/lumen-ngo/lumen/internal/shared"
)

// Guard is the subset of the authorization guard used by user routes.
type Guard interface {
	RequirePermission(p roles.Permission) func(http.Handler) http.Handler
}

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     Guard
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard, validator: httpx.NewValidator()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequirePermission(roles.PermUsersView)).Get("/", h.listUsers)
	r.With(h.guard.RequirePermission(roles.PermUsersManage)).Post("/", h.createUser)
}

type listResponse struct {
	Data       []User            `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage, err := shared.PageParams(q)
	if err != nil {
		httpx.FieldErrors(w, map[string]string{"page": "must be at most " + strconv.Itoa(shared.MaxPage)})
		return
	}
	filter := ListFilter{
		Search:  q.Get("search"),
		Role:    roles.Role(strings.ToUpper(strings.TrimSpace(q.Get("role")))),
		Page:    page,
		PerPage: perPage,
	}
	users, total, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		if !errors.Is(err, httpx.ErrValidation) {
			h.logger.Error("list users failed", slog.Any("error", err))
			err = errors.Join(httpx.ErrPersistence, err)
		}
		httpx.RespondError(w, err)
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Data: users, Pagination: shared.NewPagination(page, perPage, total)})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, auth.ErrUnauthenticated)
		return
	}
	var input CreateInput
	if err := httpx.DecodeJSON(w, r, 16<<10, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request body")
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.FieldErrors(w, httpx.ValidationFields(err))
		return
	}
	user, err := h.service.CreateUser(r.Context(), actor, input)
	if err != nil {
		status, _ := httpx.Classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("create user failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("user created", slog.String("user_id", user.ID), slog.String("actor_id", actor.UserID), slog.String("role", string(user.Role)))
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": user})
}
