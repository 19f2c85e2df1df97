package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/lumen-ngo/lumen/internal/auth"
	"github.com/lumen-ngo/lumen/internal/platform/httpx"
	"github.com/lumen-ngo/lumen/internal/roles"
	"github.com/lumen-ngo/lumen/internal/shared"
)

const (
	dateLayout      = "2006-01-02"
	day             = 24 * time.Hour
	defaultDays     = 7
	maxDays         = 90
	exportRateLimit = 10
)

// Guard is the subset of the authorization guard used by audit routes.
type Guard interface {
	RequirePermission(p roles.Permission) func(http.Handler) http.Handler
}

// TimelineService is the read side used by Handler.
type TimelineService interface {
	Timeline(ctx context.Context, filters TimelineFilters) (Result, error)
	Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error)
}

// Handler serves the audit timeline.
type Handler struct {
	logger  *slog.Logger
	service TimelineService
	guard   Guard
	now     func() time.Time
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service TimelineService, guard Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard, now: time.Now}
}

// MountRoutes registers GET / and GET /export.csv.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(h.guard.RequirePermission(roles.PermAuditView))
		gr.Get("/", h.timeline)
		gr.With(httprate.Limit(exportRateLimit, time.Minute, httprate.WithKeyFuncs(rateLimitKey))).
			Get("/export.csv", h.export)
	})
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	filters, fields := h.parseFilters(r)
	if fields != nil {
		httpx.FieldErrors(w, fields)
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("load audit timeline", slog.Any("error", err))
		httpx.RespondError(w, storeError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	filters, fields := h.parseFilters(r)
	if fields != nil {
		httpx.FieldErrors(w, fields)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.logger.Error("export audit timeline", slog.Any("error", err))
		httpx.RespondError(w, storeError(err))
		return
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		h.logger.Error("encode audit csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-timeline.csv"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

// parseFilters reads from/to as inclusive dates. Without them the last seven
// days, today included, are shown. A range covers at most 90 days.
func (h *Handler) parseFilters(r *http.Request) (TimelineFilters, map[string]string) {
	q := r.URL.Query()
	fields := map[string]string{}

	to := h.now().UTC().Truncate(day)
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			fields["to"] = "must be a YYYY-MM-DD date"
		}
		to = parsed
	}
	from := to.Add(-(defaultDays - 1) * day)
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			fields["from"] = "must be a YYYY-MM-DD date"
		}
		from = parsed
	}
	if len(fields) == 0 {
		switch {
		case from.After(to):
			fields["from"] = "must not be after to"
		case to.Sub(from) >= maxDays*day:
			fields["from"] = "range must not exceed 90 days"
		}
	}

	page, perPage := 1, defaultPageSize
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		parsed, err := strconv.Atoi(v)
		switch {
		case err != nil || parsed <= 0:
			fields["page"] = "must be a positive integer"
		case parsed > shared.MaxPage:
			fields["page"] = "must be at most " + strconv.Itoa(shared.MaxPage)
		}
		page = parsed
	}
	if v := strings.TrimSpace(q.Get("pageSize")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			fields["pageSize"] = "must be a positive integer"
		}
		perPage = parsed
	}
	if len(fields) > 0 {
		return TimelineFilters{}, fields
	}

	return TimelineFilters{
		From:     from,
		To:       to.Add(day),
		Actor:    strings.TrimSpace(q.Get("actor")),
		Entity:   strings.TrimSpace(q.Get("entity")),
		Action:   strings.TrimSpace(q.Get("action")),
		Page:     page,
		PageSize: perPage,
	}, nil
}

// storeError tags repository failures so clients see the persistence code.
func storeError(err error) error {
	if errors.Is(err, httpx.ErrValidation) {
		return err
	}
	return errors.Join(httpx.ErrPersistence, err)
}

func rateLimitKey(r *http.Request) (string, error) {
	if identity, ok := auth.IdentityFromContext(r.Context()); ok && identity.UserID != "" {
		return "user:" + identity.UserID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
