package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/lumen-ngo/lumen/internal/auth"
	"github.com/lumen-ngo/lumen/internal/platform/httpx"
	"github.com/lumen-ngo/lumen/internal/roles"
)

// allowedTypes are the sniffed content types accepted for upload.
var allowedTypes = []string{
	"image/jpeg", "image/png", "image/webp", "image/gif",
	"application/pdf",
}

// Uploader stores objects.
type Uploader interface {
	Upload(ctx context.Context, obj Object) (Stored, error)
}

// Guard is the subset of the authorization guard used by upload routes.
type Guard interface {
	RequirePermission(p roles.Permission) func(http.Handler) http.Handler
}

// Handler accepts multipart uploads.
type Handler struct {
	logger   *slog.Logger
	uploader Uploader
	guard    Guard
	maxBytes int64
}

// NewHandler constructs a Handler. maxBytes bounds a single file.
func NewHandler(logger *slog.Logger, uploader Uploader, guard Guard, maxBytes int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Handler{logger: logger, uploader: uploader, guard: guard, maxBytes: maxBytes}
}

// MountRoutes registers POST / under the uploads prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(
		h.guard.RequirePermission(roles.PermFilesUpload),
		httprate.LimitByIP(30, time.Minute),
	).Post("/", h.upload)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidation, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.FieldErrors(w, map[string]string{"file": "failed required"})
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CodeValidation, "could not read file")
		return
	}
	if int64(len(body)) > h.maxBytes {
		httpx.FieldErrors(w, map[string]string{"file": "failed max=" + strconv.FormatInt(h.maxBytes, 10)})
		return
	}
	mtype := mimetype.Detect(body)
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		httpx.FieldErrors(w, map[string]string{"file": "unsupported type " + mtype.String()})
		return
	}

	public, _ := strconv.ParseBool(r.FormValue("public"))
	stored, err := h.uploader.Upload(r.Context(), Object{
		Body:        body,
		Filename:    header.Filename,
		ContentType: mtype.String(),
		Prefix:      r.FormValue("prefix"),
		Public:      public,
	})
	if err != nil {
		if !errors.Is(err, httpx.ErrValidation) {
			h.logger.Error("upload failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	attrs := []any{slog.String("key", stored.Key), slog.Int64("size", stored.Size)}
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		attrs = append(attrs, slog.String("user_id", identity.UserID))
	}
	h.logger.Info("file uploaded", attrs...)
	httpx.JSON(w, http.StatusCreated, stored)
}
