package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ngo/lumen/internal/roles"
)

type allowGuard struct{}

func (allowGuard) RequirePermission(roles.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

type uploaderFunc func(ctx context.Context, obj Object) (Stored, error)

func (f uploaderFunc) Upload(ctx context.Context, obj Object) (Stored, error) { return f(ctx, obj) }

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func multipartRequest(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func uploadsRouter(u Uploader, maxBytes int64) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/uploads", NewHandler(nil, u, allowGuard{}, maxBytes).MountRoutes)
	return r
}

func TestUploadSniffsContentType(t *testing.T) {
	var got Object
	u := uploaderFunc(func(_ context.Context, obj Object) (Stored, error) {
		got = obj
		return Stored{Key: "news/x.png", URL: "https://cdn/news/x.png", Size: int64(len(obj.Body))}, nil
	})

	rr := httptest.NewRecorder()
	uploadsRouter(u, 1<<20).ServeHTTP(rr, multipartRequest(t, map[string]string{"prefix": "news", "public": "true"}, "cover.txt", pngHeader))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "image/png", got.ContentType)
	assert.True(t, got.Public)
	assert.Equal(t, "news", got.Prefix)
	assert.Contains(t, rr.Body.String(), `"url":"https://cdn/news/x.png"`)
}

func TestUploadRejectsBadFiles(t *testing.T) {
	never := uploaderFunc(func(context.Context, Object) (Stored, error) {
		t.Fatal("uploader must not be called")
		return Stored{}, nil
	})

	cases := map[string]*http.Request{
		"missing file":   multipartRequest(t, map[string]string{"prefix": "news"}, "", nil),
		"executable":     multipartRequest(t, map[string]string{"prefix": "news"}, "a.png", []byte("MZ\x90\x00\x03\x00\x00\x00")),
		"too large":      multipartRequest(t, map[string]string{"prefix": "news"}, "a.png", append(append([]byte{}, pngHeader...), make([]byte, 64)...)),
		"not multipart":  httptest.NewRequest(http.MethodPost, "/api/uploads", bytes.NewBufferString("{}")),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			uploadsRouter(never, 64).ServeHTTP(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}
