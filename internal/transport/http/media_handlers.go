package httptransport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/httpx"
	"eventsite/internal/storage/media"
)

const (
	mediaCacheControl = "public, max-age=31536000, immutable"
	multipartMemory   = 1 << 20
	svgPolicy         = "sandbox; default-src 'none'; style-src 'unsafe-inline'"
)

type MediaHandlers struct {
	service MediaServices
}
type MediaServices interface {
	Upload(ctx context.Context, userID uuid.UUID, originalName, contentType string, r io.Reader) (domains.Media, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int) (domains.Page[domains.Media], error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Open(ctx context.Context, filename string) (media.Object, error)
	MaxUploadBytes() int64
}

func NewMediaHandlers(service MediaServices) *MediaHandlers {
	return &MediaHandlers{
		service: service,
	}
}

func (h *MediaHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	// The multipart envelope adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxUploadBytes()+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Error(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		httpx.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	m, err := h.service.Upload(r.Context(), userID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, err, "UploadMedia")
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *MediaHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	page, err := h.service.List(r.Context(), userID, httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "limit", domains.DefaultPageLimit))
	if err != nil {
		writeError(w, err, "ListMedia")
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *MediaHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err, "DeleteMedia")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandlers) Serve(w http.ResponseWriter, r *http.Request) {
	obj, err := h.service.Open(r.Context(), httpx.PathString(r, "filename"))
	if err != nil {
		writeError(w, err, "ServeMedia")
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", mediaCacheControl)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if obj.ContentType == "image/svg+xml" {
		// Scripts inside an opened SVG would run on the API origin.
		w.Header().Set("Content-Security-Policy", svgPolicy)
		w.Header().Set("Content-Disposition", "attachment")
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.Copy(w, obj.Body)
}
