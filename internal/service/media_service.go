package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/imaging"
	"eventsite/internal/metrics"
	"eventsite/internal/storage"
	"eventsite/internal/storage/media"
)

const (
	DefaultMaxUploadBytes = 10 << 20
	DefaultMaxImageWidth  = 1920
)

var allowedMedia = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
}

var rasterFormats = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// contentMatches checks the leading bytes of non-raster uploads against the
// declared type.
func contentMatches(ct string, data []byte) bool {
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	switch ct {
	case "application/pdf":
		return sniffed == "application/pdf"
	case "image/svg+xml":
		if sniffed != "text/xml" && sniffed != "text/plain" {
			return false
		}
		head := data
		if len(head) > 4096 {
			head = head[:4096]
		}
		return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
	}
	return false
}

type MediaProvider interface {
	SaveMedia(ctx context.Context, m domains.Media) (domains.Media, error)
	ListMedia(ctx context.Context, userID uuid.UUID, page, limit int) ([]domains.Media, int, error)
	GetMedia(ctx context.Context, userID, id uuid.UUID) (domains.Media, error)
	DeleteMedia(ctx context.Context, userID, id uuid.UUID) error
}

type MediaConfig struct {
	BaseURL        string
	MaxUploadBytes int64
	MaxImageWidth  int
}

type MediaService struct {
	provider MediaProvider
	store    media.Store
	metrics  *metrics.Metrics
	cfg      MediaConfig
}

func NewMediaService(provider MediaProvider, store media.Store, m *metrics.Metrics, cfg MediaConfig) *MediaService {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.MaxImageWidth <= 0 {
		cfg.MaxImageWidth = DefaultMaxImageWidth
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &MediaService{
		provider: provider,
		store:    store,
		metrics:  m,
		cfg:      cfg,
	}
}

func (h *MediaService) MaxUploadBytes() int64 {
	return h.cfg.MaxUploadBytes
}

// Upload stores the file under a fresh name. Wide jpeg and png images are
// scaled down first.
func (h *MediaService) Upload(ctx context.Context, userID uuid.UUID, originalName, contentType string, r io.Reader) (domains.Media, error) {
	data, err := io.ReadAll(io.LimitReader(r, h.cfg.MaxUploadBytes+1))
	if err != nil {
		return domains.Media{}, err
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		return domains.Media{}, ErrFileTooLarge
	}
	if len(data) == 0 {
		return domains.Media{}, invalid("file is empty")
	}

	ct := normalizeContentType(contentType, originalName, data)
	ext, ok := allowedMedia[ct]
	if !ok {
		return domains.Media{}, ErrUnsupportedMediaType
	}

	var width, height *int
	if format, ok := rasterFormats[ct]; ok {
		cfg, err := imaging.Inspect(data)
		if errors.Is(err, imaging.ErrTooManyPixels) {
			return domains.Media{}, invalid("image is too large: at most %d pixels allowed", imaging.MaxPixels)
		}
		if err != nil || cfg.Format != format {
			return domains.Media{}, invalid("file content is not a valid %s", ct)
		}
		width, height = &cfg.Width, &cfg.Height
	} else if !contentMatches(ct, data) {
		return domains.Media{}, invalid("file content is not a valid %s", ct)
	}

	if imaging.Resizable(ct) {
		res, err := imaging.Resize(data, ct, h.cfg.MaxImageWidth)
		if err != nil {
			return domains.Media{}, invalid("could not read image: %v", err)
		}
		data = res.Data
		width, height = &res.Width, &res.Height
		if res.Resized {
			slog.Info("image resized", "width", res.Width, "height", res.Height, "user_id", userID)
		}
	}

	id := uuid.New()
	filename := id.String() + ext
	size, err := h.store.Put(ctx, filename, ct, bytes.NewReader(data))
	if err != nil {
		slog.Error("Store media error", "err", err, "filename", filename)
		return domains.Media{}, err
	}

	saved, err := h.provider.SaveMedia(ctx, domains.Media{
		ID:           id,
		UserID:       userID,
		Filename:     filename,
		OriginalName: filepath.Base(originalName),
		ContentType:  ct,
		Size:         size,
		Width:        width,
		Height:       height,
		URL:          h.cfg.BaseURL + "/api/media/serve/" + filename,
	})
	if err != nil {
		slog.Error("Save media error", "err", err, "filename", filename)
		if derr := h.store.Delete(ctx, filename); derr != nil {
			slog.Warn("orphaned media blob", "err", derr, "filename", filename)
		}
		return domains.Media{}, err
	}
	h.metrics.MediaUploaded(size)
	return saved, nil
}

func (h *MediaService) List(ctx context.Context, userID uuid.UUID, page, limit int) (domains.Page[domains.Media], error) {
	page, limit = domains.NormalizePage(page, limit)
	items, total, err := h.provider.ListMedia(ctx, userID, page, limit)
	if err != nil {
		slog.Error("List media error", "err", err, "user_id", userID)
		return domains.Page[domains.Media]{}, err
	}
	return domains.NewPage(items, total, page, limit), nil
}

func (h *MediaService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m, err := h.provider.GetMedia(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrMediaNotFound
	}
	if err != nil {
		return err
	}
	if err := h.provider.DeleteMedia(ctx, userID, id); err != nil {
		slog.Error("Delete media row error", "err", err, "media_id", id)
		return err
	}
	if err := h.store.Delete(ctx, m.Filename); err != nil && !errors.Is(err, media.ErrNotFound) {
		slog.Warn("Delete media blob error", "err", err, "filename", m.Filename)
	}
	return nil
}

// Open streams a stored file; the caller closes the body.
func (h *MediaService) Open(ctx context.Context, filename string) (media.Object, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return media.Object{}, ErrMediaNotFound
	}
	obj, err := h.store.Get(ctx, filename)
	if errors.Is(err, media.ErrNotFound) {
		return media.Object{}, ErrMediaNotFound
	}
	return obj, err
}

// normalizeContentType trusts a specific declared type, otherwise the file
// extension, otherwise sniffing.
func normalizeContentType(declared, name string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		if mt == "image/jpg" {
			return "image/jpeg"
		}
		return mt
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}
