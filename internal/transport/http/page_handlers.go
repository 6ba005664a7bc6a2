package httptransport

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"eventsite/internal/httpx"
	"eventsite/internal/render"
	"eventsite/internal/service"
)

type pageRenderer func(ctx context.Context, slug string, device render.Device) (template.HTML, error)

// PublicPage renders /s/{slug}: microsites take precedence over legacy sites
// sharing the slug space.
func PublicPage(microsites, sites pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := httpx.PathString(r, "slug")
		device := render.ParseDevice(r.URL.Query().Get("device"))

		page, err := microsites(r.Context(), slug, device)
		if errors.Is(err, service.ErrSiteNotPublished) {
			page, err = sites(r.Context(), slug, device)
		}
		if err != nil {
			writeError(w, err, "RenderPublicPage")
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		writeHTML(w, page)
	}
}
