package httptransport

import (
	"context"
	"html/template"
	"net/http"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/httpx"
	"eventsite/internal/render"
)

type SiteHandlers struct {
	service SiteServices
}
type SiteServices interface {
	CreateSite(ctx context.Context, userID uuid.UUID, in domains.SiteCreate) (domains.Site, error)
	ListSites(ctx context.Context, userID uuid.UUID, page, limit int) (domains.Page[domains.Site], error)
	GetSite(ctx context.Context, userID, id uuid.UUID) (domains.SiteDetails, error)
	UpdateSite(ctx context.Context, userID, id uuid.UUID, u domains.SiteUpdate) (domains.Site, error)
	PublishSite(ctx context.Context, userID, id uuid.UUID) (domains.Site, error)
	UnpublishSite(ctx context.Context, userID, id uuid.UUID) (domains.Site, error)
	DeleteSite(ctx context.Context, userID, id uuid.UUID) error
	GetPublicSite(ctx context.Context, slug string) (domains.PublicSite, error)
	RenderPublicSite(ctx context.Context, slug string, device render.Device) (template.HTML, error)
	SubmitRsvp(ctx context.Context, slug string, in domains.RsvpSubmit) (domains.Guest, error)
	UpdateRsvp(ctx context.Context, slug string, in domains.RsvpSubmit) (domains.Guest, error)
	SubmitWish(ctx context.Context, slug string, in domains.WishSubmit) (domains.Wish, error)
}

func NewSiteHandlers(service SiteServices) *SiteHandlers {
	return &SiteHandlers{
		service: service,
	}
}

func (h *SiteHandlers) CreateSite(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	in, err := httpx.ReadBody[domains.SiteCreate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	site, err := h.service.CreateSite(r.Context(), userID, in)
	if err != nil {
		writeError(w, err, "CreateSite")
		return
	}
	httpx.JSON(w, http.StatusCreated, site)
}

func (h *SiteHandlers) ListSites(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	page, err := h.service.ListSites(r.Context(), userID, httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "limit", domains.DefaultPageLimit))
	if err != nil {
		writeError(w, err, "ListSites")
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *SiteHandlers) GetSite(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	details, err := h.service.GetSite(r.Context(), userID, id)
	if err != nil {
		writeError(w, err, "GetSite")
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *SiteHandlers) UpdateSite(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	u, err := httpx.ReadBody[domains.SiteUpdate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	site, err := h.service.UpdateSite(r.Context(), userID, id, u)
	if err != nil {
		writeError(w, err, "UpdateSite")
		return
	}
	httpx.JSON(w, http.StatusOK, site)
}

func (h *SiteHandlers) Publish(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.PublishSite, "PublishSite")
}

func (h *SiteHandlers) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.UnpublishSite, "UnpublishSite")
}

func (h *SiteHandlers) setStatus(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, uuid.UUID) (domains.Site, error), op string) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	site, err := fn(r.Context(), userID, id)
	if err != nil {
		writeError(w, err, op)
		return
	}
	httpx.JSON(w, http.StatusOK, site)
}

func (h *SiteHandlers) DeleteSite(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSite(r.Context(), userID, id); err != nil {
		writeError(w, err, "DeleteSite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SiteHandlers) GetPublic(w http.ResponseWriter, r *http.Request) {
	site, err := h.service.GetPublicSite(r.Context(), httpx.PathString(r, "slug"))
	if err != nil {
		writeError(w, err, "GetPublicSite")
		return
	}
	httpx.JSON(w, http.StatusOK, site)
}

func (h *SiteHandlers) SubmitRsvp(w http.ResponseWriter, r *http.Request) {
	in, err := httpx.ReadBody[domains.RsvpSubmit](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	guest, err := h.service.SubmitRsvp(r.Context(), httpx.PathString(r, "slug"), in)
	if err != nil {
		writeError(w, err, "SubmitRsvp")
		return
	}
	httpx.JSON(w, http.StatusCreated, guest)
}

func (h *SiteHandlers) UpdateRsvp(w http.ResponseWriter, r *http.Request) {
	in, err := httpx.ReadBody[domains.RsvpSubmit](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	guest, err := h.service.UpdateRsvp(r.Context(), httpx.PathString(r, "slug"), in)
	if err != nil {
		writeError(w, err, "UpdateRsvp")
		return
	}
	httpx.JSON(w, http.StatusOK, guest)
}

func (h *SiteHandlers) SubmitWish(w http.ResponseWriter, r *http.Request) {
	in, err := httpx.ReadBody[domains.WishSubmit](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	wish, err := h.service.SubmitWish(r.Context(), httpx.PathString(r, "slug"), in)
	if err != nil {
		writeError(w, err, "SubmitWish")
		return
	}
	httpx.JSON(w, http.StatusCreated, wish)
}
