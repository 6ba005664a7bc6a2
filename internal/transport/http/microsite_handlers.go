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

type MicrositeHandlers struct {
	service MicrositeServices
}
type MicrositeServices interface {
	CreateMicrosite(ctx context.Context, userID uuid.UUID, in domains.MicrositeCreate) (domains.Microsite, error)
	ListMicrosites(ctx context.Context, userID uuid.UUID, f domains.MicrositeFilter) (domains.Page[domains.MicrositeSummary], error)
	GetMicrosite(ctx context.Context, userID, id uuid.UUID) (domains.MicrositeDetails, error)
	UpdateMicrosite(ctx context.Context, userID, id uuid.UUID, u domains.MicrositeUpdate) (domains.Microsite, error)
	UpdateMicrositeSection(ctx context.Context, userID, id uuid.UUID, sectionID string, p domains.SectionPatch) (domains.MicrositeSection, error)
	ToggleMicrositeSection(ctx context.Context, userID, id uuid.UUID, sectionID string) (domains.MicrositeSection, error)
	ReorderMicrositeSections(ctx context.Context, userID, id uuid.UUID, orderedIDs []string) ([]domains.MicrositeSection, error)
	PublishMicrosite(ctx context.Context, userID, id uuid.UUID) (domains.Microsite, error)
	UnpublishMicrosite(ctx context.Context, userID, id uuid.UUID) (domains.Microsite, error)
	ArchiveMicrosite(ctx context.Context, userID, id uuid.UUID) (domains.Microsite, error)
	DeleteMicrosite(ctx context.Context, userID, id uuid.UUID) error
	QRCode(ctx context.Context, userID, id uuid.UUID, size int) ([]byte, error)
	GetPublicMicrosite(ctx context.Context, slug string) (domains.PublicSite, error)
	RenderPublicMicrosite(ctx context.Context, slug string, device render.Device) (template.HTML, error)
	SubmitMicrositeRsvp(ctx context.Context, slug string, in domains.RsvpSubmit) (domains.RsvpResult, error)
	SubmitMicrositeWish(ctx context.Context, slug string, in domains.WishSubmit) (domains.Wish, error)
}

func NewMicrositeHandlers(service MicrositeServices) *MicrositeHandlers {
	return &MicrositeHandlers{
		service: service,
	}
}

// owned resolves the caller and the {id} path variable.
func owned(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := principal(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := httpx.PathUUID(w, r, name)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func (h *MicrositeHandlers) CreateMicrosite(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	in, err := httpx.ReadBody[domains.MicrositeCreate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	m, err := h.service.CreateMicrosite(r.Context(), userID, in)
	if err != nil {
		writeError(w, err, "CreateMicrosite")
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *MicrositeHandlers) ListMicrosites(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	page, err := h.service.ListMicrosites(r.Context(), userID, domains.MicrositeFilter{
		Status: domains.MicrositeStatus(r.URL.Query().Get("status")),
		Page:   httpx.QueryInt(r, "page", 1),
		Limit:  httpx.QueryInt(r, "limit", domains.DefaultPageLimit),
	})
	if err != nil {
		writeError(w, err, "ListMicrosites")
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *MicrositeHandlers) GetMicrosite(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	details, err := h.service.GetMicrosite(r.Context(), userID, id)
	if err != nil {
		writeError(w, err, "GetMicrosite")
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *MicrositeHandlers) UpdateMicrosite(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	u, err := httpx.ReadBody[domains.MicrositeUpdate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	m, err := h.service.UpdateMicrosite(r.Context(), userID, id, u)
	if err != nil {
		writeError(w, err, "UpdateMicrosite")
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *MicrositeHandlers) UpdateSection(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	p, err := httpx.ReadBody[domains.SectionPatch](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	sec, err := h.service.UpdateMicrositeSection(r.Context(), userID, id, httpx.PathString(r, "sectionId"), p)
	if err != nil {
		writeError(w, err, "UpdateMicrositeSection")
		return
	}
	httpx.JSON(w, http.StatusOK, sec)
}

func (h *MicrositeHandlers) ToggleSection(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	sec, err := h.service.ToggleMicrositeSection(r.Context(), userID, id, httpx.PathString(r, "sectionId"))
	if err != nil {
		writeError(w, err, "ToggleMicrositeSection")
		return
	}
	httpx.JSON(w, http.StatusOK, sec)
}

func (h *MicrositeHandlers) ReorderSections(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	req, err := httpx.ReadBody[domains.ReorderRequest](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	sections, err := h.service.ReorderMicrositeSections(r.Context(), userID, id, req.OrderedIDs)
	if err != nil {
		writeError(w, err, "ReorderMicrositeSections")
		return
	}
	httpx.JSON(w, http.StatusOK, sections)
}

func (h *MicrositeHandlers) Publish(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.PublishMicrosite, "PublishMicrosite")
}

func (h *MicrositeHandlers) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.UnpublishMicrosite, "UnpublishMicrosite")
}

func (h *MicrositeHandlers) Archive(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.ArchiveMicrosite, "ArchiveMicrosite")
}

func (h *MicrositeHandlers) setStatus(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID, uuid.UUID) (domains.Microsite, error), op string) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	m, err := fn(r.Context(), userID, id)
	if err != nil {
		writeError(w, err, op)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *MicrositeHandlers) DeleteMicrosite(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteMicrosite(r.Context(), userID, id); err != nil {
		writeError(w, err, "DeleteMicrosite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MicrositeHandlers) QRCode(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := owned(w, r, "id")
	if !ok {
		return
	}
	png, err := h.service.QRCode(r.Context(), userID, id, httpx.QueryInt(r, "size", 0))
	if err != nil {
		writeError(w, err, "QRCode")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *MicrositeHandlers) GetPublic(w http.ResponseWriter, r *http.Request) {
	site, err := h.service.GetPublicMicrosite(r.Context(), httpx.PathString(r, "slug"))
	if err != nil {
		writeError(w, err, "GetPublicMicrosite")
		return
	}
	httpx.JSON(w, http.StatusOK, site)
}

func (h *MicrositeHandlers) SubmitRsvp(w http.ResponseWriter, r *http.Request) {
	in, err := httpx.ReadBody[domains.RsvpSubmit](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	res, err := h.service.SubmitMicrositeRsvp(r.Context(), httpx.PathString(r, "slug"), in)
	if err != nil {
		writeError(w, err, "SubmitMicrositeRsvp")
		return
	}
	code := http.StatusCreated
	if res.Updated {
		code = http.StatusOK
	}
	httpx.JSON(w, code, res)
}

func (h *MicrositeHandlers) SubmitWish(w http.ResponseWriter, r *http.Request) {
	in, err := httpx.ReadBody[domains.WishSubmit](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	wish, err := h.service.SubmitMicrositeWish(r.Context(), httpx.PathString(r, "slug"), in)
	if err != nil {
		writeError(w, err, "SubmitMicrositeWish")
		return
	}
	httpx.JSON(w, http.StatusCreated, wish)
}
