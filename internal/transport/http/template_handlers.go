package httptransport

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/httpx"
	"eventsite/internal/render"
)

type TemplateHandlers struct {
	service TemplateServices
}
type TemplateServices interface {
	CreateTemplate(ctx context.Context, userID uuid.UUID, in domains.TemplateCreate) (domains.TemplateDetails, error)
	ListTemplates(ctx context.Context, f domains.TemplateFilter) (domains.Page[domains.Template], error)
	ListPublicTemplates(ctx context.Context, f domains.TemplateFilter) (domains.Page[domains.Template], error)
	GetTemplate(ctx context.Context, id uuid.UUID) (domains.TemplateDetails, error)
	ListVersions(ctx context.Context, id uuid.UUID) ([]domains.TemplateVersion, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, u domains.TemplateUpdate) (domains.Template, error)
	UpdateVersion(ctx context.Context, id uuid.UUID, u domains.VersionUpdate) (domains.TemplateVersion, error)
	AddSection(ctx context.Context, id uuid.UUID, sc domains.TemplateSectionCreate) (domains.TemplateSection, error)
	UpdateSection(ctx context.Context, id uuid.UUID, sectionID string, u domains.TemplateSectionUpdate) (domains.TemplateSection, error)
	DeleteSection(ctx context.Context, id uuid.UUID, sectionID string) error
	ReorderSections(ctx context.Context, id uuid.UUID, orderedIDs []string) ([]domains.TemplateSection, error)
	CreateNewVersion(ctx context.Context, id uuid.UUID, changelog string) (domains.TemplateVersion, error)
	PublishTemplate(ctx context.Context, id uuid.UUID) (domains.Template, error)
	UnpublishTemplate(ctx context.Context, id uuid.UUID) (domains.Template, error)
	DuplicateTemplate(ctx context.Context, userID, id uuid.UUID) (domains.TemplateDetails, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
	PreviewTemplate(ctx context.Context, id uuid.UUID, colorSchemeID, fontPairID string, device render.Device) (template.HTML, error)
}

func NewTemplateHandlers(service TemplateServices) *TemplateHandlers {
	return &TemplateHandlers{
		service: service,
	}
}

func templateFilter(r *http.Request) domains.TemplateFilter {
	q := r.URL.Query()
	return domains.TemplateFilter{
		Status:     domains.TemplateStatus(q.Get("status")),
		Category:   q.Get("category"),
		Search:     q.Get("search"),
		ActiveOnly: httpx.QueryBool(r, "active"),
		Page:       httpx.QueryInt(r, "page", 1),
		Limit:      httpx.QueryInt(r, "limit", domains.DefaultPageLimit),
	}
}

func (h *TemplateHandlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	templateData, err := httpx.ReadBody[domains.TemplateCreate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	details, err := h.service.CreateTemplate(r.Context(), userID, templateData)
	if err != nil {
		writeError(w, err, "CreateTemplate")
		return
	}
	httpx.JSON(w, http.StatusCreated, details)
}

func (h *TemplateHandlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListTemplates(r.Context(), templateFilter(r))
	if err != nil {
		writeError(w, err, "ListTemplates")
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *TemplateHandlers) ListPublicTemplates(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListPublicTemplates(r.Context(), templateFilter(r))
	if err != nil {
		writeError(w, err, "ListPublicTemplates")
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *TemplateHandlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	details, err := h.service.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, err, "GetTemplate")
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *TemplateHandlers) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	versions, err := h.service.ListVersions(r.Context(), id)
	if err != nil {
		writeError(w, err, "ListVersions")
		return
	}
	httpx.JSON(w, http.StatusOK, versions)
}

func (h *TemplateHandlers) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	u, err := httpx.ReadBody[domains.TemplateUpdate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	t, err := h.service.UpdateTemplate(r.Context(), id, u)
	if err != nil {
		writeError(w, err, "UpdateTemplate")
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *TemplateHandlers) UpdateVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	u, err := httpx.ReadBody[domains.VersionUpdate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	v, err := h.service.UpdateVersion(r.Context(), id, u)
	if err != nil {
		writeError(w, err, "UpdateVersion")
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *TemplateHandlers) AddSection(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	sc, err := httpx.ReadBody[domains.TemplateSectionCreate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	sec, err := h.service.AddSection(r.Context(), id, sc)
	if err != nil {
		writeError(w, err, "AddSection")
		return
	}
	httpx.JSON(w, http.StatusCreated, sec)
}

func (h *TemplateHandlers) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	u, err := httpx.ReadBody[domains.TemplateSectionUpdate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	sec, err := h.service.UpdateSection(r.Context(), id, httpx.PathString(r, "sectionId"), u)
	if err != nil {
		writeError(w, err, "UpdateSection")
		return
	}
	httpx.JSON(w, http.StatusOK, sec)
}

func (h *TemplateHandlers) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSection(r.Context(), id, httpx.PathString(r, "sectionId")); err != nil {
		writeError(w, err, "DeleteSection")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandlers) ReorderSections(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	req, err := httpx.ReadBody[domains.ReorderRequest](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	sections, err := h.service.ReorderSections(r.Context(), id, req.OrderedIDs)
	if err != nil {
		writeError(w, err, "ReorderSections")
		return
	}
	httpx.JSON(w, http.StatusOK, sections)
}

func (h *TemplateHandlers) CreateNewVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	req, err := httpx.ReadBody[NewVersionRequest](*r)
	if err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		writeBodyError(w, err)
		return
	}
	v, err := h.service.CreateNewVersion(r.Context(), id, req.Changelog)
	if err != nil {
		writeError(w, err, "CreateNewVersion")
		return
	}
	httpx.JSON(w, http.StatusCreated, v)
}

func (h *TemplateHandlers) PublishTemplate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.service.PublishTemplate, "PublishTemplate")
}

func (h *TemplateHandlers) UnpublishTemplate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.service.UnpublishTemplate, "UnpublishTemplate")
}

func (h *TemplateHandlers) setActive(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) (domains.Template, error), op string) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	t, err := fn(r.Context(), id)
	if err != nil {
		writeError(w, err, op)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *TemplateHandlers) DuplicateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	details, err := h.service.DuplicateTemplate(r.Context(), userID, id)
	if err != nil {
		writeError(w, err, "DuplicateTemplate")
		return
	}
	httpx.JSON(w, http.StatusCreated, details)
}

func (h *TemplateHandlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteTemplate(r.Context(), id); err != nil {
		writeError(w, err, "DeleteTemplate")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandlers) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(w, r, "id")
	if !ok {
		return
	}
	q := r.URL.Query()
	page, err := h.service.PreviewTemplate(r.Context(), id, q.Get("colorScheme"), q.Get("fontPair"), render.ParseDevice(q.Get("device")))
	if err != nil {
		writeError(w, err, "PreviewTemplate")
		return
	}
	writeHTML(w, page)
}

func writeHTML(w http.ResponseWriter, page template.HTML) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}
