package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/render"
	"eventsite/internal/slug"
	"eventsite/internal/storage"
)

type TemplateService struct {
	provider TemplateProvider
	renderer *render.Renderer
}

type TemplateProvider interface {
	SaveTemplate(ctx context.Context, t domains.TemplateToSave) (domains.TemplateDetails, error)
	ListTemplates(ctx context.Context, f domains.TemplateFilter) ([]domains.Template, int, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (domains.Template, error)
	GetTemplateDetails(ctx context.Context, id uuid.UUID) (domains.TemplateDetails, error)
	ListVersions(ctx context.Context, templateID uuid.UUID) ([]domains.TemplateVersion, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, u domains.TemplateUpdate) (domains.Template, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (domains.Template, error)
	VersionInUse(ctx context.Context, versionID uuid.UUID) (bool, error)
	TemplateInUse(ctx context.Context, templateID uuid.UUID) (bool, error)
	UpdateVersion(ctx context.Context, versionID uuid.UUID, u domains.VersionUpdate) (domains.TemplateVersion, error)
	AddSection(ctx context.Context, versionID uuid.UUID, sec domains.TemplateSection) (domains.TemplateSection, error)
	UpdateSection(ctx context.Context, versionID uuid.UUID, sectionID string, u domains.TemplateSectionUpdate) (domains.TemplateSection, error)
	DeleteSection(ctx context.Context, versionID uuid.UUID, sectionID string) error
	ReorderSections(ctx context.Context, versionID uuid.UUID, orderedIDs []string) error
	CreateNewVersion(ctx context.Context, templateID uuid.UUID, changelog string) (domains.TemplateVersion, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
}

func NewTemplateService(provider TemplateProvider, renderer *render.Renderer) *TemplateService {
	return &TemplateService{
		provider: provider,
		renderer: renderer,
	}
}

func (h *TemplateService) CreateTemplate(ctx context.Context, userID uuid.UUID, in domains.TemplateCreate) (domains.TemplateDetails, error) {
	toSave, err := buildTemplate(userID, in)
	if err != nil {
		return domains.TemplateDetails{}, err
	}
	details, err := h.provider.SaveTemplate(ctx, toSave)
	if errors.Is(err, storage.ErrConflict) {
		return domains.TemplateDetails{}, ErrTemplateSlugTaken
	}
	if err != nil {
		slog.Error("Save template error", "err", err, "slug", toSave.Slug)
		return domains.TemplateDetails{}, err
	}
	return details, nil
}

// buildTemplate validates the payload and normalizes section order to the
// given sequence.
func buildTemplate(userID uuid.UUID, in domains.TemplateCreate) (domains.TemplateToSave, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return domains.TemplateToSave{}, invalid("name is required")
	}
	if in.Category == "" {
		return domains.TemplateToSave{}, invalid("category is required")
	}
	version, err := validateVersion(domains.VersionToSave{
		ColorSchemes:       in.ColorSchemes,
		FontPairs:          in.FontPairs,
		DefaultColorScheme: in.DefaultColorScheme,
		DefaultFontPair:    in.DefaultFontPair,
		Changelog:          in.Changelog,
	})
	if err != nil {
		return domains.TemplateToSave{}, err
	}

	seen := make(map[string]struct{}, len(in.Sections))
	sections := make([]domains.TemplateSection, 0, len(in.Sections))
	for i, sc := range in.Sections {
		sec, err := buildSection(sc)
		if err != nil {
			return domains.TemplateToSave{}, err
		}
		if _, dup := seen[sec.SectionID]; dup {
			return domains.TemplateToSave{}, invalid("duplicate section id %q", sec.SectionID)
		}
		seen[sec.SectionID] = struct{}{}
		sec.Order = i
		sections = append(sections, sec)
	}

	s := strings.TrimSpace(in.Slug)
	if s == "" {
		s = slug.Slugify(in.Name)
	}
	return domains.TemplateToSave{
		Slug:         s,
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		ThumbnailURL: in.ThumbnailURL,
		Status:       domains.TemplateStatusDraft,
		CreatedBy:    userID,
		Version:      version,
		Sections:     sections,
	}, nil
}

func validateVersion(v domains.VersionToSave) (domains.VersionToSave, error) {
	if len(v.ColorSchemes) == 0 {
		return v, invalid("at least one color scheme is required")
	}
	if len(v.FontPairs) == 0 {
		return v, invalid("at least one font pair is required")
	}
	ids := map[string]struct{}{}
	for _, cs := range v.ColorSchemes {
		if cs.ID == "" {
			return v, invalid("color scheme id is required")
		}
		if _, dup := ids[cs.ID]; dup {
			return v, invalid("duplicate color scheme id %q", cs.ID)
		}
		ids[cs.ID] = struct{}{}
	}
	ids = map[string]struct{}{}
	for _, fp := range v.FontPairs {
		if fp.ID == "" {
			return v, invalid("font pair id is required")
		}
		if _, dup := ids[fp.ID]; dup {
			return v, invalid("duplicate font pair id %q", fp.ID)
		}
		ids[fp.ID] = struct{}{}
	}

	theme := domains.TemplateVersion{ColorSchemes: v.ColorSchemes, FontPairs: v.FontPairs}
	if v.DefaultColorScheme == "" {
		v.DefaultColorScheme = v.ColorSchemes[0].ID
	} else if _, ok := theme.ColorScheme(v.DefaultColorScheme); !ok {
		return v, ErrInvalidColorScheme
	}
	if v.DefaultFontPair == "" {
		v.DefaultFontPair = v.FontPairs[0].ID
	} else if _, ok := theme.FontPair(v.DefaultFontPair); !ok {
		return v, ErrInvalidFontPair
	}
	return v, nil
}

func buildSection(sc domains.TemplateSectionCreate) (domains.TemplateSection, error) {
	sc.SectionID = strings.TrimSpace(sc.SectionID)
	if sc.SectionID == "" {
		return domains.TemplateSection{}, invalid("section id is required")
	}
	if !sc.Type.Valid() {
		return domains.TemplateSection{}, invalid("section %q: unknown type %q", sc.SectionID, sc.Type)
	}
	if err := validateFields(sc.SectionID, sc.Fields); err != nil {
		return domains.TemplateSection{}, err
	}
	name := sc.Name
	if name == "" {
		name = sc.SectionID
	}
	canDisable := true
	if sc.CanDisable != nil {
		canDisable = *sc.CanDisable
	}
	return domains.TemplateSection{
		SectionID:    sc.SectionID,
		Type:         sc.Type,
		Name:         name,
		Description:  sc.Description,
		Fields:       sc.Fields,
		SampleValues: sc.SampleValues,
		IsRequired:   sc.IsRequired,
		CanDisable:   canDisable,
	}, nil
}

func validateFields(sectionID string, fields []domains.FieldDefinition) error {
	keys := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Key == "" {
			return invalid("section %q: field key is required", sectionID)
		}
		if _, dup := keys[f.Key]; dup {
			return invalid("section %q: duplicate field key %q", sectionID, f.Key)
		}
		keys[f.Key] = struct{}{}
		if !f.Type.Valid() {
			return invalid("section %q: field %q has unknown type %q", sectionID, f.Key, f.Type)
		}
		if f.Type == domains.FieldRepeater {
			if err := validateFields(sectionID+"."+f.Key, f.Fields); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *TemplateService) ListTemplates(ctx context.Context, f domains.TemplateFilter) (domains.Page[domains.Template], error) {
	f.Page, f.Limit = domains.NormalizePage(f.Page, f.Limit)
	items, total, err := h.provider.ListTemplates(ctx, f)
	if err != nil {
		slog.Error("List templates error", "err", err)
		return domains.Page[domains.Template]{}, err
	}
	return domains.NewPage(items, total, f.Page, f.Limit), nil
}

// ListPublicTemplates is the picker view: published and active only.
func (h *TemplateService) ListPublicTemplates(ctx context.Context, f domains.TemplateFilter) (domains.Page[domains.Template], error) {
	f.Status = domains.TemplateStatusPublished
	f.ActiveOnly = true
	return h.ListTemplates(ctx, f)
}

func (h *TemplateService) GetTemplate(ctx context.Context, id uuid.UUID) (domains.TemplateDetails, error) {
	details, err := h.provider.GetTemplateDetails(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.TemplateDetails{}, ErrTemplateNotFound
	}
	if err != nil {
		slog.Error("Get template error", "err", err, "template_id", id)
		return domains.TemplateDetails{}, err
	}
	return details, nil
}

func (h *TemplateService) ListVersions(ctx context.Context, id uuid.UUID) ([]domains.TemplateVersion, error) {
	if _, err := h.template(ctx, id); err != nil {
		return nil, err
	}
	versions, err := h.provider.ListVersions(ctx, id)
	if err != nil {
		slog.Error("List versions error", "err", err, "template_id", id)
		return nil, err
	}
	return versions, nil
}

func (h *TemplateService) UpdateTemplate(ctx context.Context, id uuid.UUID, u domains.TemplateUpdate) (domains.Template, error) {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return domains.Template{}, invalid("name cannot be empty")
	}
	if u.Status != nil && !u.Status.Valid() {
		return domains.Template{}, invalid("invalid status %q", *u.Status)
	}
	if !u.HasChanges() {
		return h.template(ctx, id)
	}
	t, err := h.provider.UpdateTemplate(ctx, id, u)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Template{}, ErrTemplateNotFound
	}
	if err != nil {
		slog.Error("Update template error", "err", err, "template_id", id)
		return domains.Template{}, err
	}
	return t, nil
}

// UpdateVersion edits the current version in place. Once a microsite or site
// is bound to it the caller has to create a new version instead.
func (h *TemplateService) UpdateVersion(ctx context.Context, id uuid.UUID, u domains.VersionUpdate) (domains.TemplateVersion, error) {
	details, err := h.editableVersion(ctx, id)
	if err != nil {
		return domains.TemplateVersion{}, err
	}

	merged := domains.VersionToSave{
		ColorSchemes:       details.Version.ColorSchemes,
		FontPairs:          details.Version.FontPairs,
		DefaultColorScheme: details.Version.DefaultColorScheme,
		DefaultFontPair:    details.Version.DefaultFontPair,
	}
	if u.ColorSchemes != nil {
		merged.ColorSchemes = u.ColorSchemes
	}
	if u.FontPairs != nil {
		merged.FontPairs = u.FontPairs
	}
	if u.DefaultColorScheme != nil {
		merged.DefaultColorScheme = *u.DefaultColorScheme
	}
	if u.DefaultFontPair != nil {
		merged.DefaultFontPair = *u.DefaultFontPair
	}
	merged, err = validateVersion(merged)
	if err != nil {
		return domains.TemplateVersion{}, err
	}
	u.DefaultColorScheme = &merged.DefaultColorScheme
	u.DefaultFontPair = &merged.DefaultFontPair

	version, err := h.provider.UpdateVersion(ctx, details.Version.ID, u)
	if err != nil {
		slog.Error("Update version error", "err", err, "template_id", id)
		return domains.TemplateVersion{}, err
	}
	return version, nil
}

func (h *TemplateService) AddSection(ctx context.Context, id uuid.UUID, sc domains.TemplateSectionCreate) (domains.TemplateSection, error) {
	details, err := h.editableVersion(ctx, id)
	if err != nil {
		return domains.TemplateSection{}, err
	}
	sec, err := buildSection(sc)
	if err != nil {
		return domains.TemplateSection{}, err
	}
	created, err := h.provider.AddSection(ctx, details.Version.ID, sec)
	if errors.Is(err, storage.ErrConflict) {
		return domains.TemplateSection{}, ErrSectionExists
	}
	if err != nil {
		slog.Error("Add section error", "err", err, "template_id", id)
		return domains.TemplateSection{}, err
	}
	return created, nil
}

func (h *TemplateService) UpdateSection(ctx context.Context, id uuid.UUID, sectionID string, u domains.TemplateSectionUpdate) (domains.TemplateSection, error) {
	if u.Type != nil && !u.Type.Valid() {
		return domains.TemplateSection{}, invalid("unknown section type %q", *u.Type)
	}
	if u.Fields != nil {
		if err := validateFields(sectionID, u.Fields); err != nil {
			return domains.TemplateSection{}, err
		}
	}
	details, err := h.editableVersion(ctx, id)
	if err != nil {
		return domains.TemplateSection{}, err
	}
	sec, err := h.provider.UpdateSection(ctx, details.Version.ID, sectionID, u)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.TemplateSection{}, ErrSectionNotFound
	}
	if err != nil {
		slog.Error("Update section error", "err", err, "template_id", id, "section_id", sectionID)
		return domains.TemplateSection{}, err
	}
	return sec, nil
}

func (h *TemplateService) DeleteSection(ctx context.Context, id uuid.UUID, sectionID string) error {
	details, err := h.editableVersion(ctx, id)
	if err != nil {
		return err
	}
	err = h.provider.DeleteSection(ctx, details.Version.ID, sectionID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrSectionNotFound
	}
	if err != nil {
		slog.Error("Delete section error", "err", err, "template_id", id, "section_id", sectionID)
	}
	return err
}

// ReorderSections ranks the listed sections by position. Sections left out
// keep their rank.
func (h *TemplateService) ReorderSections(ctx context.Context, id uuid.UUID, orderedIDs []string) ([]domains.TemplateSection, error) {
	if len(orderedIDs) == 0 {
		return nil, invalid("orderedIds is required")
	}
	details, err := h.editableVersion(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := h.provider.ReorderSections(ctx, details.Version.ID, orderedIDs); err != nil {
		slog.Error("Reorder sections error", "err", err, "template_id", id)
		return nil, err
	}
	updated, err := h.provider.GetTemplateDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated.Sections, nil
}

func (h *TemplateService) CreateNewVersion(ctx context.Context, id uuid.UUID, changelog string) (domains.TemplateVersion, error) {
	version, err := h.provider.CreateNewVersion(ctx, id, changelog)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.TemplateVersion{}, ErrTemplateNotFound
	}
	if err != nil {
		slog.Error("Create version error", "err", err, "template_id", id)
		return domains.TemplateVersion{}, err
	}
	slog.Info("template version created", "template_id", id, "version", version.Version)
	return version, nil
}

func (h *TemplateService) PublishTemplate(ctx context.Context, id uuid.UUID) (domains.Template, error) {
	return h.setActive(ctx, id, true)
}

func (h *TemplateService) UnpublishTemplate(ctx context.Context, id uuid.UUID) (domains.Template, error) {
	return h.setActive(ctx, id, false)
}

func (h *TemplateService) setActive(ctx context.Context, id uuid.UUID, active bool) (domains.Template, error) {
	t, err := h.provider.SetActive(ctx, id, active)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Template{}, ErrTemplateNotFound
	}
	if err != nil {
		slog.Error("Set template active error", "err", err, "template_id", id, "active", active)
		return domains.Template{}, err
	}
	return t, nil
}

// DuplicateTemplate copies the current version into a new draft template.
func (h *TemplateService) DuplicateTemplate(ctx context.Context, userID, id uuid.UUID) (domains.TemplateDetails, error) {
	src, err := h.GetTemplate(ctx, id)
	if err != nil {
		return domains.TemplateDetails{}, err
	}
	in := ExportTemplate(src)
	in.Name = src.Template.Name + " (Copy)"
	in.Slug = slug.WithSuffix(in.Name)
	in.Changelog = fmt.Sprintf("Copied from %s v%d", src.Template.Name, src.Version.Version)
	return h.CreateTemplate(ctx, userID, in)
}

func (h *TemplateService) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	used, err := h.provider.TemplateInUse(ctx, id)
	if err != nil {
		slog.Error("Template usage check error", "err", err, "template_id", id)
		return err
	}
	if used {
		return ErrTemplateInUse
	}
	err = h.provider.DeleteTemplate(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrTemplateNotFound
	case errors.Is(err, storage.ErrInUse):
		// A microsite was created after the usage check.
		return ErrTemplateInUse
	}
	if err != nil {
		slog.Error("Delete template error", "err", err, "template_id", id)
	}
	return err
}

// PreviewTemplate renders every section of the current version with its
// sample values.
func (h *TemplateService) PreviewTemplate(ctx context.Context, id uuid.UUID, colorSchemeID, fontPairID string, device render.Device) (template.HTML, error) {
	details, err := h.GetTemplate(ctx, id)
	if err != nil {
		return "", err
	}
	cs, fp := details.Version.ResolveTheme(colorSchemeID, fontPairID)
	sections := make([]render.PageSection, 0, len(details.Sections))
	for _, sec := range details.Sections {
		sections = append(sections, render.PageSection{
			ID:      sec.SectionID,
			Type:    sec.Type,
			Name:    sec.Name,
			Values:  sec.SampleValues,
			Fields:  sec.Fields,
			Enabled: true,
			Order:   sec.Order,
		})
	}
	settings := domains.DefaultSettings()
	return h.renderer.Page(ctx, render.PageInput{
		Title:    details.Template.Name,
		Theme:    domains.Theme{ColorScheme: cs, FontPair: fp},
		Device:   device,
		Sections: sections,
		Settings: &settings,
		Data:     pageData(details.Template.Name, details.Template.Slug, &settings, sections),
	})
}

// ExportTemplate turns the current version back into a create payload.
func ExportTemplate(d domains.TemplateDetails) domains.TemplateCreate {
	sections := make([]domains.TemplateSectionCreate, 0, len(d.Sections))
	for _, sec := range d.Sections {
		canDisable := sec.CanDisable
		sections = append(sections, domains.TemplateSectionCreate{
			SectionID:    sec.SectionID,
			Type:         sec.Type,
			Name:         sec.Name,
			Description:  sec.Description,
			Fields:       sec.Fields,
			SampleValues: sec.SampleValues,
			IsRequired:   sec.IsRequired,
			CanDisable:   &canDisable,
		})
	}
	return domains.TemplateCreate{
		Slug:               d.Template.Slug,
		Name:               d.Template.Name,
		Description:        d.Template.Description,
		Category:           d.Template.Category,
		ThumbnailURL:       d.Template.ThumbnailURL,
		ColorSchemes:       d.Version.ColorSchemes,
		FontPairs:          d.Version.FontPairs,
		DefaultColorScheme: d.Version.DefaultColorScheme,
		DefaultFontPair:    d.Version.DefaultFontPair,
		Changelog:          d.Version.Changelog,
		Sections:           sections,
	}
}

func (h *TemplateService) template(ctx context.Context, id uuid.UUID) (domains.Template, error) {
	t, err := h.provider.GetTemplate(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Template{}, ErrTemplateNotFound
	}
	return t, err
}

func (h *TemplateService) editableVersion(ctx context.Context, id uuid.UUID) (domains.TemplateDetails, error) {
	details, err := h.GetTemplate(ctx, id)
	if err != nil {
		return domains.TemplateDetails{}, err
	}
	used, err := h.provider.VersionInUse(ctx, details.Version.ID)
	if err != nil {
		slog.Error("Version usage check error", "err", err, "version_id", details.Version.ID)
		return domains.TemplateDetails{}, err
	}
	if used {
		return domains.TemplateDetails{}, ErrVersionInUse
	}
	return details, nil
}
