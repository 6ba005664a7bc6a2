package service

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"eventsite/internal/domains"
	"eventsite/internal/metrics"
	"eventsite/internal/notify"
	"eventsite/internal/render"
	"eventsite/internal/slug"
	"eventsite/internal/storage"
)

const (
	slugAttempts   = 3
	defaultQRSize  = 256
	minQRSize      = 64
	maxQRSize      = 1024
	rsvpPathSite   = "site"
	rsvpPathMicro  = "microsite"
	rsvpResultNew  = "created"
	rsvpResultUpd  = "updated"
	rsvpResultDupe = "duplicate"
)

type MicrositeProvider interface {
	CreateMicrosite(ctx context.Context, m domains.MicrositeToSave) (domains.Microsite, error)
	ListMicrosites(ctx context.Context, userID uuid.UUID, f domains.MicrositeFilter) ([]domains.MicrositeSummary, int, error)
	GetMicrosite(ctx context.Context, userID, id uuid.UUID) (domains.Microsite, error)
	GetPublishedMicrosite(ctx context.Context, slug string, countView bool) (domains.Microsite, error)
	ListSections(ctx context.Context, micrositeID uuid.UUID) ([]domains.MicrositeSection, error)
	GetSection(ctx context.Context, micrositeID uuid.UUID, sectionID string) (domains.MicrositeSection, error)
	UpdateMicrosite(ctx context.Context, userID, id uuid.UUID, u domains.MicrositeToUpdate) (domains.Microsite, error)
	UpdateSection(ctx context.Context, micrositeID uuid.UUID, sectionID string, p domains.SectionPatch) (domains.MicrositeSection, error)
	ReorderSections(ctx context.Context, micrositeID uuid.UUID, orderedIDs []string) error
	SetStatus(ctx context.Context, userID, id uuid.UUID, status domains.MicrositeStatus) (domains.Microsite, error)
	DeleteMicrosite(ctx context.Context, userID, id uuid.UUID) error
}

// TemplateReader is the read side of the catalog that sites are built from.
type TemplateReader interface {
	GetTemplate(ctx context.Context, id uuid.UUID) (domains.Template, error)
	GetVersion(ctx context.Context, versionID uuid.UUID) (domains.TemplateVersion, error)
	ListVersionSections(ctx context.Context, versionID uuid.UUID) ([]domains.TemplateSection, error)
}

type MicrositeRsvpProvider interface {
	UpsertMicrositeRsvp(ctx context.Context, g domains.GuestToSave) (domains.RsvpResult, error)
}

type SiteStatsProvider interface {
	SiteStats(ctx context.Context, ref domains.SiteRef) (domains.SiteStats, error)
}

// PublicDeps are the collaborators shared by the microsite and legacy site
// services.
type PublicDeps struct {
	Templates TemplateReader
	Wishes    WishSaver
	Stats     SiteStatsProvider
	Owners    OwnerLookup
	Notifier  notify.Notifier
	Metrics   *metrics.Metrics
	Renderer  *render.Renderer
	BaseURL   string
	Now       func() time.Time
}

type MicrositeService struct {
	provider  MicrositeProvider
	guests    MicrositeRsvpProvider
	templates TemplateReader
	stats     SiteStatsProvider
	renderer  *render.Renderer
	baseURL   string
	guestbook
}

func NewMicrositeService(provider MicrositeProvider, guests MicrositeRsvpProvider, deps PublicDeps) *MicrositeService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	return &MicrositeService{
		provider:  provider,
		guests:    guests,
		templates: deps.Templates,
		stats:     deps.Stats,
		renderer:  deps.Renderer,
		baseURL:   strings.TrimRight(deps.BaseURL, "/"),
		guestbook: guestbook{
			wishes:   deps.Wishes,
			owners:   deps.Owners,
			notifier: deps.Notifier,
			metrics:  deps.Metrics,
			now:      deps.Now,
		},
	}
}

// CreateMicrosite copies every section of the template's current version,
// seeded with its sample values.
func (h *MicrositeService) CreateMicrosite(ctx context.Context, userID uuid.UUID, in domains.MicrositeCreate) (domains.Microsite, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domains.Microsite{}, invalid("title is required")
	}
	tmpl, version, tsections, err := loadCurrentVersion(ctx, h.templates, in.TemplateID)
	if err != nil {
		return domains.Microsite{}, err
	}
	cs, fp, err := pickTheme(version, in.ColorSchemeID, in.FontPairID)
	if err != nil {
		return domains.Microsite{}, err
	}
	settings := domains.DefaultSettings().Apply(in.Settings)
	if err := checkSettings(settings); err != nil {
		return domains.Microsite{}, err
	}

	sections := make([]domains.MicrositeSection, 0, len(tsections))
	for _, ts := range tsections {
		sections = append(sections, domains.MicrositeSection{
			SectionID: ts.SectionID,
			Type:      ts.Type,
			Name:      ts.Name,
			Values:    cloneValues(ts.SampleValues),
			Enabled:   true,
			Order:     ts.Order,
		})
	}
	toSave := domains.MicrositeToSave{
		UserID:        userID,
		TemplateID:    tmpl.ID,
		VersionID:     version.ID,
		Title:         in.Title,
		ColorSchemeID: cs,
		FontPairID:    fp,
		Settings:      settings,
		Sections:      sections,
	}

	for attempt := 0; attempt < slugAttempts; attempt++ {
		toSave.Slug = slug.WithSuffix(in.Title)
		m, err := h.provider.CreateMicrosite(ctx, toSave)
		if errors.Is(err, storage.ErrConflict) {
			slog.Warn("microsite slug collision", "slug", toSave.Slug, "attempt", attempt+1)
			continue
		}
		if err != nil {
			slog.Error("Create microsite error", "err", err, "user_id", userID)
			return domains.Microsite{}, err
		}
		h.metrics.MicrositeCreated()
		slog.Info("microsite created", "microsite_id", m.ID, "slug", m.Slug, "template_id", tmpl.ID)
		return m, nil
	}
	return domains.Microsite{}, ErrSlugUnavailable
}

func (h *MicrositeService) ListMicrosites(ctx context.Context, userID uuid.UUID, f domains.MicrositeFilter) (domains.Page[domains.MicrositeSummary], error) {
	if f.Status != "" && !f.Status.Valid() {
		return domains.Page[domains.MicrositeSummary]{}, invalid("invalid status %q", f.Status)
	}
	f.Page, f.Limit = domains.NormalizePage(f.Page, f.Limit)
	items, total, err := h.provider.ListMicrosites(ctx, userID, f)
	if err != nil {
		slog.Error("List microsites error", "err", err, "user_id", userID)
		return domains.Page[domains.MicrositeSummary]{}, err
	}
	return domains.NewPage(items, total, f.Page, f.Limit), nil
}

func (h *MicrositeService) GetMicrosite(ctx context.Context, userID, id uuid.UUID) (domains.MicrositeDetails, error) {
	m, err := h.owned(ctx, userID, id)
	if err != nil {
		return domains.MicrositeDetails{}, err
	}
	sections, err := h.provider.ListSections(ctx, m.ID)
	if err != nil {
		slog.Error("List microsite sections error", "err", err, "microsite_id", id)
		return domains.MicrositeDetails{}, err
	}
	tmpl, err := h.templates.GetTemplate(ctx, m.TemplateID)
	if err != nil {
		return domains.MicrositeDetails{}, err
	}
	version, err := h.templates.GetVersion(ctx, m.VersionID)
	if err != nil {
		return domains.MicrositeDetails{}, err
	}
	stats, err := h.stats.SiteStats(ctx, micrositeRef(m))
	if err != nil {
		slog.Error("Microsite stats error", "err", err, "microsite_id", id)
		return domains.MicrositeDetails{}, err
	}
	return domains.MicrositeDetails{
		Microsite: m,
		Sections:  sections,
		Template:  tmpl,
		Version:   version,
		Stats:     stats,
	}, nil
}

func (h *MicrositeService) UpdateMicrosite(ctx context.Context, userID, id uuid.UUID, u domains.MicrositeUpdate) (domains.Microsite, error) {
	m, err := h.owned(ctx, userID, id)
	if err != nil {
		return domains.Microsite{}, err
	}
	if !u.HasChanges() {
		return m, nil
	}
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		if t == "" {
			return domains.Microsite{}, invalid("title cannot be empty")
		}
		u.Title = &t
	}
	if u.ColorSchemeID != nil || u.FontPairID != nil {
		version, err := h.templates.GetVersion(ctx, m.VersionID)
		if err != nil {
			return domains.Microsite{}, err
		}
		if u.ColorSchemeID != nil {
			if _, ok := version.ColorScheme(*u.ColorSchemeID); !ok {
				return domains.Microsite{}, ErrInvalidColorScheme
			}
		}
		if u.FontPairID != nil {
			if _, ok := version.FontPair(*u.FontPairID); !ok {
				return domains.Microsite{}, ErrInvalidFontPair
			}
		}
	}
	toUpdate := domains.MicrositeToUpdate{
		Title:         u.Title,
		ColorSchemeID: u.ColorSchemeID,
		FontPairID:    u.FontPairID,
	}
	if u.Settings != nil {
		merged := m.Settings.Apply(u.Settings)
		if err := checkSettings(merged); err != nil {
			return domains.Microsite{}, err
		}
		toUpdate.Settings = &merged
	}
	updated, err := h.provider.UpdateMicrosite(ctx, userID, id, toUpdate)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Microsite{}, ErrSiteNotFound
	}
	if err != nil {
		slog.Error("Update microsite error", "err", err, "microsite_id", id)
		return domains.Microsite{}, err
	}
	return updated, nil
}

// UpdateMicrositeSection merges the patch onto one section. Disabling is
// refused when the template marks the section as not disableable.
func (h *MicrositeService) UpdateMicrositeSection(ctx context.Context, userID, id uuid.UUID, sectionID string, p domains.SectionPatch) (domains.MicrositeSection, error) {
	m, err := h.owned(ctx, userID, id)
	if err != nil {
		return domains.MicrositeSection{}, err
	}
	if p.Enabled != nil && !*p.Enabled {
		if err := h.checkDisableable(ctx, m, sectionID); err != nil {
			return domains.MicrositeSection{}, err
		}
	}
	sec, err := h.provider.UpdateSection(ctx, m.ID, sectionID, p)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.MicrositeSection{}, ErrSectionNotFound
	}
	if err != nil {
		slog.Error("Update microsite section error", "err", err, "microsite_id", id, "section_id", sectionID)
		return domains.MicrositeSection{}, err
	}
	return sec, nil
}

func (h *MicrositeService) ToggleMicrositeSection(ctx context.Context, userID, id uuid.UUID, sectionID string) (domains.MicrositeSection, error) {
	m, err := h.owned(ctx, userID, id)
	if err != nil {
		return domains.MicrositeSection{}, err
	}
	sec, err := h.provider.GetSection(ctx, m.ID, sectionID)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.MicrositeSection{}, ErrSectionNotFound
	}
	if err != nil {
		return domains.MicrositeSection{}, err
	}
	enabled := !sec.Enabled
	return h.UpdateMicrositeSection(ctx, userID, id, sectionID, domains.SectionPatch{Enabled: &enabled})
}

// ReorderMicrositeSections sets order = position for the listed ids only.
func (h *MicrositeService) ReorderMicrositeSections(ctx context.Context, userID, id uuid.UUID, orderedIDs []string) ([]domains.MicrositeSection, error) {
	if len(orderedIDs) == 0 {
		return nil, invalid("orderedIds is required")
	}
	m, err := h.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := h.provider.ReorderSections(ctx, m.ID, orderedIDs); err != nil {
		slog.Error("Reorder microsite sections error", "err", err, "microsite_id", id)
		return nil, err
	}
	return h.provider.ListSections(ctx, m.ID)
}

func (h *MicrositeService) PublishMicrosite(ctx context.Context, userID, id uuid.UUID) (domains.Microsite, error) {
	return h.setStatus(ctx, userID, id, domains.MicrositeStatusPublished)
}

func (h *MicrositeService) UnpublishMicrosite(ctx context.Context, userID, id uuid.UUID) (domains.Microsite, error) {
	return h.setStatus(ctx, userID, id, domains.MicrositeStatusDraft)
}

func (h *MicrositeService) ArchiveMicrosite(ctx context.Context, userID, id uuid.UUID) (domains.Microsite, error) {
	return h.setStatus(ctx, userID, id, domains.MicrositeStatusArchived)
}

func (h *MicrositeService) setStatus(ctx context.Context, userID, id uuid.UUID, status domains.MicrositeStatus) (domains.Microsite, error) {
	m, err := h.provider.SetStatus(ctx, userID, id, status)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Microsite{}, ErrSiteNotFound
	}
	if err != nil {
		slog.Error("Set microsite status error", "err", err, "microsite_id", id, "status", status)
		return domains.Microsite{}, err
	}
	slog.Info("microsite status changed", "microsite_id", id, "status", status)
	return m, nil
}

func (h *MicrositeService) DeleteMicrosite(ctx context.Context, userID, id uuid.UUID) error {
	err := h.provider.DeleteMicrosite(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrSiteNotFound
	}
	if err != nil {
		slog.Error("Delete microsite error", "err", err, "microsite_id", id)
	}
	return err
}

// GetPublicMicrosite counts a view and returns what guests see.
func (h *MicrositeService) GetPublicMicrosite(ctx context.Context, slug string) (domains.PublicSite, error) {
	p, err := h.loadPublic(ctx, slug)
	if err != nil {
		return domains.PublicSite{}, err
	}
	return domains.PublicSite{
		ID:       p.microsite.ID,
		Title:    p.microsite.Title,
		Slug:     p.microsite.Slug,
		Theme:    p.theme,
		Settings: p.microsite.Settings,
		Sections: publicSections(p.sections),
		Wishes:   p.wishes,
	}, nil
}

func (h *MicrositeService) RenderPublicMicrosite(ctx context.Context, slug string, device render.Device) (template.HTML, error) {
	p, err := h.loadPublic(ctx, slug)
	if err != nil {
		return "", err
	}
	settings := p.microsite.Settings
	return h.renderer.Page(ctx, render.PageInput{
		Title:    p.microsite.Title,
		Theme:    p.theme,
		Device:   device,
		Sections: p.sections,
		Settings: &settings,
		Wishes:   p.wishes,
		Data:     pageData(p.microsite.Title, p.microsite.Slug, &settings, p.sections),
	})
}

// QRCode encodes the public URL of the microsite as a PNG.
func (h *MicrositeService) QRCode(ctx context.Context, userID, id uuid.UUID, size int) ([]byte, error) {
	m, err := h.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	switch {
	case size == 0:
		size = defaultQRSize
	case size < minQRSize:
		size = minQRSize
	case size > maxQRSize:
		size = maxQRSize
	}
	png, err := qrcode.Encode(h.PublicURL(m.Slug), qrcode.Medium, size)
	if err != nil {
		slog.Error("QR encode error", "err", err, "microsite_id", id)
		return nil, err
	}
	return png, nil
}

func (h *MicrositeService) PublicURL(slug string) string {
	return h.baseURL + "/s/" + slug
}

// SubmitMicrositeRsvp creates the guest or, when the email already answered,
// replaces the earlier answer.
func (h *MicrositeService) SubmitMicrositeRsvp(ctx context.Context, slug string, in domains.RsvpSubmit) (domains.RsvpResult, error) {
	m, err := h.published(ctx, slug)
	if err != nil {
		return domains.RsvpResult{}, err
	}
	ref := micrositeRef(m)
	if err := h.checkRsvpOpen(m.Settings); err != nil {
		return domains.RsvpResult{}, err
	}
	g, err := rsvpToSave(ref, in)
	if err != nil {
		return domains.RsvpResult{}, err
	}
	res, err := h.guests.UpsertMicrositeRsvp(ctx, g)
	if err != nil {
		slog.Error("Upsert rsvp error", "err", err, "microsite_id", m.ID)
		return domains.RsvpResult{}, err
	}
	result := rsvpResultNew
	if res.Updated {
		result = rsvpResultUpd
	}
	h.metrics.RsvpSubmitted(rsvpPathMicro, result)
	h.notifyRsvp(ctx, ref, res.Guest, res.Updated)
	return res, nil
}

func (h *MicrositeService) SubmitMicrositeWish(ctx context.Context, slug string, in domains.WishSubmit) (domains.Wish, error) {
	m, err := h.published(ctx, slug)
	if err != nil {
		return domains.Wish{}, err
	}
	return h.submitWish(ctx, micrositeRef(m), in)
}

type publicMicrosite struct {
	microsite domains.Microsite
	theme     domains.Theme
	sections  []render.PageSection
	wishes    []domains.Wish
}

func (h *MicrositeService) loadPublic(ctx context.Context, slug string) (publicMicrosite, error) {
	m, err := h.provider.GetPublishedMicrosite(ctx, slug, true)
	if errors.Is(err, storage.ErrNotFound) {
		return publicMicrosite{}, ErrSiteNotPublished
	}
	if err != nil {
		return publicMicrosite{}, err
	}
	version, err := h.templates.GetVersion(ctx, m.VersionID)
	if err != nil {
		return publicMicrosite{}, err
	}
	tsections, err := h.templates.ListVersionSections(ctx, m.VersionID)
	if err != nil {
		return publicMicrosite{}, err
	}
	sections, err := h.provider.ListSections(ctx, m.ID)
	if err != nil {
		return publicMicrosite{}, err
	}
	cs, fp := version.ResolveTheme(m.ColorSchemeID, m.FontPairID)
	return publicMicrosite{
		microsite: m,
		theme:     domains.Theme{ColorScheme: cs, FontPair: fp},
		sections:  micrositePageSections(sections, tsections),
		wishes:    h.approvedWishes(ctx, micrositeRef(m)),
	}, nil
}

func (h *MicrositeService) published(ctx context.Context, slug string) (domains.Microsite, error) {
	m, err := h.provider.GetPublishedMicrosite(ctx, slug, false)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Microsite{}, ErrSiteNotPublished
	}
	return m, err
}

func (h *MicrositeService) owned(ctx context.Context, userID, id uuid.UUID) (domains.Microsite, error) {
	m, err := h.provider.GetMicrosite(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Microsite{}, ErrSiteNotFound
	}
	if err != nil {
		slog.Error("Get microsite error", "err", err, "microsite_id", id)
	}
	return m, err
}

func (h *MicrositeService) checkDisableable(ctx context.Context, m domains.Microsite, sectionID string) error {
	tsections, err := h.templates.ListVersionSections(ctx, m.VersionID)
	if err != nil {
		return err
	}
	for _, ts := range tsections {
		if ts.SectionID == sectionID && !ts.CanDisable {
			return ErrSectionNotDisabled
		}
	}
	return nil
}

func micrositeRef(m domains.Microsite) domains.SiteRef {
	return domains.SiteRef{
		Kind:     domains.SiteKindMicrosite,
		ID:       m.ID,
		UserID:   m.UserID,
		Title:    m.Title,
		Slug:     m.Slug,
		Status:   m.Status,
		Settings: m.Settings,
	}
}

// loadCurrentVersion resolves an active template and its current version.
func loadCurrentVersion(ctx context.Context, templates TemplateReader, id uuid.UUID) (domains.Template, domains.TemplateVersion, []domains.TemplateSection, error) {
	tmpl, err := templates.GetTemplate(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Template{}, domains.TemplateVersion{}, nil, ErrTemplateNotFound
	}
	if err != nil {
		return domains.Template{}, domains.TemplateVersion{}, nil, err
	}
	if !tmpl.IsActive || tmpl.CurrentVersionID == nil {
		return domains.Template{}, domains.TemplateVersion{}, nil, ErrTemplateInactive
	}
	version, err := templates.GetVersion(ctx, *tmpl.CurrentVersionID)
	if err != nil {
		return domains.Template{}, domains.TemplateVersion{}, nil, err
	}
	sections, err := templates.ListVersionSections(ctx, version.ID)
	if err != nil {
		return domains.Template{}, domains.TemplateVersion{}, nil, err
	}
	return tmpl, version, sections, nil
}

// pickTheme validates requested ids against the version, defaulting to the
// version defaults.
func pickTheme(v domains.TemplateVersion, colorSchemeID, fontPairID string) (string, string, error) {
	if colorSchemeID == "" {
		colorSchemeID = v.DefaultColorScheme
		if _, ok := v.ColorScheme(colorSchemeID); !ok && len(v.ColorSchemes) > 0 {
			colorSchemeID = v.ColorSchemes[0].ID
		}
	} else if _, ok := v.ColorScheme(colorSchemeID); !ok {
		return "", "", ErrInvalidColorScheme
	}
	if fontPairID == "" {
		fontPairID = v.DefaultFontPair
		if _, ok := v.FontPair(fontPairID); !ok && len(v.FontPairs) > 0 {
			fontPairID = v.FontPairs[0].ID
		}
	} else if _, ok := v.FontPair(fontPairID); !ok {
		return "", "", ErrInvalidFontPair
	}
	return colorSchemeID, fontPairID, nil
}

func checkSettings(s domains.MicrositeSettings) error {
	if s.MaxHighlightedWishes < 0 {
		return invalid("maxHighlightedWishes cannot be negative")
	}
	return nil
}

func cloneValues(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
