package service

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/notify"
	"eventsite/internal/render"
	"eventsite/internal/slug"
	"eventsite/internal/storage"
)

type SiteProvider interface {
	CreateSite(ctx context.Context, site domains.SiteToSave) (domains.Site, error)
	ListSites(ctx context.Context, userID uuid.UUID, page, limit int) ([]domains.Site, int, error)
	GetSite(ctx context.Context, userID, id uuid.UUID) (domains.Site, error)
	GetPublishedSite(ctx context.Context, slug string, countView bool) (domains.Site, error)
	UpdateSite(ctx context.Context, userID, id uuid.UUID, u domains.SiteToUpdate) (domains.Site, error)
	SetStatus(ctx context.Context, userID, id uuid.UUID, status domains.MicrositeStatus) (domains.Site, error)
	DeleteSite(ctx context.Context, userID, id uuid.UUID) error
}

type SiteRsvpProvider interface {
	InsertRsvp(ctx context.Context, g domains.GuestToSave) (domains.Guest, error)
	UpdateRsvpByEmail(ctx context.Context, g domains.GuestToSave) (domains.Guest, error)
}

// SiteService serves the older site shape whose sections are embedded in
// the row.
type SiteService struct {
	provider  SiteProvider
	guests    SiteRsvpProvider
	templates TemplateReader
	stats     SiteStatsProvider
	renderer  *render.Renderer
	guestbook
}

func NewSiteService(provider SiteProvider, guests SiteRsvpProvider, deps PublicDeps) *SiteService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	return &SiteService{
		provider:  provider,
		guests:    guests,
		templates: deps.Templates,
		stats:     deps.Stats,
		renderer:  deps.Renderer,
		guestbook: guestbook{
			wishes:   deps.Wishes,
			owners:   deps.Owners,
			notifier: deps.Notifier,
			metrics:  deps.Metrics,
			now:      deps.Now,
		},
	}
}

func (h *SiteService) CreateSite(ctx context.Context, userID uuid.UUID, in domains.SiteCreate) (domains.Site, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domains.Site{}, invalid("title is required")
	}
	tmpl, version, tsections, err := loadCurrentVersion(ctx, h.templates, in.TemplateID)
	if err != nil {
		return domains.Site{}, err
	}
	cs, fp, err := pickTheme(version, in.ColorScheme, in.FontPair)
	if err != nil {
		return domains.Site{}, err
	}
	settings := domains.DefaultSettings().Apply(in.Settings)
	if err := checkSettings(settings); err != nil {
		return domains.Site{}, err
	}
	sections := make([]domains.SiteSection, 0, len(tsections))
	for _, ts := range tsections {
		sections = append(sections, domains.SiteSection{
			ID:      ts.SectionID,
			Type:    ts.Type,
			Name:    ts.Name,
			Enabled: true,
			Order:   ts.Order,
			Values:  cloneValues(ts.SampleValues),
		})
	}
	toSave := domains.SiteToSave{
		UserID:      userID,
		TemplateID:  tmpl.ID,
		VersionID:   version.ID,
		Title:       in.Title,
		ColorScheme: cs,
		FontPair:    fp,
		Sections:    sections,
		Settings:    settings,
	}
	for attempt := 0; attempt < slugAttempts; attempt++ {
		toSave.Slug = slug.WithSuffix(in.Title)
		site, err := h.provider.CreateSite(ctx, toSave)
		if errors.Is(err, storage.ErrConflict) {
			slog.Warn("site slug collision", "slug", toSave.Slug, "attempt", attempt+1)
			continue
		}
		if err != nil {
			slog.Error("Create site error", "err", err, "user_id", userID)
			return domains.Site{}, err
		}
		slog.Info("site created", "site_id", site.ID, "slug", site.Slug)
		return site, nil
	}
	return domains.Site{}, ErrSlugUnavailable
}

func (h *SiteService) ListSites(ctx context.Context, userID uuid.UUID, page, limit int) (domains.Page[domains.Site], error) {
	page, limit = domains.NormalizePage(page, limit)
	items, total, err := h.provider.ListSites(ctx, userID, page, limit)
	if err != nil {
		slog.Error("List sites error", "err", err, "user_id", userID)
		return domains.Page[domains.Site]{}, err
	}
	return domains.NewPage(items, total, page, limit), nil
}

func (h *SiteService) GetSite(ctx context.Context, userID, id uuid.UUID) (domains.SiteDetails, error) {
	site, err := h.owned(ctx, userID, id)
	if err != nil {
		return domains.SiteDetails{}, err
	}
	version, err := h.templates.GetVersion(ctx, site.VersionID)
	if err != nil {
		return domains.SiteDetails{}, err
	}
	stats, err := h.stats.SiteStats(ctx, siteRef(site))
	if err != nil {
		slog.Error("Site stats error", "err", err, "site_id", id)
		return domains.SiteDetails{}, err
	}
	return domains.SiteDetails{Site: site, Version: version, Stats: stats}, nil
}

func (h *SiteService) UpdateSite(ctx context.Context, userID, id uuid.UUID, u domains.SiteUpdate) (domains.Site, error) {
	site, err := h.owned(ctx, userID, id)
	if err != nil {
		return domains.Site{}, err
	}
	if !u.HasChanges() {
		return site, nil
	}
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		if t == "" {
			return domains.Site{}, invalid("title cannot be empty")
		}
		u.Title = &t
	}
	if u.ColorScheme != nil || u.FontPair != nil {
		version, err := h.templates.GetVersion(ctx, site.VersionID)
		if err != nil {
			return domains.Site{}, err
		}
		if u.ColorScheme != nil {
			if _, ok := version.ColorScheme(*u.ColorScheme); !ok {
				return domains.Site{}, ErrInvalidColorScheme
			}
		}
		if u.FontPair != nil {
			if _, ok := version.FontPair(*u.FontPair); !ok {
				return domains.Site{}, ErrInvalidFontPair
			}
		}
	}
	if u.Sections != nil {
		seen := make(map[string]struct{}, len(u.Sections))
		for _, sec := range u.Sections {
			if sec.ID == "" {
				return domains.Site{}, invalid("section id is required")
			}
			if _, dup := seen[sec.ID]; dup {
				return domains.Site{}, invalid("duplicate section id %q", sec.ID)
			}
			seen[sec.ID] = struct{}{}
		}
	}
	toUpdate := domains.SiteToUpdate{
		Title:       u.Title,
		ColorScheme: u.ColorScheme,
		FontPair:    u.FontPair,
		Sections:    u.Sections,
	}
	if u.Settings != nil {
		merged := site.Settings.Apply(u.Settings)
		if err := checkSettings(merged); err != nil {
			return domains.Site{}, err
		}
		toUpdate.Settings = &merged
	}
	updated, err := h.provider.UpdateSite(ctx, userID, id, toUpdate)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Site{}, ErrSiteNotFound
	}
	if err != nil {
		slog.Error("Update site error", "err", err, "site_id", id)
		return domains.Site{}, err
	}
	return updated, nil
}

// PublishSite refuses to publish while any required field of a visible
// section is empty.
func (h *SiteService) PublishSite(ctx context.Context, userID, id uuid.UUID) (domains.Site, error) {
	site, err := h.owned(ctx, userID, id)
	if err != nil {
		return domains.Site{}, err
	}
	tsections, err := h.templates.ListVersionSections(ctx, site.VersionID)
	if err != nil {
		return domains.Site{}, err
	}
	if missing := MissingFields(tsections, site.Sections); len(missing) > 0 {
		return domains.Site{}, &MissingFieldsError{Fields: missing}
	}
	return h.setStatus(ctx, userID, id, domains.MicrositeStatusPublished)
}

func (h *SiteService) UnpublishSite(ctx context.Context, userID, id uuid.UUID) (domains.Site, error) {
	return h.setStatus(ctx, userID, id, domains.MicrositeStatusDraft)
}

func (h *SiteService) setStatus(ctx context.Context, userID, id uuid.UUID, status domains.MicrositeStatus) (domains.Site, error) {
	site, err := h.provider.SetStatus(ctx, userID, id, status)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Site{}, ErrSiteNotFound
	}
	if err != nil {
		slog.Error("Set site status error", "err", err, "site_id", id, "status", status)
		return domains.Site{}, err
	}
	return site, nil
}

// MissingFields walks the template sections. A section is checked when the
// template requires it or the site has it enabled; within it every required
// field with an empty value is reported.
func MissingFields(tsections []domains.TemplateSection, sections []domains.SiteSection) []domains.MissingField {
	byID := make(map[string]domains.SiteSection, len(sections))
	for _, sec := range sections {
		byID[sec.ID] = sec
	}
	var missing []domains.MissingField
	for _, ts := range tsections {
		sec, ok := byID[ts.SectionID]
		if !ts.IsRequired && !(ok && sec.Enabled) {
			continue
		}
		for _, f := range ts.Fields {
			if !f.Required() || !domains.IsEmptyValue(sec.Values[f.Key]) {
				continue
			}
			missing = append(missing, domains.MissingField{
				SectionID:   ts.SectionID,
				SectionName: ts.Name,
				FieldKey:    f.Key,
				FieldLabel:  f.Label,
			})
		}
	}
	return missing
}

func (h *SiteService) DeleteSite(ctx context.Context, userID, id uuid.UUID) error {
	err := h.provider.DeleteSite(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrSiteNotFound
	}
	if err != nil {
		slog.Error("Delete site error", "err", err, "site_id", id)
	}
	return err
}

func (h *SiteService) GetPublicSite(ctx context.Context, slug string) (domains.PublicSite, error) {
	p, err := h.loadPublic(ctx, slug)
	if err != nil {
		return domains.PublicSite{}, err
	}
	return domains.PublicSite{
		ID:       p.site.ID,
		Title:    p.site.Title,
		Slug:     p.site.Slug,
		Theme:    p.theme,
		Settings: p.site.Settings,
		Sections: publicSections(p.sections),
		Wishes:   p.wishes,
	}, nil
}

func (h *SiteService) RenderPublicSite(ctx context.Context, slug string, device render.Device) (template.HTML, error) {
	p, err := h.loadPublic(ctx, slug)
	if err != nil {
		return "", err
	}
	settings := p.site.Settings
	return h.renderer.Page(ctx, render.PageInput{
		Title:    p.site.Title,
		Theme:    p.theme,
		Device:   device,
		Sections: p.sections,
		Settings: &settings,
		Wishes:   p.wishes,
		Data:     pageData(p.site.Title, p.site.Slug, &settings, p.sections),
	})
}

// SubmitRsvp accepts one answer per email; a second one is rejected.
func (h *SiteService) SubmitRsvp(ctx context.Context, slug string, in domains.RsvpSubmit) (domains.Guest, error) {
	ref, g, err := h.rsvpInput(ctx, slug, in)
	if err != nil {
		return domains.Guest{}, err
	}
	guest, err := h.guests.InsertRsvp(ctx, g)
	if errors.Is(err, storage.ErrConflict) {
		h.metrics.RsvpSubmitted(rsvpPathSite, rsvpResultDupe)
		return domains.Guest{}, ErrRsvpExists
	}
	if err != nil {
		slog.Error("Insert rsvp error", "err", err, "site_id", ref.ID)
		return domains.Guest{}, err
	}
	h.metrics.RsvpSubmitted(rsvpPathSite, rsvpResultNew)
	h.notifyRsvp(ctx, ref, guest, false)
	return guest, nil
}

// UpdateRsvp replaces the answer previously given with the same email.
func (h *SiteService) UpdateRsvp(ctx context.Context, slug string, in domains.RsvpSubmit) (domains.Guest, error) {
	ref, g, err := h.rsvpInput(ctx, slug, in)
	if err != nil {
		return domains.Guest{}, err
	}
	guest, err := h.guests.UpdateRsvpByEmail(ctx, g)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Guest{}, ErrRsvpNotFound
	}
	if err != nil {
		slog.Error("Update rsvp error", "err", err, "site_id", ref.ID)
		return domains.Guest{}, err
	}
	h.metrics.RsvpSubmitted(rsvpPathSite, rsvpResultUpd)
	h.notifyRsvp(ctx, ref, guest, true)
	return guest, nil
}

func (h *SiteService) SubmitWish(ctx context.Context, slug string, in domains.WishSubmit) (domains.Wish, error) {
	site, err := h.published(ctx, slug)
	if err != nil {
		return domains.Wish{}, err
	}
	return h.submitWish(ctx, siteRef(site), in)
}

func (h *SiteService) rsvpInput(ctx context.Context, slug string, in domains.RsvpSubmit) (domains.SiteRef, domains.GuestToSave, error) {
	site, err := h.published(ctx, slug)
	if err != nil {
		return domains.SiteRef{}, domains.GuestToSave{}, err
	}
	if err := h.checkRsvpOpen(site.Settings); err != nil {
		return domains.SiteRef{}, domains.GuestToSave{}, err
	}
	ref := siteRef(site)
	g, err := rsvpToSave(ref, in)
	return ref, g, err
}

type publicSite struct {
	site     domains.Site
	theme    domains.Theme
	sections []render.PageSection
	wishes   []domains.Wish
}

func (h *SiteService) loadPublic(ctx context.Context, slug string) (publicSite, error) {
	site, err := h.provider.GetPublishedSite(ctx, slug, true)
	if errors.Is(err, storage.ErrNotFound) {
		return publicSite{}, ErrSiteNotPublished
	}
	if err != nil {
		return publicSite{}, err
	}
	version, err := h.templates.GetVersion(ctx, site.VersionID)
	if err != nil {
		return publicSite{}, err
	}
	tsections, err := h.templates.ListVersionSections(ctx, site.VersionID)
	if err != nil {
		return publicSite{}, err
	}
	cs, fp := version.ResolveTheme(site.ColorScheme, site.FontPair)
	return publicSite{
		site:     site,
		theme:    domains.Theme{ColorScheme: cs, FontPair: fp},
		sections: sitePageSections(site.Sections, tsections),
		wishes:   h.approvedWishes(ctx, siteRef(site)),
	}, nil
}

func (h *SiteService) published(ctx context.Context, slug string) (domains.Site, error) {
	site, err := h.provider.GetPublishedSite(ctx, slug, false)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Site{}, ErrSiteNotPublished
	}
	return site, err
}

func (h *SiteService) owned(ctx context.Context, userID, id uuid.UUID) (domains.Site, error) {
	site, err := h.provider.GetSite(ctx, userID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Site{}, ErrSiteNotFound
	}
	if err != nil {
		slog.Error("Get site error", "err", err, "site_id", id)
	}
	return site, err
}

func siteRef(s domains.Site) domains.SiteRef {
	return domains.SiteRef{
		Kind:     domains.SiteKindSite,
		ID:       s.ID,
		UserID:   s.UserID,
		Title:    s.Title,
		Slug:     s.Slug,
		Status:   s.Status,
		Settings: s.Settings,
	}
}
