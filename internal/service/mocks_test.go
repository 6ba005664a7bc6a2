package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/notify"
	"eventsite/internal/storage"
)

// mockCatalog is an in-memory template catalog.
type mockCatalog struct {
	templates map[uuid.UUID]domains.Template
	versions  map[uuid.UUID]domains.TemplateVersion
	sections  map[uuid.UUID][]domains.TemplateSection
	usedVer   map[uuid.UUID]bool
	usedTmpl  map[uuid.UUID]bool
	saved     []domains.TemplateToSave
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		templates: map[uuid.UUID]domains.Template{},
		versions:  map[uuid.UUID]domains.TemplateVersion{},
		sections:  map[uuid.UUID][]domains.TemplateSection{},
		usedVer:   map[uuid.UUID]bool{},
		usedTmpl:  map[uuid.UUID]bool{},
	}
}

func (m *mockCatalog) SaveTemplate(_ context.Context, t domains.TemplateToSave) (domains.TemplateDetails, error) {
	for _, existing := range m.templates {
		if existing.Slug == t.Slug {
			return domains.TemplateDetails{}, storage.ErrConflict
		}
	}
	m.saved = append(m.saved, t)
	tmplID, verID := uuid.New(), uuid.New()
	tmpl := domains.Template{
		ID: tmplID, Slug: t.Slug, Name: t.Name, Description: t.Description, Category: t.Category,
		Status: t.Status, IsActive: t.Status == domains.TemplateStatusPublished,
		CurrentVersion: 1, CurrentVersionID: &verID, CreatedBy: t.CreatedBy,
	}
	version := domains.TemplateVersion{
		ID: verID, TemplateID: tmplID, Version: 1,
		ColorSchemes: t.Version.ColorSchemes, FontPairs: t.Version.FontPairs,
		DefaultColorScheme: t.Version.DefaultColorScheme, DefaultFontPair: t.Version.DefaultFontPair,
		Changelog: t.Version.Changelog,
	}
	sections := make([]domains.TemplateSection, len(t.Sections))
	for i, s := range t.Sections {
		s.ID, s.VersionID = uuid.New(), verID
		sections[i] = s
	}
	m.templates[tmplID] = tmpl
	m.versions[verID] = version
	m.sections[verID] = sections
	return domains.TemplateDetails{Template: tmpl, Version: version, Sections: sections}, nil
}

func (m *mockCatalog) ListTemplates(_ context.Context, f domains.TemplateFilter) ([]domains.Template, int, error) {
	var out []domains.Template
	for _, t := range m.templates {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.ActiveOnly && !t.IsActive {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), nil
}

func (m *mockCatalog) GetTemplate(_ context.Context, id uuid.UUID) (domains.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return domains.Template{}, storage.ErrNotFound
	}
	return t, nil
}

func (m *mockCatalog) GetVersion(_ context.Context, id uuid.UUID) (domains.TemplateVersion, error) {
	v, ok := m.versions[id]
	if !ok {
		return domains.TemplateVersion{}, storage.ErrNotFound
	}
	return v, nil
}

func (m *mockCatalog) ListVersionSections(_ context.Context, id uuid.UUID) ([]domains.TemplateSection, error) {
	out := append([]domains.TemplateSection(nil), m.sections[id]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *mockCatalog) GetTemplateDetails(ctx context.Context, id uuid.UUID) (domains.TemplateDetails, error) {
	t, err := m.GetTemplate(ctx, id)
	if err != nil {
		return domains.TemplateDetails{}, err
	}
	v := m.versions[*t.CurrentVersionID]
	sections, _ := m.ListVersionSections(ctx, v.ID)
	return domains.TemplateDetails{Template: t, Version: v, Sections: sections}, nil
}

func (m *mockCatalog) ListVersions(_ context.Context, id uuid.UUID) ([]domains.TemplateVersion, error) {
	var out []domains.TemplateVersion
	for _, v := range m.versions {
		if v.TemplateID == id {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (m *mockCatalog) UpdateTemplate(_ context.Context, id uuid.UUID, u domains.TemplateUpdate) (domains.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return domains.Template{}, storage.ErrNotFound
	}
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	m.templates[id] = t
	return t, nil
}

func (m *mockCatalog) SetActive(_ context.Context, id uuid.UUID, active bool) (domains.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return domains.Template{}, storage.ErrNotFound
	}
	t.IsActive = active
	t.Status = domains.TemplateStatusDraft
	if active {
		t.Status = domains.TemplateStatusPublished
	}
	m.templates[id] = t
	return t, nil
}

func (m *mockCatalog) VersionInUse(_ context.Context, id uuid.UUID) (bool, error) {
	return m.usedVer[id], nil
}

func (m *mockCatalog) TemplateInUse(_ context.Context, id uuid.UUID) (bool, error) {
	return m.usedTmpl[id], nil
}

func (m *mockCatalog) UpdateVersion(_ context.Context, id uuid.UUID, u domains.VersionUpdate) (domains.TemplateVersion, error) {
	v, ok := m.versions[id]
	if !ok {
		return domains.TemplateVersion{}, storage.ErrNotFound
	}
	if u.ColorSchemes != nil {
		v.ColorSchemes = u.ColorSchemes
	}
	if u.FontPairs != nil {
		v.FontPairs = u.FontPairs
	}
	if u.DefaultColorScheme != nil {
		v.DefaultColorScheme = *u.DefaultColorScheme
	}
	if u.DefaultFontPair != nil {
		v.DefaultFontPair = *u.DefaultFontPair
	}
	m.versions[id] = v
	return v, nil
}

func (m *mockCatalog) AddSection(_ context.Context, versionID uuid.UUID, sec domains.TemplateSection) (domains.TemplateSection, error) {
	for _, s := range m.sections[versionID] {
		if s.SectionID == sec.SectionID {
			return domains.TemplateSection{}, storage.ErrConflict
		}
	}
	sec.ID, sec.VersionID, sec.Order = uuid.New(), versionID, len(m.sections[versionID])
	m.sections[versionID] = append(m.sections[versionID], sec)
	return sec, nil
}

func (m *mockCatalog) UpdateSection(_ context.Context, versionID uuid.UUID, sectionID string, u domains.TemplateSectionUpdate) (domains.TemplateSection, error) {
	for i, s := range m.sections[versionID] {
		if s.SectionID != sectionID {
			continue
		}
		if u.Name != nil {
			s.Name = *u.Name
		}
		if u.CanDisable != nil {
			s.CanDisable = *u.CanDisable
		}
		m.sections[versionID][i] = s
		return s, nil
	}
	return domains.TemplateSection{}, storage.ErrNotFound
}

func (m *mockCatalog) DeleteSection(_ context.Context, versionID uuid.UUID, sectionID string) error {
	secs := m.sections[versionID]
	for i, s := range secs {
		if s.SectionID == sectionID {
			rest := append(secs[:i:i], secs[i+1:]...)
			for j := range rest {
				if rest[j].Order > s.Order {
					rest[j].Order--
				}
			}
			m.sections[versionID] = rest
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *mockCatalog) ReorderSections(_ context.Context, versionID uuid.UUID, ids []string) error {
	for pos, id := range ids {
		for i, s := range m.sections[versionID] {
			if s.SectionID == id {
				m.sections[versionID][i].Order = pos
			}
		}
	}
	return nil
}

func (m *mockCatalog) CreateNewVersion(_ context.Context, templateID uuid.UUID, changelog string) (domains.TemplateVersion, error) {
	t, ok := m.templates[templateID]
	if !ok {
		return domains.TemplateVersion{}, storage.ErrNotFound
	}
	cur := m.versions[*t.CurrentVersionID]
	next := cur
	next.ID = uuid.New()
	next.Version = cur.Version + 1
	next.Changelog = changelog
	next.ColorSchemes = append([]domains.ColorScheme(nil), cur.ColorSchemes...)
	next.FontPairs = append([]domains.FontPair(nil), cur.FontPairs...)
	var copied []domains.TemplateSection
	for _, s := range m.sections[cur.ID] {
		s.ID, s.VersionID = uuid.New(), next.ID
		copied = append(copied, s)
	}
	m.versions[next.ID] = next
	m.sections[next.ID] = copied
	t.CurrentVersion, t.CurrentVersionID = next.Version, &next.ID
	m.templates[templateID] = t
	return next, nil
}

func (m *mockCatalog) DeleteTemplate(_ context.Context, id uuid.UUID) error {
	if _, ok := m.templates[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

// seedTemplate stores a published template whose current version holds the
// given sections in order.
func seedTemplate(m *mockCatalog, sections ...domains.TemplateSection) domains.Template {
	tmplID, verID := uuid.New(), uuid.New()
	t := domains.Template{
		ID: tmplID, Slug: "tmpl-" + tmplID.String()[:8], Name: "Garden Wedding", Category: "wedding",
		Status: domains.TemplateStatusPublished, IsActive: true,
		CurrentVersion: 1, CurrentVersionID: &verID,
	}
	m.templates[tmplID] = t
	m.versions[verID] = domains.TemplateVersion{
		ID: verID, TemplateID: tmplID, Version: 1,
		ColorSchemes: []domains.ColorScheme{
			{ID: "classic", Name: "Classic", Primary: "#333333", Background: "#ffffff"},
			{ID: "night", Name: "Night", Primary: "#eeeeee", Background: "#111111"},
		},
		FontPairs: []domains.FontPair{
			{ID: "serif", Name: "Serif", Heading: domains.FontFace{Family: "Playfair Display"}, Body: domains.FontFace{Family: "Lora"}},
		},
		DefaultColorScheme: "classic",
		DefaultFontPair:    "serif",
	}
	for i := range sections {
		sections[i].ID, sections[i].VersionID, sections[i].Order = uuid.New(), verID, i
	}
	m.sections[verID] = sections
	return t
}

func weddingSections() []domains.TemplateSection {
	return []domains.TemplateSection{
		{
			SectionID: "hero", Type: domains.SectionHero, Name: "Hero", IsRequired: true,
			Fields: []domains.FieldDefinition{
				{Key: "brideName", Label: "Bride", Type: domains.FieldText, Validation: &domains.FieldValidation{Required: true}},
				{Key: "groomName", Label: "Groom", Type: domains.FieldText, Validation: &domains.FieldValidation{Required: true}},
				{Key: "title", Label: "Title", Type: domains.FieldText},
			},
			SampleValues: map[string]any{"brideName": "Mia", "groomName": "Leo", "title": "{{brideName}} & {{groomName}}"},
		},
		{
			SectionID: "story", Type: domains.SectionStory, Name: "Our Story", CanDisable: true,
			Fields: []domains.FieldDefinition{
				{Key: "content", Label: "Story", Type: domains.FieldTextarea, Validation: &domains.FieldValidation{Required: true}},
			},
			SampleValues: map[string]any{"content": "We met in Lisbon."},
		},
		{
			SectionID: "rsvp", Type: domains.SectionRsvp, Name: "RSVP", CanDisable: true,
			SampleValues: map[string]any{"title": "Will you join us?"},
		},
	}
}

// mockMicrosites keeps microsites and their sections in memory.
type mockMicrosites struct {
	items      map[uuid.UUID]domains.Microsite
	sections   map[uuid.UUID][]domains.MicrositeSection
	conflicts  int
	createCall int
}

func newMockMicrosites() *mockMicrosites {
	return &mockMicrosites{
		items:    map[uuid.UUID]domains.Microsite{},
		sections: map[uuid.UUID][]domains.MicrositeSection{},
	}
}

func (m *mockMicrosites) CreateMicrosite(_ context.Context, in domains.MicrositeToSave) (domains.Microsite, error) {
	m.createCall++
	if m.createCall <= m.conflicts {
		return domains.Microsite{}, storage.ErrConflict
	}
	ms := domains.Microsite{
		ID: uuid.New(), UserID: in.UserID, TemplateID: in.TemplateID, VersionID: in.VersionID,
		Title: in.Title, Slug: in.Slug, Status: domains.MicrositeStatusDraft,
		ColorSchemeID: in.ColorSchemeID, FontPairID: in.FontPairID, Settings: in.Settings,
	}
	secs := make([]domains.MicrositeSection, len(in.Sections))
	for i, s := range in.Sections {
		s.ID, s.MicrositeID = uuid.New(), ms.ID
		secs[i] = s
	}
	m.items[ms.ID] = ms
	m.sections[ms.ID] = secs
	return ms, nil
}

func (m *mockMicrosites) ListMicrosites(_ context.Context, userID uuid.UUID, _ domains.MicrositeFilter) ([]domains.MicrositeSummary, int, error) {
	var out []domains.MicrositeSummary
	for _, ms := range m.items {
		if ms.UserID == userID {
			out = append(out, domains.MicrositeSummary{Microsite: ms})
		}
	}
	return out, len(out), nil
}

func (m *mockMicrosites) GetMicrosite(_ context.Context, userID, id uuid.UUID) (domains.Microsite, error) {
	ms, ok := m.items[id]
	if !ok || ms.UserID != userID {
		return domains.Microsite{}, storage.ErrNotFound
	}
	return ms, nil
}

func (m *mockMicrosites) GetPublishedMicrosite(_ context.Context, slug string, countView bool) (domains.Microsite, error) {
	for id, ms := range m.items {
		if ms.Slug == slug && ms.Status == domains.MicrositeStatusPublished {
			if countView {
				ms.ViewCount++
				m.items[id] = ms
			}
			return ms, nil
		}
	}
	return domains.Microsite{}, storage.ErrNotFound
}

func (m *mockMicrosites) ListSections(_ context.Context, id uuid.UUID) ([]domains.MicrositeSection, error) {
	out := append([]domains.MicrositeSection(nil), m.sections[id]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *mockMicrosites) GetSection(_ context.Context, id uuid.UUID, sectionID string) (domains.MicrositeSection, error) {
	for _, s := range m.sections[id] {
		if s.SectionID == sectionID {
			return s, nil
		}
	}
	return domains.MicrositeSection{}, storage.ErrNotFound
}

func (m *mockMicrosites) UpdateMicrosite(_ context.Context, userID, id uuid.UUID, u domains.MicrositeToUpdate) (domains.Microsite, error) {
	ms, ok := m.items[id]
	if !ok || ms.UserID != userID {
		return domains.Microsite{}, storage.ErrNotFound
	}
	if u.Title != nil {
		ms.Title = *u.Title
	}
	if u.ColorSchemeID != nil {
		ms.ColorSchemeID = *u.ColorSchemeID
	}
	if u.FontPairID != nil {
		ms.FontPairID = *u.FontPairID
	}
	if u.Settings != nil {
		ms.Settings = *u.Settings
	}
	m.items[id] = ms
	return ms, nil
}

func (m *mockMicrosites) UpdateSection(_ context.Context, id uuid.UUID, sectionID string, p domains.SectionPatch) (domains.MicrositeSection, error) {
	for i, s := range m.sections[id] {
		if s.SectionID != sectionID {
			continue
		}
		if s.Values == nil {
			s.Values = map[string]any{}
		}
		for k, v := range p.Values {
			s.Values[k] = v
		}
		if p.Enabled != nil {
			s.Enabled = *p.Enabled
		}
		if p.Order != nil {
			s.Order = *p.Order
		}
		m.sections[id][i] = s
		return s, nil
	}
	return domains.MicrositeSection{}, storage.ErrNotFound
}

func (m *mockMicrosites) ReorderSections(_ context.Context, id uuid.UUID, ids []string) error {
	for pos, sid := range ids {
		for i, s := range m.sections[id] {
			if s.SectionID == sid {
				m.sections[id][i].Order = pos
			}
		}
	}
	return nil
}

func (m *mockMicrosites) SetStatus(_ context.Context, userID, id uuid.UUID, status domains.MicrositeStatus) (domains.Microsite, error) {
	ms, ok := m.items[id]
	if !ok || ms.UserID != userID {
		return domains.Microsite{}, storage.ErrNotFound
	}
	ms.Status = status
	if status == domains.MicrositeStatusPublished {
		now := time.Now()
		ms.PublishedAt = &now
	}
	m.items[id] = ms
	return ms, nil
}

func (m *mockMicrosites) DeleteMicrosite(_ context.Context, userID, id uuid.UUID) error {
	ms, ok := m.items[id]
	if !ok || ms.UserID != userID {
		return storage.ErrNotFound
	}
	delete(m.items, id)
	delete(m.sections, id)
	return nil
}

// mockSites keeps legacy sites in memory.
type mockSites struct {
	items map[uuid.UUID]domains.Site
}

func newMockSites() *mockSites {
	return &mockSites{items: map[uuid.UUID]domains.Site{}}
}

func (m *mockSites) CreateSite(_ context.Context, in domains.SiteToSave) (domains.Site, error) {
	s := domains.Site{
		ID: uuid.New(), UserID: in.UserID, TemplateID: in.TemplateID, VersionID: in.VersionID,
		Title: in.Title, Slug: in.Slug, Status: domains.MicrositeStatusDraft,
		ColorScheme: in.ColorScheme, FontPair: in.FontPair, Sections: in.Sections, Settings: in.Settings,
	}
	m.items[s.ID] = s
	return s, nil
}

func (m *mockSites) ListSites(_ context.Context, userID uuid.UUID, _, _ int) ([]domains.Site, int, error) {
	var out []domains.Site
	for _, s := range m.items {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

func (m *mockSites) GetSite(_ context.Context, userID, id uuid.UUID) (domains.Site, error) {
	s, ok := m.items[id]
	if !ok || s.UserID != userID {
		return domains.Site{}, storage.ErrNotFound
	}
	return s, nil
}

func (m *mockSites) GetPublishedSite(_ context.Context, slug string, _ bool) (domains.Site, error) {
	for _, s := range m.items {
		if s.Slug == slug && s.Status == domains.MicrositeStatusPublished {
			return s, nil
		}
	}
	return domains.Site{}, storage.ErrNotFound
}

func (m *mockSites) UpdateSite(_ context.Context, userID, id uuid.UUID, u domains.SiteToUpdate) (domains.Site, error) {
	s, ok := m.items[id]
	if !ok || s.UserID != userID {
		return domains.Site{}, storage.ErrNotFound
	}
	if u.Title != nil {
		s.Title = *u.Title
	}
	if u.Sections != nil {
		s.Sections = u.Sections
	}
	if u.Settings != nil {
		s.Settings = *u.Settings
	}
	m.items[id] = s
	return s, nil
}

func (m *mockSites) SetStatus(_ context.Context, userID, id uuid.UUID, status domains.MicrositeStatus) (domains.Site, error) {
	s, ok := m.items[id]
	if !ok || s.UserID != userID {
		return domains.Site{}, storage.ErrNotFound
	}
	s.Status = status
	m.items[id] = s
	return s, nil
}

func (m *mockSites) DeleteSite(_ context.Context, userID, id uuid.UUID) error {
	s, ok := m.items[id]
	if !ok || s.UserID != userID {
		return storage.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// mockGuests stores guests keyed by scope id and lower-cased email, the way
// the unique indexes do.
type mockGuests struct {
	guests []domains.Guest
}

func scopeID(ref domains.SiteRef) (*uuid.UUID, *uuid.UUID) {
	id := ref.ID
	if ref.Kind == domains.SiteKindSite {
		return &id, nil
	}
	return nil, &id
}

func (m *mockGuests) find(ref domains.SiteRef, email string) int {
	for i, g := range m.guests {
		if guestIn(g, ref) && strings.EqualFold(g.Email, email) {
			return i
		}
	}
	return -1
}

func guestIn(g domains.Guest, ref domains.SiteRef) bool {
	if ref.Kind == domains.SiteKindSite {
		return g.SiteID != nil && *g.SiteID == ref.ID
	}
	return g.MicrositeID != nil && *g.MicrositeID == ref.ID
}

func guestFrom(in domains.GuestToSave) domains.Guest {
	siteID, micrositeID := scopeID(in.Ref)
	return domains.Guest{
		ID: uuid.New(), SiteID: siteID, MicrositeID: micrositeID, Name: in.Name, Email: in.Email,
		Phone: in.Phone, Status: in.Status, NumberOfGuests: in.NumberOfGuests, GuestNames: in.GuestNames,
		MealChoice: in.MealChoice, DietaryRestrictions: in.DietaryRestrictions, Message: in.Message,
		SubmittedAt: time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (m *mockGuests) InsertRsvp(_ context.Context, in domains.GuestToSave) (domains.Guest, error) {
	if m.find(in.Ref, in.Email) >= 0 {
		return domains.Guest{}, storage.ErrConflict
	}
	g := guestFrom(in)
	m.guests = append(m.guests, g)
	return g, nil
}

func (m *mockGuests) UpsertMicrositeRsvp(_ context.Context, in domains.GuestToSave) (domains.RsvpResult, error) {
	if i := m.find(in.Ref, in.Email); i >= 0 {
		g := guestFrom(in)
		g.ID = m.guests[i].ID
		m.guests[i] = g
		return domains.RsvpResult{Guest: g, Updated: true}, nil
	}
	g := guestFrom(in)
	m.guests = append(m.guests, g)
	return domains.RsvpResult{Guest: g}, nil
}

func (m *mockGuests) UpdateRsvpByEmail(_ context.Context, in domains.GuestToSave) (domains.Guest, error) {
	i := m.find(in.Ref, in.Email)
	if i < 0 {
		return domains.Guest{}, storage.ErrNotFound
	}
	g := guestFrom(in)
	g.ID = m.guests[i].ID
	m.guests[i] = g
	return g, nil
}

func (m *mockGuests) ListGuests(_ context.Context, ref domains.SiteRef, f domains.GuestFilter) ([]domains.Guest, int, error) {
	var out []domains.Guest
	for _, g := range m.guests {
		if guestIn(g, ref) && (f.Status == "" || g.Status == f.Status) {
			out = append(out, g)
		}
	}
	return out, len(out), nil
}

func (m *mockGuests) AllGuests(ctx context.Context, ref domains.SiteRef) ([]domains.Guest, error) {
	out, _, err := m.ListGuests(ctx, ref, domains.GuestFilter{})
	return out, err
}

func (m *mockGuests) GetGuest(_ context.Context, ref domains.SiteRef, id uuid.UUID) (domains.Guest, error) {
	for _, g := range m.guests {
		if g.ID == id && guestIn(g, ref) {
			return g, nil
		}
	}
	return domains.Guest{}, storage.ErrNotFound
}

func (m *mockGuests) UpdateGuestStatus(_ context.Context, ref domains.SiteRef, id uuid.UUID, status domains.GuestStatus) (domains.Guest, error) {
	for i, g := range m.guests {
		if g.ID == id && guestIn(g, ref) {
			m.guests[i].Status = status
			return m.guests[i], nil
		}
	}
	return domains.Guest{}, storage.ErrNotFound
}

func (m *mockGuests) DeleteGuest(_ context.Context, ref domains.SiteRef, id uuid.UUID) error {
	for i, g := range m.guests {
		if g.ID == id && guestIn(g, ref) {
			m.guests = append(m.guests[:i], m.guests[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// mockWishes stores wishes in memory and applies the highlight cap like the
// conditional update does.
type mockWishes struct {
	wishes []domains.Wish
}

func (m *mockWishes) wishIn(w domains.Wish, ref domains.SiteRef) bool {
	if ref.Kind == domains.SiteKindSite {
		return w.SiteID != nil && *w.SiteID == ref.ID
	}
	return w.MicrositeID != nil && *w.MicrositeID == ref.ID
}

func (m *mockWishes) SaveWish(_ context.Context, in domains.WishToSave) (domains.Wish, error) {
	siteID, micrositeID := scopeID(in.Ref)
	w := domains.Wish{
		ID: uuid.New(), SiteID: siteID, MicrositeID: micrositeID, Name: in.Name,
		Message: in.Message, Relationship: in.Relationship, Status: in.Status,
	}
	m.wishes = append(m.wishes, w)
	return w, nil
}

func (m *mockWishes) ListWishes(_ context.Context, ref domains.SiteRef, f domains.WishFilter) ([]domains.Wish, int, error) {
	var out []domains.Wish
	for _, w := range m.wishes {
		if m.wishIn(w, ref) && (f.Status == "" || w.Status == f.Status) {
			out = append(out, w)
		}
	}
	return out, len(out), nil
}

func (m *mockWishes) ListApproved(ctx context.Context, ref domains.SiteRef, _, _ int) ([]domains.Wish, int, error) {
	return m.ListWishes(ctx, ref, domains.WishFilter{Status: domains.WishStatusApproved})
}

func (m *mockWishes) GetWish(_ context.Context, ref domains.SiteRef, id uuid.UUID) (domains.Wish, error) {
	for _, w := range m.wishes {
		if w.ID == id && m.wishIn(w, ref) {
			return w, nil
		}
	}
	return domains.Wish{}, storage.ErrNotFound
}

func (m *mockWishes) UpdateWishStatus(_ context.Context, ref domains.SiteRef, id uuid.UUID, status domains.WishStatus) (domains.Wish, error) {
	for i, w := range m.wishes {
		if w.ID == id && m.wishIn(w, ref) {
			m.wishes[i].Status = status
			return m.wishes[i], nil
		}
	}
	return domains.Wish{}, storage.ErrNotFound
}

func (m *mockWishes) SetHighlight(_ context.Context, ref domains.SiteRef, id uuid.UUID, on bool, limit int) (domains.Wish, error) {
	idx := -1
	highlighted := 0
	for i, w := range m.wishes {
		if !m.wishIn(w, ref) {
			continue
		}
		if w.ID == id {
			idx = i
		} else if w.IsHighlighted {
			highlighted++
		}
	}
	if idx < 0 {
		return domains.Wish{}, storage.ErrNotFound
	}
	if on && highlighted >= limit {
		return domains.Wish{}, storage.ErrLimitReached
	}
	m.wishes[idx].IsHighlighted = on
	return m.wishes[idx], nil
}

func (m *mockWishes) DeleteWish(_ context.Context, ref domains.SiteRef, id uuid.UUID) error {
	for i, w := range m.wishes {
		if w.ID == id && m.wishIn(w, ref) {
			m.wishes = append(m.wishes[:i], m.wishes[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

type mockScope struct {
	refs map[uuid.UUID]domains.SiteRef
}

func (m *mockScope) ResolveSite(_ context.Context, id uuid.UUID) (domains.SiteRef, error) {
	ref, ok := m.refs[id]
	if !ok {
		return domains.SiteRef{}, storage.ErrNotFound
	}
	return ref, nil
}

func (m *mockScope) ResolvePublishedSite(_ context.Context, kind domains.SiteKind, slug string) (domains.SiteRef, error) {
	for _, ref := range m.refs {
		if ref.Kind == kind && ref.Slug == slug && ref.Status == domains.MicrositeStatusPublished {
			return ref, nil
		}
	}
	return domains.SiteRef{}, storage.ErrNotFound
}

type mockStats struct {
	stats domains.SiteStats
}

func (m mockStats) SiteStats(context.Context, domains.SiteRef) (domains.SiteStats, error) {
	return m.stats, nil
}

type mockOwners map[uuid.UUID]domains.User

func (m mockOwners) GetUserByID(_ context.Context, id uuid.UUID) (domains.User, error) {
	u, ok := m[id]
	if !ok {
		return domains.User{}, storage.ErrUserNotFound
	}
	return u, nil
}

// recordingNotifier keeps every notice it is given.
type recordingNotifier struct {
	rsvps  []notify.RsvpNotice
	wishes []notify.WishNotice
}

func (r *recordingNotifier) NotifyRsvp(_ context.Context, n notify.RsvpNotice) error {
	r.rsvps = append(r.rsvps, n)
	return nil
}

func (r *recordingNotifier) NotifyWish(_ context.Context, n notify.WishNotice) error {
	r.wishes = append(r.wishes, n)
	return nil
}
