package providers_test

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventsite/internal/domains"
	"eventsite/internal/render"
	"eventsite/internal/service"
	"eventsite/internal/storage"
	"eventsite/internal/storage/providers"
)

// openTestDB migrates a throwaway schema in the database named by
// DATABASE_URL and drops it when the test ends.
func openTestDB(t *testing.T) *providers.Providers {
	t.Helper()
	base := os.Getenv("DATABASE_URL")
	if base == "" {
		t.Skip("DATABASE_URL not set")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" {
		t.Skipf("DATABASE_URL must be a postgres:// URL")
	}
	ctx := context.Background()

	admin, err := pgxpool.New(ctx, base)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec(ctx, `CREATE SCHEMA `+schema); err != nil {
		admin.Close()
		t.Fatalf("create schema: %v", err)
	}

	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	if err := storage.Migrate(u.String()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := pgxpool.New(ctx, u.String())
	if err != nil {
		t.Fatalf("connect to schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if _, err := admin.Exec(context.Background(), `DROP SCHEMA `+schema+` CASCADE`); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
		admin.Close()
	})
	return providers.New(pool)
}

type fixture struct {
	p        *providers.Providers
	user     domains.User
	template domains.TemplateDetails
}

func newFixture(t *testing.T, sectionIDs ...string) *fixture {
	t.Helper()
	p := openTestDB(t)
	ctx := context.Background()

	user, err := p.AuthProvider.SaveUser(ctx, domains.UserToSave{Email: "owner@example.com", Name: "Owner", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("save user: %v", err)
	}

	sections := make([]domains.TemplateSection, 0, len(sectionIDs))
	for i, id := range sectionIDs {
		sections = append(sections, domains.TemplateSection{
			SectionID:    id,
			Type:         domains.SectionStory,
			Name:         strings.ToUpper(id[:1]) + id[1:],
			Fields:       []domains.FieldDefinition{{Key: "content", Label: "Content", Type: domains.FieldText}},
			SampleValues: map[string]any{"content": "About " + id},
			CanDisable:   true,
			Order:        i,
		})
	}
	details, err := p.TemplateProvider.SaveTemplate(ctx, domains.TemplateToSave{
		Slug:      "garden-" + uuid.NewString()[:8],
		Name:      "Garden",
		Category:  "wedding",
		Status:    domains.TemplateStatusPublished,
		CreatedBy: user.ID,
		Version: domains.VersionToSave{
			ColorSchemes:       []domains.ColorScheme{{ID: "classic", Name: "Classic", Primary: "#333"}},
			FontPairs:          []domains.FontPair{{ID: "serif", Name: "Serif", Heading: domains.FontFace{Family: "Playfair Display"}, Body: domains.FontFace{Family: "Lato"}}},
			DefaultColorScheme: "classic",
			DefaultFontPair:    "serif",
		},
		Sections: sections,
	})
	if err != nil {
		t.Fatalf("save template: %v", err)
	}
	return &fixture{p: p, user: user, template: details}
}

func (f *fixture) orders(t *testing.T, versionID uuid.UUID) map[string]int {
	t.Helper()
	secs, err := f.p.TemplateProvider.ListVersionSections(context.Background(), versionID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	out := make(map[string]int, len(secs))
	for _, s := range secs {
		out[s.SectionID] = s.Order
	}
	return out
}

func (f *fixture) microsite(t *testing.T) domains.SiteRef {
	t.Helper()
	ms, err := f.p.MicrositeProvider.CreateMicrosite(context.Background(), domains.MicrositeToSave{
		UserID:        f.user.ID,
		TemplateID:    f.template.Template.ID,
		VersionID:     f.template.Version.ID,
		Title:         "Mia & Leo",
		Slug:          "mia-leo-" + uuid.NewString()[:8],
		ColorSchemeID: "classic",
		FontPairID:    "serif",
		Settings:      domains.DefaultSettings(),
	})
	if err != nil {
		t.Fatalf("create microsite: %v", err)
	}
	return domains.SiteRef{Kind: domains.SiteKindMicrosite, ID: ms.ID, UserID: f.user.ID, Slug: ms.Slug}
}

func TestDeleteSectionKeepsOrderDense(t *testing.T) {
	f := newFixture(t, "hero", "story", "venue", "footer")
	ctx := context.Background()
	versionID := f.template.Version.ID

	if err := f.p.TemplateProvider.DeleteSection(ctx, versionID, "story"); err != nil {
		t.Fatalf("delete section: %v", err)
	}
	got := f.orders(t, versionID)
	want := map[string]int{"hero": 0, "venue": 1, "footer": 2}
	if len(got) != len(want) {
		t.Fatalf("orders = %v", got)
	}
	for id, order := range want {
		if got[id] != order {
			t.Errorf("%s order = %d, want %d (all: %v)", id, got[id], order, got)
		}
	}

	if err := f.p.TemplateProvider.DeleteSection(ctx, versionID, "story"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestReorderSectionsOnlyTouchesListedIDs(t *testing.T) {
	f := newFixture(t, "hero", "story", "venue")
	versionID := f.template.Version.ID

	if err := f.p.TemplateProvider.ReorderSections(context.Background(), versionID, []string{"venue", "hero"}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	got := f.orders(t, versionID)
	if got["venue"] != 0 || got["hero"] != 1 || got["story"] != 1 {
		t.Errorf("orders = %v, want venue=0 hero=1 story unchanged at 1", got)
	}
}

func TestCreateNewVersionCopiesAndRepoints(t *testing.T) {
	f := newFixture(t, "hero", "story")
	ctx := context.Background()
	tp := f.p.TemplateProvider
	oldVersion := f.template.Version

	next, err := tp.CreateNewVersion(ctx, f.template.Template.ID, "second pass")
	if err != nil {
		t.Fatalf("new version: %v", err)
	}
	if next.Version != 2 || next.ID == oldVersion.ID || next.Changelog != "second pass" {
		t.Errorf("next = %+v", next)
	}
	if next.DefaultColorScheme != "classic" || len(next.FontPairs) != 1 || next.FontPairs[0].Heading.Family != "Playfair Display" {
		t.Errorf("theme not copied: %+v", next)
	}

	tmpl, err := tp.GetTemplate(ctx, f.template.Template.ID)
	if err != nil {
		t.Fatal(err)
	}
	if tmpl.CurrentVersion != 2 || tmpl.CurrentVersionID == nil || *tmpl.CurrentVersionID != next.ID {
		t.Errorf("template still points at %v (v%d)", tmpl.CurrentVersionID, tmpl.CurrentVersion)
	}

	oldSecs, err := tp.ListVersionSections(ctx, oldVersion.ID)
	if err != nil {
		t.Fatal(err)
	}
	newSecs, err := tp.ListVersionSections(ctx, next.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(newSecs) != len(oldSecs) {
		t.Fatalf("copied %d sections, want %d", len(newSecs), len(oldSecs))
	}
	for i := range oldSecs {
		o, n := oldSecs[i], newSecs[i]
		if n.ID == o.ID || n.VersionID != next.ID {
			t.Errorf("section %s shares a row with the old version", n.SectionID)
		}
		if n.SectionID != o.SectionID || n.Order != o.Order || n.SampleValues["content"] != o.SampleValues["content"] || len(n.Fields) != 1 {
			t.Errorf("section copy differs: %+v vs %+v", n, o)
		}
	}

	name := "Our story"
	if _, err := tp.UpdateSection(ctx, next.ID, "story", domains.TemplateSectionUpdate{Name: &name}); err != nil {
		t.Fatalf("update copied section: %v", err)
	}
	oldSecs, _ = tp.ListVersionSections(ctx, oldVersion.ID)
	for _, s := range oldSecs {
		if s.SectionID == "story" && s.Name != "Story" {
			t.Errorf("editing version 2 changed version 1: %q", s.Name)
		}
	}

	versions, err := tp.ListVersions(ctx, f.template.Template.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 2 || versions[0].Version != 2 {
		t.Errorf("versions = %+v", versions)
	}
}

func TestSetHighlightCapHoldsUnderConcurrency(t *testing.T) {
	f := newFixture(t, "hero")
	ctx := context.Background()
	ref := f.microsite(t)
	const limit, n = 3, 8

	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		w, err := f.p.WishProvider.SaveWish(ctx, domains.WishToSave{Ref: ref, Name: "Guest", Message: "Congrats", Status: domains.WishStatusApproved})
		if err != nil {
			t.Fatalf("save wish: %v", err)
		}
		ids = append(ids, w.ID)
	}

	var (
		wg                sync.WaitGroup
		mu                sync.Mutex
		highlighted, full int
		unexpected        []error
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.p.WishProvider.SetHighlight(ctx, ref, id, true, limit)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				highlighted++
			case errors.Is(err, storage.ErrLimitReached):
				full++
			default:
				unexpected = append(unexpected, err)
			}
		}(id)
	}
	wg.Wait()

	if len(unexpected) > 0 {
		t.Fatalf("unexpected errors: %v", unexpected)
	}
	if highlighted != limit || full != n-limit {
		t.Errorf("highlighted=%d limited=%d, want %d and %d", highlighted, full, limit, n-limit)
	}

	wishes, _, err := f.p.WishProvider.ListWishes(ctx, ref, domains.WishFilter{Page: 1, Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	stored := 0
	for _, w := range wishes {
		if w.IsHighlighted {
			stored++
		}
	}
	if stored != limit {
		t.Errorf("%d wishes highlighted in the table, want %d", stored, limit)
	}
}

func TestUpsertMicrositeRsvpReportsUpdates(t *testing.T) {
	f := newFixture(t, "hero")
	ctx := context.Background()
	ref := f.microsite(t)

	in := domains.GuestToSave{Ref: ref, Name: "Ann", Email: "ann@example.com", Status: domains.GuestStatusAttending, NumberOfGuests: 2}
	first, err := f.p.GuestProvider.UpsertMicrositeRsvp(ctx, in)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.Updated {
		t.Error("first response reported as an update")
	}

	in.Status = domains.GuestStatusNotAttending
	in.NumberOfGuests = 1
	second, err := f.p.GuestProvider.UpsertMicrositeRsvp(ctx, in)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if !second.Updated || second.Guest.ID != first.Guest.ID {
		t.Errorf("second = %+v, want update of %s", second, first.Guest.ID)
	}
	if second.Guest.Status != domains.GuestStatusNotAttending || second.Guest.NumberOfGuests != 1 {
		t.Errorf("answer not replaced: %+v", second.Guest)
	}

	all, err := f.p.GuestProvider.AllGuests(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("%d guest rows, want 1", len(all))
	}
}

func TestSiteRsvpDuplicateEmail(t *testing.T) {
	f := newFixture(t, "hero")
	ctx := context.Background()

	site, err := f.p.SiteProvider.CreateSite(ctx, domains.SiteToSave{
		UserID:      f.user.ID,
		TemplateID:  f.template.Template.ID,
		VersionID:   f.template.Version.ID,
		Title:       "Our Day",
		Slug:        "our-day-" + uuid.NewString()[:8],
		ColorScheme: "classic",
		FontPair:    "serif",
		Settings:    domains.DefaultSettings(),
	})
	if err != nil {
		t.Fatalf("create site: %v", err)
	}
	ref := domains.SiteRef{Kind: domains.SiteKindSite, ID: site.ID, UserID: f.user.ID}

	in := domains.GuestToSave{Ref: ref, Name: "Ann", Email: "ann@example.com", Status: domains.GuestStatusAttending, NumberOfGuests: 1}
	if _, err := f.p.GuestProvider.InsertRsvp(ctx, in); err != nil {
		t.Fatalf("insert rsvp: %v", err)
	}
	if _, err := f.p.GuestProvider.InsertRsvp(ctx, in); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("duplicate insert = %v, want ErrConflict", err)
	}

	if _, err := f.p.SiteProvider.SetStatus(ctx, f.user.ID, site.ID, domains.MicrositeStatusPublished); err != nil {
		t.Fatalf("publish: %v", err)
	}
	svc := service.NewSiteService(f.p.SiteProvider, f.p.GuestProvider, service.PublicDeps{
		Templates: f.p.TemplateProvider,
		Wishes:    f.p.WishProvider,
		Stats:     f.p.StatsProvider,
		Owners:    f.p.AuthProvider,
		Renderer:  render.New(),
	})
	_, err = svc.SubmitRsvp(ctx, site.Slug, domains.RsvpSubmit{Name: "Ann", Email: "ANN@example.com"})
	if !errors.Is(err, service.ErrRsvpExists) {
		t.Errorf("SubmitRsvp = %v, want ErrRsvpExists", err)
	}
}

func TestDeleteTemplateStillReferenced(t *testing.T) {
	f := newFixture(t, "hero")
	f.microsite(t)

	err := f.p.TemplateProvider.DeleteTemplate(context.Background(), f.template.Template.ID)
	if !errors.Is(err, storage.ErrInUse) {
		t.Fatalf("delete = %v, want ErrInUse", err)
	}
	if _, err := f.p.TemplateProvider.GetTemplate(context.Background(), f.template.Template.ID); err != nil {
		t.Errorf("template gone after refused delete: %v", err)
	}
}
