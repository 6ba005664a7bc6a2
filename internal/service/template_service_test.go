package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/render"
	"eventsite/internal/storage"
)

func validTemplate() domains.TemplateCreate {
	return domains.TemplateCreate{
		Name:     "Rustic Barn",
		Category: "wedding",
		ColorSchemes: []domains.ColorScheme{
			{ID: "warm", Name: "Warm", Primary: "#8a5a44"},
			{ID: "cool", Name: "Cool", Primary: "#44608a"},
		},
		FontPairs: []domains.FontPair{
			{ID: "classic", Name: "Classic", Heading: domains.FontFace{Family: "Cormorant"}, Body: domains.FontFace{Family: "Lato"}},
		},
		Sections: []domains.TemplateSectionCreate{
			{
				SectionID: "hero", Type: domains.SectionHero, Name: "Hero", IsRequired: true,
				Fields: []domains.FieldDefinition{
					{Key: "brideName", Label: "Bride", Type: domains.FieldText},
					{Key: "groomName", Label: "Groom", Type: domains.FieldText},
				},
				SampleValues: map[string]any{"brideName": "Ana", "groomName": "Ben", "title": "{{brideName}} & {{groomName}}"},
			},
			{SectionID: "story", Type: domains.SectionStory, Name: "Story"},
			{
				SectionID: "faq", Type: domains.SectionFAQ, Name: "FAQ",
				Fields: []domains.FieldDefinition{
					{Key: "items", Label: "Questions", Type: domains.FieldRepeater, Fields: []domains.FieldDefinition{
						{Key: "question", Label: "Question", Type: domains.FieldText},
						{Key: "answer", Label: "Answer", Type: domains.FieldTextarea},
					}},
				},
			},
		},
	}
}

func TestCreateTemplateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domains.TemplateCreate)
		want   string
	}{
		{"missing name", func(c *domains.TemplateCreate) { c.Name = "  " }, "name is required"},
		{"missing category", func(c *domains.TemplateCreate) { c.Category = "" }, "category is required"},
		{"no color schemes", func(c *domains.TemplateCreate) { c.ColorSchemes = nil }, "at least one color scheme is required"},
		{"no font pairs", func(c *domains.TemplateCreate) { c.FontPairs = nil }, "at least one font pair is required"},
		{"duplicate scheme", func(c *domains.TemplateCreate) { c.ColorSchemes[1].ID = "warm" }, `duplicate color scheme id "warm"`},
		{"duplicate section", func(c *domains.TemplateCreate) { c.Sections[1].SectionID = "hero" }, `duplicate section id "hero"`},
		{"unknown section type", func(c *domains.TemplateCreate) { c.Sections[1].Type = "carousel" }, `unknown type "carousel"`},
		{"duplicate field key", func(c *domains.TemplateCreate) {
			c.Sections[0].Fields[1].Key = "brideName"
		}, `duplicate field key "brideName"`},
		{"bad repeater item", func(c *domains.TemplateCreate) {
			c.Sections[2].Fields[0].Fields[1].Type = "slider"
		}, `section "faq.items": field "answer" has unknown type "slider"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validTemplate()
			tt.mutate(&in)
			svc := NewTemplateService(newMockCatalog(), render.New())

			_, err := svc.CreateTemplate(context.Background(), uuid.New(), in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(verr.Msg, tt.want) {
				t.Errorf("message = %q, want it to contain %q", verr.Msg, tt.want)
			}
		})
	}
}

func TestCreateTemplateDefaults(t *testing.T) {
	catalog := newMockCatalog()
	svc := NewTemplateService(catalog, render.New())

	details, err := svc.CreateTemplate(context.Background(), uuid.New(), validTemplate())
	if err != nil {
		t.Fatalf("failed to create template: %v", err)
	}
	if details.Template.Slug != "rustic-barn" {
		t.Errorf("slug = %q", details.Template.Slug)
	}
	if details.Template.Status != domains.TemplateStatusDraft || details.Template.IsActive {
		t.Errorf("new template should be an inactive draft, got %s active=%v", details.Template.Status, details.Template.IsActive)
	}
	if details.Version.DefaultColorScheme != "warm" || details.Version.DefaultFontPair != "classic" {
		t.Errorf("defaults = %q/%q", details.Version.DefaultColorScheme, details.Version.DefaultFontPair)
	}
	for i, sec := range details.Sections {
		if sec.Order != i {
			t.Errorf("section %s order = %d, want %d", sec.SectionID, sec.Order, i)
		}
		if !sec.CanDisable {
			t.Errorf("section %s should be disableable by default", sec.SectionID)
		}
	}
}

func TestCreateTemplateRejectsUnknownDefault(t *testing.T) {
	in := validTemplate()
	in.DefaultFontPair = "missing"
	svc := NewTemplateService(newMockCatalog(), render.New())

	if _, err := svc.CreateTemplate(context.Background(), uuid.New(), in); !errors.Is(err, ErrInvalidFontPair) {
		t.Errorf("expected ErrInvalidFontPair, got %v", err)
	}
}

func TestCreateTemplateSlugTaken(t *testing.T) {
	svc := NewTemplateService(newMockCatalog(), render.New())
	ctx := context.Background()

	if _, err := svc.CreateTemplate(ctx, uuid.New(), validTemplate()); err != nil {
		t.Fatalf("failed to create template: %v", err)
	}
	if _, err := svc.CreateTemplate(ctx, uuid.New(), validTemplate()); !errors.Is(err, ErrTemplateSlugTaken) {
		t.Errorf("expected ErrTemplateSlugTaken, got %v", err)
	}
}

func TestUpdateVersionRefusedWhenInUse(t *testing.T) {
	catalog := newMockCatalog()
	tmpl := seedTemplate(catalog, weddingSections()...)
	catalog.usedVer[*tmpl.CurrentVersionID] = true
	svc := NewTemplateService(catalog, render.New())

	night := "night"
	_, err := svc.UpdateVersion(context.Background(), tmpl.ID, domains.VersionUpdate{DefaultColorScheme: &night})
	if !errors.Is(err, ErrVersionInUse) {
		t.Fatalf("expected ErrVersionInUse, got %v", err)
	}
	if _, err := svc.AddSection(context.Background(), tmpl.ID, domains.TemplateSectionCreate{SectionID: "faq", Type: domains.SectionFAQ}); !errors.Is(err, ErrVersionInUse) {
		t.Errorf("AddSection: expected ErrVersionInUse, got %v", err)
	}
}

func TestCreateNewVersionCopiesSections(t *testing.T) {
	catalog := newMockCatalog()
	tmpl := seedTemplate(catalog, weddingSections()...)
	catalog.usedVer[*tmpl.CurrentVersionID] = true
	svc := NewTemplateService(catalog, render.New())
	ctx := context.Background()

	v2, err := svc.CreateNewVersion(ctx, tmpl.ID, "new palette")
	if err != nil {
		t.Fatalf("failed to create version: %v", err)
	}
	if v2.Version != 2 || v2.Changelog != "new palette" {
		t.Errorf("version = %d %q", v2.Version, v2.Changelog)
	}
	details, err := svc.GetTemplate(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("failed to get template: %v", err)
	}
	if details.Version.ID != v2.ID || len(details.Sections) != 3 {
		t.Fatalf("current version not switched or sections not copied: %+v", details.Version)
	}

	night := "night"
	updated, err := svc.UpdateVersion(ctx, tmpl.ID, domains.VersionUpdate{DefaultColorScheme: &night})
	if err != nil {
		t.Fatalf("fresh version should be editable: %v", err)
	}
	if updated.DefaultColorScheme != "night" {
		t.Errorf("default scheme = %q", updated.DefaultColorScheme)
	}
}

func TestReorderSectionsPartialList(t *testing.T) {
	catalog := newMockCatalog()
	tmpl := seedTemplate(catalog, weddingSections()...)
	svc := NewTemplateService(catalog, render.New())

	sections, err := svc.ReorderSections(context.Background(), tmpl.ID, []string{"rsvp", "hero"})
	if err != nil {
		t.Fatalf("failed to reorder: %v", err)
	}
	got := map[string]int{}
	for _, s := range sections {
		got[s.SectionID] = s.Order
	}
	if got["rsvp"] != 0 || got["hero"] != 1 || got["story"] != 1 {
		t.Errorf("orders = %v", got)
	}

	if _, err := svc.ReorderSections(context.Background(), tmpl.ID, nil); err == nil {
		t.Error("empty list should be rejected")
	}
}

func TestDuplicateTemplate(t *testing.T) {
	catalog := newMockCatalog()
	tmpl := seedTemplate(catalog, weddingSections()...)
	svc := NewTemplateService(catalog, render.New())

	copied, err := svc.DuplicateTemplate(context.Background(), uuid.New(), tmpl.ID)
	if err != nil {
		t.Fatalf("failed to duplicate: %v", err)
	}
	if copied.Template.Name != "Garden Wedding (Copy)" {
		t.Errorf("name = %q", copied.Template.Name)
	}
	if !strings.HasPrefix(copied.Template.Slug, "garden-wedding-copy-") {
		t.Errorf("slug = %q", copied.Template.Slug)
	}
	if copied.Template.Status != domains.TemplateStatusDraft {
		t.Errorf("copy should be a draft, got %s", copied.Template.Status)
	}
	if len(copied.Sections) != 3 || copied.Sections[0].CanDisable {
		t.Errorf("sections not copied faithfully: %+v", copied.Sections)
	}
}

func TestDeleteTemplateInUse(t *testing.T) {
	catalog := newMockCatalog()
	tmpl := seedTemplate(catalog)
	catalog.usedTmpl[tmpl.ID] = true
	svc := NewTemplateService(catalog, render.New())

	if err := svc.DeleteTemplate(context.Background(), tmpl.ID); !errors.Is(err, ErrTemplateInUse) {
		t.Fatalf("expected ErrTemplateInUse, got %v", err)
	}
	delete(catalog.usedTmpl, tmpl.ID)
	if err := svc.DeleteTemplate(context.Background(), tmpl.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := svc.GetTemplate(context.Background(), tmpl.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

// lateReference fails the delete the way the foreign key does when a
// microsite appears between the usage check and the DELETE.
type lateReference struct {
	*mockCatalog
}

func (lateReference) DeleteTemplate(context.Context, uuid.UUID) error {
	return storage.ErrInUse
}

func TestDeleteTemplateReferencedAfterCheck(t *testing.T) {
	catalog := newMockCatalog()
	tmpl := seedTemplate(catalog)
	svc := NewTemplateService(lateReference{catalog}, render.New())

	if err := svc.DeleteTemplate(context.Background(), tmpl.ID); !errors.Is(err, ErrTemplateInUse) {
		t.Fatalf("expected ErrTemplateInUse, got %v", err)
	}
}

func TestPreviewTemplateUsesSampleValues(t *testing.T) {
	catalog := newMockCatalog()
	tmpl := seedTemplate(catalog, weddingSections()...)
	svc := NewTemplateService(catalog, render.New())

	html, err := svc.PreviewTemplate(context.Background(), tmpl.ID, "night", "", render.DeviceMobile)
	if err != nil {
		t.Fatalf("failed to preview: %v", err)
	}
	page := string(html)
	for _, want := range []string{"<title>Garden Wedding</title>", "Mia &amp; Leo", "We met in Lisbon.", "#111111"} {
		if !strings.Contains(page, want) {
			t.Errorf("preview missing %q", want)
		}
	}
}

func TestListPublicTemplatesOnlyPublished(t *testing.T) {
	catalog := newMockCatalog()
	seedTemplate(catalog)
	svc := NewTemplateService(catalog, render.New())
	if _, err := svc.CreateTemplate(context.Background(), uuid.New(), validTemplate()); err != nil {
		t.Fatalf("failed to create template: %v", err)
	}

	page, err := svc.ListPublicTemplates(context.Background(), domains.TemplateFilter{})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if page.Total != 1 || page.Items[0].Name != "Garden Wedding" {
		t.Errorf("public list = %+v", page.Items)
	}
	if page.Limit != domains.DefaultPageLimit || page.Page != 1 {
		t.Errorf("paging = %d/%d", page.Page, page.Limit)
	}
}
