package render

import (
	"context"
	"strings"
	"testing"
	"time"

	"eventsite/internal/domains"
)

func fixedClock() time.Time {
	return time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
}

func TestEverySectionTypeHasBuilderAndTemplate(t *testing.T) {
	r := New()
	for _, st := range domains.SectionTypes() {
		if _, ok := builders[st]; !ok {
			t.Errorf("no builder for %q", st)
		}
		if r.tmpl.Lookup(string(st)) == nil {
			t.Errorf("no template for %q", st)
		}
	}
}

func TestHeroUsesCelebrantSynonym(t *testing.T) {
	r := New(WithClock(fixedClock))
	out, err := r.Section(context.Background(), SectionInput{
		Type:   domains.SectionHero,
		Values: map[string]any{"name": "Ana", "title": "Turning {{age}}"},
		Data:   map[string]any{"age": float64(30)},
	})
	if err != nil {
		t.Fatalf("Section: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `<p class="hero-name">Ana</p>`) {
		t.Errorf("celebrant name missing: %s", html)
	}
	if !strings.Contains(html, "Turning 30") {
		t.Errorf("title not interpolated: %s", html)
	}
}

func TestBrideAndGroomPreferredOverCelebrant(t *testing.T) {
	r := New()
	out, err := r.Section(context.Background(), SectionInput{
		Type:   domains.SectionHero,
		Values: map[string]any{"bride": "Mia", "groomName": "Leo", "name": "ignored"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "ignored") {
		t.Errorf("celebrant should not render when couple names are set: %s", out)
	}
	if !strings.Contains(string(out), "Mia") || !strings.Contains(string(out), "Leo") {
		t.Errorf("couple names missing: %s", out)
	}
}

func TestValuesAreEscaped(t *testing.T) {
	r := New()
	out, err := r.Section(context.Background(), SectionInput{
		Type:   domains.SectionStory,
		Values: map[string]any{"content": `<script>alert(1)</script>`},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Errorf("script tag not escaped: %s", out)
	}
}

func TestUnknownTypeFallsBackToGeneric(t *testing.T) {
	r := New()
	out, err := r.Section(context.Background(), SectionInput{
		Type:   "photo_booth",
		Name:   "Photo Booth",
		Values: map[string]any{"hours": "8pm"},
		Fields: []domains.FieldDefinition{{Key: "hours", Label: "Open"}, {Key: "empty"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)
	for _, want := range []string{"<h2>Photo Booth</h2>", "<dt>Open</dt><dd>8pm</dd>", "section-photo_booth"} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
	if strings.Contains(html, "empty") {
		t.Errorf("empty field rendered: %s", html)
	}
}

func TestCountdown(t *testing.T) {
	r := New(WithClock(fixedClock))
	tests := []struct {
		name string
		date any
		want string
	}{
		{"future", "2030-01-03T18:00:00Z", "<span>2</span> days <span>6</span> hours"},
		{"past", "2029-12-31", "The day is here!"},
		{"missing", nil, "Date to be announced"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vals := map[string]any{}
			if tc.date != nil {
				vals["eventDate"] = tc.date
			}
			out, err := r.Section(context.Background(), SectionInput{Type: domains.SectionCountdown, Values: vals})
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(out), tc.want) {
				t.Errorf("want %q in %s", tc.want, out)
			}
		})
	}
}

func TestGalleryColumnsFollowDevice(t *testing.T) {
	r := New()
	for device, want := range map[Device]string{DeviceMobile: "cols-1", DeviceTablet: "cols-2", DeviceDesktop: "cols-3"} {
		out, err := r.Section(context.Background(), SectionInput{
			Type:   domains.SectionGallery,
			Device: device,
			Values: map[string]any{"photos": []any{"/a.jpg", map[string]any{"url": "/b.jpg"}}},
		})
		if err != nil {
			t.Fatal(err)
		}
		html := string(out)
		if !strings.Contains(html, want) {
			t.Errorf("%s: want %s in %s", device, want, html)
		}
		if !strings.Contains(html, `src="/b.jpg"`) {
			t.Errorf("%s: map image not rendered: %s", device, html)
		}
	}
}

func TestRsvpClosedAfterDeadline(t *testing.T) {
	r := New(WithClock(fixedClock))
	deadline := time.Date(2029, 12, 1, 0, 0, 0, 0, time.UTC)
	settings := domains.DefaultSettings()
	settings.RsvpDeadline = &deadline

	out, err := r.Section(context.Background(), SectionInput{Type: domains.SectionRsvp, Settings: &settings})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "RSVP is closed.") {
		t.Errorf("expected closed form: %s", out)
	}
}

func TestPageSkipsDisabledAndSortsByOrder(t *testing.T) {
	r := New()
	out, err := r.Page(context.Background(), PageInput{
		Title: "Ana & Leo",
		Theme: domains.Theme{ColorScheme: domains.ColorScheme{Primary: "#aa0000", Text: "red;} body{display:none"}},
		Sections: []PageSection{
			{ID: "footer", Type: domains.SectionFooter, Enabled: true, Order: 3, Values: map[string]any{"message": "Bye"}},
			{ID: "hidden", Type: domains.SectionStory, Enabled: false, Order: 1, Values: map[string]any{"content": "secret"}},
			{ID: "hero", Type: domains.SectionHero, Enabled: true, Order: 0, Values: map[string]any{"title": "Hello"}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)
	if strings.Contains(html, "secret") {
		t.Error("disabled section rendered")
	}
	hero, footer := strings.Index(html, `data-section="hero"`), strings.Index(html, `data-section="footer"`)
	if hero < 0 || footer < 0 || hero > footer {
		t.Errorf("sections out of order: hero=%d footer=%d", hero, footer)
	}
	if !strings.Contains(html, "--color-primary:#aa0000;") {
		t.Errorf("theme css missing: %s", html)
	}
	if strings.Contains(html, "display:none") {
		t.Error("unsafe css value passed through")
	}
	if !strings.Contains(html, "<title>Ana &amp; Leo</title>") {
		t.Errorf("title not escaped: %s", html)
	}
}

func TestParseDevice(t *testing.T) {
	if ParseDevice("mobile") != DeviceMobile || ParseDevice("tv") != DeviceDesktop || ParseDevice("") != DeviceDesktop {
		t.Error("unexpected device parsing")
	}
}

func TestCustomSynonyms(t *testing.T) {
	syn := Synonyms{"celebrantName": {"honoree"}}
	r := New(WithClock(fixedClock), WithSynonyms(syn))
	out, err := r.Section(context.Background(), SectionInput{
		Type:   domains.SectionHero,
		Values: map[string]any{"honoree": "Ana", "name": "Ignored"},
	})
	if err != nil {
		t.Fatalf("Section: %v", err)
	}
	if !strings.Contains(string(out), `<p class="hero-name">Ana</p>`) {
		t.Errorf("custom synonym not used: %s", out)
	}
}
