// Package render turns section values into public HTML.
//
// Each section type has exactly one builder (sections.go) and one named
// template (templates.go); the admin preview and the public site both go
// through Renderer so field synonyms are resolved in one place.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"eventsite/internal/domains"
)

var tracer = otel.GetTracerProvider().Tracer("eventsite/internal/render")

type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceTablet  Device = "tablet"
	DeviceMobile  Device = "mobile"
)

func ParseDevice(s string) Device {
	switch Device(s) {
	case DeviceTablet, DeviceMobile:
		return Device(s)
	}
	return DeviceDesktop
}

type SectionInput struct {
	ID       string
	Type     domains.SectionType
	Name     string
	Values   map[string]any
	Fields   []domains.FieldDefinition
	Device   Device
	Data     map[string]any
	Settings *domains.MicrositeSettings
	Wishes   []domains.Wish
}

type PageSection struct {
	ID      string
	Type    domains.SectionType
	Name    string
	Values  map[string]any
	Fields  []domains.FieldDefinition
	Enabled bool
	Order   int
}

type PageInput struct {
	Title    string
	Theme    domains.Theme
	Device   Device
	Sections []PageSection
	Settings *domains.MicrositeSettings
	Wishes   []domains.Wish
	// Data feeds {{var}} interpolation in section text.
	Data map[string]any
}

type Renderer struct {
	tmpl     *template.Template
	page     *template.Template
	synonyms Synonyms
	now      func() time.Time
}

type Option func(*Renderer)

func WithSynonyms(s Synonyms) Option {
	return func(r *Renderer) { r.synonyms = s }
}

func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{
		tmpl:     template.Must(template.New("sections").Parse(sectionTemplates)),
		page:     template.Must(template.New("page").Parse(pageTemplate)),
		synonyms: DefaultSynonyms,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Section renders one section body wrapped in its <section> element.
func (r *Renderer) Section(ctx context.Context, in SectionInput) (template.HTML, error) {
	_, span := tracer.Start(ctx, "render.Section")
	defer span.End()
	span.SetAttributes(attribute.String("section.type", string(in.Type)))

	if in.Device == "" {
		in.Device = DeviceDesktop
	}
	v := values{m: in.Values, syn: r.synonyms, data: in.Data}

	name := string(in.Type)
	build, ok := builders[in.Type]
	if !ok || r.tmpl.Lookup(name) == nil {
		name, build = "generic", buildGeneric
	}

	var body bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&body, name, build(v, in, r.now())); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("render section %s: %w", in.Type, err)
	}

	var out bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&out, "wrap", struct {
		ID   string
		Type domains.SectionType
		Body template.HTML
	}{in.ID, in.Type, template.HTML(body.String())})
	if err != nil {
		return "", fmt.Errorf("wrap section %s: %w", in.Type, err)
	}
	return template.HTML(out.String()), nil
}

// Page renders a complete document with the enabled sections in order.
func (r *Renderer) Page(ctx context.Context, in PageInput) (template.HTML, error) {
	ctx, span := tracer.Start(ctx, "render.Page")
	defer span.End()

	sections := make([]PageSection, 0, len(in.Sections))
	for _, s := range in.Sections {
		if s.Enabled {
			sections = append(sections, s)
		}
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })
	span.SetAttributes(attribute.Int("sections", len(sections)))

	device := in.Device
	if device == "" {
		device = DeviceDesktop
	}

	bodies := make([]template.HTML, 0, len(sections))
	for _, s := range sections {
		html, err := r.Section(ctx, SectionInput{
			ID:       s.ID,
			Type:     s.Type,
			Name:     s.Name,
			Values:   s.Values,
			Fields:   s.Fields,
			Device:   device,
			Data:     in.Data,
			Settings: in.Settings,
			Wishes:   in.Wishes,
		})
		if err != nil {
			span.RecordError(err)
			return "", err
		}
		bodies = append(bodies, html)
	}

	var out bytes.Buffer
	err := r.page.Execute(&out, struct {
		Title    string
		CSS      template.CSS
		Device   Device
		Sections []template.HTML
	}{in.Title, ThemeCSS(in.Theme), device, bodies})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return template.HTML(out.String()), nil
}

var cssToken = regexp.MustCompile(`^[#a-zA-Z0-9 ,.%()-]+$`)

// ThemeCSS emits the custom properties for a theme. Values that do not look
// like plain color or font tokens are dropped.
func ThemeCSS(t domains.Theme) template.CSS {
	cs, fp := t.ColorScheme, t.FontPair
	props := [][2]string{
		{"--color-primary", cs.Primary},
		{"--color-secondary", cs.Secondary},
		{"--color-accent", cs.Accent},
		{"--color-background", cs.Background},
		{"--color-surface", cs.Surface},
		{"--color-text", cs.Text},
		{"--color-text-muted", cs.TextMuted},
		{"--font-heading", fp.Heading.Family},
		{"--font-body", fp.Body.Family},
	}
	var b strings.Builder
	for _, p := range props {
		if p[1] == "" || !cssToken.MatchString(p[1]) {
			continue
		}
		b.WriteString(p[0])
		b.WriteByte(':')
		b.WriteString(p[1])
		b.WriteByte(';')
	}
	return template.CSS(b.String())
}
