package main

import (
	"bytes"
	"strings"
	"testing"

	"eventsite/internal/domains"
)

const gardenYAML = `slug: garden-wedding
name: Garden Wedding
category: wedding
colorSchemes:
  - id: classic
    name: Classic
    primary: "#333333"
    secondary: "#666666"
    accent: "#cc9966"
    background: "#ffffff"
    surface: "#f7f7f7"
    text: "#111111"
fontPairs:
  - id: serif
    name: Serif
    heading:
      family: Playfair Display
    body:
      family: Lato
sections:
  - sectionId: hero
    type: hero
    name: Hero
    isRequired: true
version: 2
`

func TestTemplateYAMLRoundTrip(t *testing.T) {
	in, err := decodeTemplate(strings.NewReader(gardenYAML))
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if in.Name != "Garden Wedding" || in.Version != 2 || len(in.Sections) != 1 {
		t.Fatalf("decoded = %+v", in)
	}
	if in.Sections[0].Type != domains.SectionHero || in.ColorSchemes[0].Background != "#ffffff" {
		t.Errorf("nested values = %+v", in)
	}

	var buf bytes.Buffer
	if err := encodeTemplate(&buf, in); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	again, err := decodeTemplate(&buf)
	if err != nil {
		t.Fatalf("failed to decode export: %v", err)
	}
	if again.Slug != in.Slug || len(again.FontPairs) != 1 || again.FontPairs[0].ID != "serif" {
		t.Errorf("round trip = %+v", again)
	}
}

func TestTemplateYAMLRejectsUnknownKeys(t *testing.T) {
	if _, err := decodeTemplate(strings.NewReader("name: X\ncolour: red\n")); err == nil {
		t.Error("unknown keys should be rejected")
	}
}
