package domains

import (
	"time"

	"github.com/google/uuid"
)

type TemplateStatus string

const (
	TemplateStatusDraft     TemplateStatus = "draft"
	TemplateStatusPublished TemplateStatus = "published"
	TemplateStatusArchived  TemplateStatus = "archived"
)

func (s TemplateStatus) Valid() bool {
	switch s {
	case TemplateStatusDraft, TemplateStatusPublished, TemplateStatusArchived:
		return true
	}
	return false
}

type Template struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	Slug             string         `db:"slug" json:"slug"`
	Name             string         `db:"name" json:"name"`
	Description      *string        `db:"description" json:"description,omitempty"`
	Category         string         `db:"category" json:"category"`
	ThumbnailURL     *string        `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	Status           TemplateStatus `db:"status" json:"status"`
	IsActive         bool           `db:"is_active" json:"isActive"`
	CurrentVersion   int            `db:"current_version" json:"currentVersion"`
	CurrentVersionID *uuid.UUID     `db:"current_version_id" json:"currentVersionId,omitempty"`
	UsageCount       int            `db:"usage_count" json:"usageCount"`
	CreatedBy        uuid.UUID      `db:"created_by" json:"createdBy"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

// ColorScheme is a named palette; every value is a CSS color token.
type ColorScheme struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Primary    string `json:"primary" yaml:"primary"`
	Secondary  string `json:"secondary" yaml:"secondary"`
	Accent     string `json:"accent" yaml:"accent"`
	Background string `json:"background" yaml:"background"`
	Surface    string `json:"surface" yaml:"surface"`
	Text       string `json:"text" yaml:"text"`
	TextMuted  string `json:"textMuted" yaml:"textMuted"`
}

type FontFace struct {
	Family  string `json:"family" yaml:"family"`
	Weights []int  `json:"weights,omitempty" yaml:"weights,omitempty"`
}

type FontPair struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Heading FontFace `json:"heading" yaml:"heading"`
	Body    FontFace `json:"body" yaml:"body"`
}

type TemplateVersion struct {
	ID                 uuid.UUID     `db:"id" json:"id"`
	TemplateID         uuid.UUID     `db:"template_id" json:"templateId"`
	Version            int           `db:"version" json:"version"`
	ColorSchemes       []ColorScheme `db:"color_schemes" json:"colorSchemes"`
	FontPairs          []FontPair    `db:"font_pairs" json:"fontPairs"`
	DefaultColorScheme string        `db:"default_color_scheme" json:"defaultColorScheme"`
	DefaultFontPair    string        `db:"default_font_pair" json:"defaultFontPair"`
	Changelog          string        `db:"changelog" json:"changelog"`
	CreatedAt          time.Time     `db:"created_at" json:"createdAt"`
}

func (v TemplateVersion) ColorScheme(id string) (ColorScheme, bool) {
	for _, cs := range v.ColorSchemes {
		if cs.ID == id {
			return cs, true
		}
	}
	return ColorScheme{}, false
}

func (v TemplateVersion) FontPair(id string) (FontPair, bool) {
	for _, fp := range v.FontPairs {
		if fp.ID == id {
			return fp, true
		}
	}
	return FontPair{}, false
}

// ResolveTheme picks the requested scheme and font pair, falling back to the
// version defaults and then to the first entry.
func (v TemplateVersion) ResolveTheme(colorSchemeID, fontPairID string) (ColorScheme, FontPair) {
	cs, ok := v.ColorScheme(colorSchemeID)
	if !ok {
		cs, ok = v.ColorScheme(v.DefaultColorScheme)
	}
	if !ok && len(v.ColorSchemes) > 0 {
		cs = v.ColorSchemes[0]
	}
	fp, ok := v.FontPair(fontPairID)
	if !ok {
		fp, ok = v.FontPair(v.DefaultFontPair)
	}
	if !ok && len(v.FontPairs) > 0 {
		fp = v.FontPairs[0]
	}
	return cs, fp
}

type TemplateSection struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	VersionID    uuid.UUID         `db:"version_id" json:"versionId"`
	SectionID    string            `db:"section_id" json:"sectionId"`
	Type         SectionType       `db:"type" json:"type"`
	Name         string            `db:"name" json:"name"`
	Description  string            `db:"description" json:"description,omitempty"`
	Fields       []FieldDefinition `db:"fields" json:"fields"`
	SampleValues map[string]any    `db:"sample_values" json:"sampleValues"`
	IsRequired   bool              `db:"is_required" json:"isRequired"`
	CanDisable   bool              `db:"can_disable" json:"canDisable"`
	Order        int               `db:"sort_order" json:"order"`
}

type TemplateDetails struct {
	Template Template          `json:"template"`
	Version  TemplateVersion   `json:"version"`
	Sections []TemplateSection `json:"sections"`
}

type TemplateSectionCreate struct {
	SectionID    string            `json:"sectionId" yaml:"sectionId"`
	Type         SectionType       `json:"type" yaml:"type"`
	Name         string            `json:"name" yaml:"name"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Fields       []FieldDefinition `json:"fields" yaml:"fields"`
	SampleValues map[string]any    `json:"sampleValues" yaml:"sampleValues"`
	IsRequired   bool              `json:"isRequired" yaml:"isRequired"`
	CanDisable   *bool             `json:"canDisable,omitempty" yaml:"canDisable,omitempty"`
}

type TemplateCreate struct {
	Slug               string                  `json:"slug,omitempty" yaml:"slug,omitempty"`
	Name               string                  `json:"name" yaml:"name"`
	Description        *string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Category           string                  `json:"category" yaml:"category"`
	ThumbnailURL       *string                 `json:"thumbnailUrl,omitempty" yaml:"thumbnailUrl,omitempty"`
	ColorSchemes       []ColorScheme           `json:"colorSchemes" yaml:"colorSchemes"`
	FontPairs          []FontPair              `json:"fontPairs" yaml:"fontPairs"`
	DefaultColorScheme string                  `json:"defaultColorScheme,omitempty" yaml:"defaultColorScheme,omitempty"`
	DefaultFontPair    string                  `json:"defaultFontPair,omitempty" yaml:"defaultFontPair,omitempty"`
	Changelog          string                  `json:"changelog,omitempty" yaml:"changelog,omitempty"`
	Sections           []TemplateSectionCreate `json:"sections" yaml:"sections"`
}

type TemplateToSave struct {
	Slug         string
	Name         string
	Description  *string
	Category     string
	ThumbnailURL *string
	Status       TemplateStatus
	CreatedBy    uuid.UUID
	Version      VersionToSave
	Sections     []TemplateSection
}

type VersionToSave struct {
	ColorSchemes       []ColorScheme
	FontPairs          []FontPair
	DefaultColorScheme string
	DefaultFontPair    string
	Changelog          string
}

type TemplateUpdate struct {
	Name         *string         `json:"name,omitempty"`
	Description  *string         `json:"description,omitempty"`
	Category     *string         `json:"category,omitempty"`
	ThumbnailURL *string         `json:"thumbnailUrl,omitempty"`
	Status       *TemplateStatus `json:"status,omitempty"`
}

func (u TemplateUpdate) HasChanges() bool {
	return u.Name != nil || u.Description != nil || u.Category != nil || u.ThumbnailURL != nil || u.Status != nil
}

type VersionUpdate struct {
	ColorSchemes       []ColorScheme `json:"colorSchemes,omitempty"`
	FontPairs          []FontPair    `json:"fontPairs,omitempty"`
	DefaultColorScheme *string       `json:"defaultColorScheme,omitempty"`
	DefaultFontPair    *string       `json:"defaultFontPair,omitempty"`
	Changelog          *string       `json:"changelog,omitempty"`
}

type TemplateSectionUpdate struct {
	Type         *SectionType      `json:"type,omitempty"`
	Name         *string           `json:"name,omitempty"`
	Description  *string           `json:"description,omitempty"`
	Fields       []FieldDefinition `json:"fields,omitempty"`
	SampleValues map[string]any    `json:"sampleValues,omitempty"`
	IsRequired   *bool             `json:"isRequired,omitempty"`
	CanDisable   *bool             `json:"canDisable,omitempty"`
}

type TemplateFilter struct {
	Status     TemplateStatus
	Category   string
	Search     string
	ActiveOnly bool
	Page       int
	Limit      int
}

// TemplateExport is the file format used by the catalog import/export commands.
type TemplateExport struct {
	TemplateCreate `yaml:",inline"`
	Version        int `json:"version,omitempty" yaml:"version,omitempty"`
}
