package domains

import (
	"time"

	"github.com/google/uuid"
)

// Site is the older site shape: sections live inside the row instead of a
// child table.
type Site struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	UserID      uuid.UUID         `db:"user_id" json:"userId"`
	TemplateID  uuid.UUID         `db:"template_id" json:"templateId"`
	VersionID   uuid.UUID         `db:"version_id" json:"versionId"`
	Title       string            `db:"title" json:"title"`
	Slug        string            `db:"slug" json:"slug"`
	Status      MicrositeStatus   `db:"status" json:"status"`
	ColorScheme string            `db:"color_scheme" json:"colorScheme"`
	FontPair    string            `db:"font_pair" json:"fontPair"`
	Sections    []SiteSection     `db:"sections" json:"sections"`
	Settings    MicrositeSettings `db:"settings" json:"settings"`
	ViewCount   int64             `db:"view_count" json:"viewCount"`
	PublishedAt *time.Time        `db:"published_at" json:"publishedAt,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updatedAt"`
}

type SiteSection struct {
	ID      string         `json:"id"`
	Type    SectionType    `json:"type"`
	Name    string         `json:"name"`
	Enabled bool           `json:"enabled"`
	Order   int            `json:"order"`
	Values  map[string]any `json:"values"`
}

type SiteCreate struct {
	TemplateID  uuid.UUID      `json:"templateId"`
	Title       string         `json:"title"`
	ColorScheme string         `json:"colorScheme,omitempty"`
	FontPair    string         `json:"fontPair,omitempty"`
	Settings    *SettingsPatch `json:"settings,omitempty"`
}

type SiteToSave struct {
	UserID      uuid.UUID
	TemplateID  uuid.UUID
	VersionID   uuid.UUID
	Title       string
	Slug        string
	ColorScheme string
	FontPair    string
	Sections    []SiteSection
	Settings    MicrositeSettings
}

type SiteUpdate struct {
	Title       *string        `json:"title,omitempty"`
	ColorScheme *string        `json:"colorScheme,omitempty"`
	FontPair    *string        `json:"fontPair,omitempty"`
	Sections    []SiteSection  `json:"sections,omitempty"`
	Settings    *SettingsPatch `json:"settings,omitempty"`
}

func (u SiteUpdate) HasChanges() bool {
	return u.Title != nil || u.ColorScheme != nil || u.FontPair != nil || u.Sections != nil || u.Settings != nil
}

type SiteToUpdate struct {
	Title       *string
	ColorScheme *string
	FontPair    *string
	Sections    []SiteSection
	Settings    *MicrositeSettings
}

type SiteDetails struct {
	Site    Site            `json:"site"`
	Version TemplateVersion `json:"version"`
	Stats   SiteStats       `json:"stats"`
}

// SiteKind tells which table a guest or wish scope id points at.
type SiteKind string

const (
	SiteKindMicrosite SiteKind = "microsite"
	SiteKindSite      SiteKind = "site"
)

// SiteRef is the owner-facing view of either a microsite or a legacy site,
// enough to scope guests and wishes.
type SiteRef struct {
	Kind     SiteKind
	ID       uuid.UUID
	UserID   uuid.UUID
	Title    string
	Slug     string
	Status   MicrositeStatus
	Settings MicrositeSettings
}
