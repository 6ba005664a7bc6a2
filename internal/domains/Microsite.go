package domains

import (
	"time"

	"github.com/google/uuid"
)

type MicrositeStatus string

const (
	MicrositeStatusDraft     MicrositeStatus = "draft"
	MicrositeStatusPublished MicrositeStatus = "published"
	MicrositeStatusArchived  MicrositeStatus = "archived"
)

func (s MicrositeStatus) Valid() bool {
	switch s {
	case MicrositeStatusDraft, MicrositeStatusPublished, MicrositeStatusArchived:
		return true
	}
	return false
}

const DefaultMaxHighlightedWishes = 3

type MicrositeSettings struct {
	EnableRsvp           bool       `json:"enableRsvp"`
	RsvpDeadline         *time.Time `json:"rsvpDeadline,omitempty"`
	EnableWishes         bool       `json:"enableWishes"`
	RequireWishApproval  bool       `json:"requireWishApproval"`
	MaxHighlightedWishes int        `json:"maxHighlightedWishes"`
	MaxGuestsPerRsvp     int        `json:"maxGuestsPerRsvp,omitempty"`
	EventDate            *time.Time `json:"eventDate,omitempty"`
	Timezone             string     `json:"timezone"`
}

func DefaultSettings() MicrositeSettings {
	return MicrositeSettings{
		EnableRsvp:           true,
		EnableWishes:         true,
		MaxHighlightedWishes: DefaultMaxHighlightedWishes,
		Timezone:             "UTC",
	}
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	EnableRsvp           *bool      `json:"enableRsvp,omitempty"`
	RsvpDeadline         *time.Time `json:"rsvpDeadline,omitempty"`
	ClearRsvpDeadline    bool       `json:"clearRsvpDeadline,omitempty"`
	EnableWishes         *bool      `json:"enableWishes,omitempty"`
	RequireWishApproval  *bool      `json:"requireWishApproval,omitempty"`
	MaxHighlightedWishes *int       `json:"maxHighlightedWishes,omitempty"`
	MaxGuestsPerRsvp     *int       `json:"maxGuestsPerRsvp,omitempty"`
	EventDate            *time.Time `json:"eventDate,omitempty"`
	Timezone             *string    `json:"timezone,omitempty"`
}

func (s MicrositeSettings) Apply(p *SettingsPatch) MicrositeSettings {
	if p == nil {
		return s
	}
	if p.EnableRsvp != nil {
		s.EnableRsvp = *p.EnableRsvp
	}
	if p.ClearRsvpDeadline {
		s.RsvpDeadline = nil
	}
	if p.RsvpDeadline != nil {
		s.RsvpDeadline = p.RsvpDeadline
	}
	if p.EnableWishes != nil {
		s.EnableWishes = *p.EnableWishes
	}
	if p.RequireWishApproval != nil {
		s.RequireWishApproval = *p.RequireWishApproval
	}
	if p.MaxHighlightedWishes != nil {
		s.MaxHighlightedWishes = *p.MaxHighlightedWishes
	}
	if p.MaxGuestsPerRsvp != nil {
		s.MaxGuestsPerRsvp = *p.MaxGuestsPerRsvp
	}
	if p.EventDate != nil {
		s.EventDate = p.EventDate
	}
	if p.Timezone != nil {
		s.Timezone = *p.Timezone
	}
	return s
}

type Microsite struct {
	ID            uuid.UUID         `db:"id" json:"id"`
	UserID        uuid.UUID         `db:"user_id" json:"userId"`
	TemplateID    uuid.UUID         `db:"template_id" json:"templateId"`
	VersionID     uuid.UUID         `db:"version_id" json:"versionId"`
	Title         string            `db:"title" json:"title"`
	Slug          string            `db:"slug" json:"slug"`
	Status        MicrositeStatus   `db:"status" json:"status"`
	ColorSchemeID string            `db:"color_scheme_id" json:"colorSchemeId"`
	FontPairID    string            `db:"font_pair_id" json:"fontPairId"`
	Settings      MicrositeSettings `db:"settings" json:"settings"`
	ViewCount     int64             `db:"view_count" json:"viewCount"`
	PublishedAt   *time.Time        `db:"published_at" json:"publishedAt,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updatedAt"`
}

type MicrositeSection struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	MicrositeID uuid.UUID      `db:"microsite_id" json:"micrositeId"`
	SectionID   string         `db:"section_id" json:"sectionId"`
	Type        SectionType    `db:"type" json:"type"`
	Name        string         `db:"name" json:"name"`
	Values      map[string]any `db:"field_values" json:"values"`
	Enabled     bool           `db:"enabled" json:"enabled"`
	Order       int            `db:"sort_order" json:"order"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

type MicrositeCreate struct {
	TemplateID    uuid.UUID      `json:"templateId"`
	Title         string         `json:"title"`
	ColorSchemeID string         `json:"colorSchemeId,omitempty"`
	FontPairID    string         `json:"fontPairId,omitempty"`
	Settings      *SettingsPatch `json:"settings,omitempty"`
}

type MicrositeToSave struct {
	UserID        uuid.UUID
	TemplateID    uuid.UUID
	VersionID     uuid.UUID
	Title         string
	Slug          string
	ColorSchemeID string
	FontPairID    string
	Settings      MicrositeSettings
	Sections      []MicrositeSection
}

type MicrositeUpdate struct {
	Title         *string        `json:"title,omitempty"`
	ColorSchemeID *string        `json:"colorSchemeId,omitempty"`
	FontPairID    *string        `json:"fontPairId,omitempty"`
	Settings      *SettingsPatch `json:"settings,omitempty"`
}

func (u MicrositeUpdate) HasChanges() bool {
	return u.Title != nil || u.ColorSchemeID != nil || u.FontPairID != nil || u.Settings != nil
}

// MicrositeToUpdate carries the resolved changes; Settings is the merged
// result, not a patch.
type MicrositeToUpdate struct {
	Title         *string
	ColorSchemeID *string
	FontPairID    *string
	Settings      *MicrositeSettings
}

// SectionPatch is merged onto one section: Values key-wise, the rest when set.
type SectionPatch struct {
	Values  map[string]any `json:"values,omitempty"`
	Enabled *bool          `json:"enabled,omitempty"`
	Order   *int           `json:"order,omitempty"`
}

type ReorderRequest struct {
	OrderedIDs []string `json:"orderedIds"`
}

type MicrositeFilter struct {
	Status MicrositeStatus
	Page   int
	Limit  int
}

type MicrositeSummary struct {
	Microsite
	TemplateName  string `db:"template_name" json:"templateName"`
	GuestCount    int    `db:"guest_count" json:"guestCount"`
	AttendingSize int    `db:"attending_size" json:"attendingSize"`
	WishCount     int    `db:"wish_count" json:"wishCount"`
}

type SiteStats struct {
	GuestsTotal        int `db:"guests_total" json:"guestsTotal"`
	GuestsAttending    int `db:"guests_attending" json:"guestsAttending"`
	GuestsNotAttending int `db:"guests_not_attending" json:"guestsNotAttending"`
	GuestsMaybe        int `db:"guests_maybe" json:"guestsMaybe"`
	GuestsPending      int `db:"guests_pending" json:"guestsPending"`
	AttendingPartySize int `db:"attending_party_size" json:"attendingPartySize"`
	WishesTotal        int `db:"wishes_total" json:"wishesTotal"`
	WishesPending      int `db:"wishes_pending" json:"wishesPending"`
	WishesApproved     int `db:"wishes_approved" json:"wishesApproved"`
}

type MicrositeDetails struct {
	Microsite Microsite          `json:"microsite"`
	Sections  []MicrositeSection `json:"sections"`
	Template  Template           `json:"template"`
	Version   TemplateVersion    `json:"version"`
	Stats     SiteStats          `json:"stats"`
}

type Theme struct {
	ColorScheme ColorScheme `json:"colorScheme"`
	FontPair    FontPair    `json:"fontPair"`
}

type PublicSection struct {
	ID     string         `json:"id"`
	Type   SectionType    `json:"type"`
	Name   string         `json:"name"`
	Values map[string]any `json:"values"`
	Order  int            `json:"order"`
}

type PublicSite struct {
	ID       uuid.UUID         `json:"id"`
	Title    string            `json:"title"`
	Slug     string            `json:"slug"`
	Theme    Theme             `json:"theme"`
	Settings MicrositeSettings `json:"settings"`
	Sections []PublicSection   `json:"sections"`
	Wishes   []Wish            `json:"wishes,omitempty"`
}
