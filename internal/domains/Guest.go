package domains

import (
	"time"

	"github.com/google/uuid"
)

type GuestStatus string

const (
	GuestStatusPending      GuestStatus = "pending"
	GuestStatusAttending    GuestStatus = "attending"
	GuestStatusNotAttending GuestStatus = "not_attending"
	GuestStatusMaybe        GuestStatus = "maybe"
)

func (s GuestStatus) Valid() bool {
	switch s {
	case GuestStatusPending, GuestStatusAttending, GuestStatusNotAttending, GuestStatusMaybe:
		return true
	}
	return false
}

type Guest struct {
	ID                  uuid.UUID   `db:"id" json:"id"`
	SiteID              *uuid.UUID  `db:"site_id" json:"siteId,omitempty"`
	MicrositeID         *uuid.UUID  `db:"microsite_id" json:"micrositeId,omitempty"`
	Name                string      `db:"name" json:"name"`
	Email               string      `db:"email" json:"email"`
	Phone               string      `db:"phone" json:"phone"`
	Status              GuestStatus `db:"status" json:"status"`
	NumberOfGuests      int         `db:"number_of_guests" json:"numberOfGuests"`
	GuestNames          []string    `db:"guest_names" json:"guestNames"`
	MealChoice          string      `db:"meal_choice" json:"mealChoice"`
	DietaryRestrictions string      `db:"dietary_restrictions" json:"dietaryRestrictions"`
	Message             string      `db:"message" json:"message"`
	SubmittedAt         time.Time   `db:"submitted_at" json:"submittedAt"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updatedAt"`
}

type RsvpSubmit struct {
	Name                string      `json:"name"`
	Email               string      `json:"email"`
	Phone               string      `json:"phone,omitempty"`
	Status              GuestStatus `json:"status"`
	NumberOfGuests      int         `json:"numberOfGuests"`
	GuestNames          []string    `json:"guestNames,omitempty"`
	MealChoice          string      `json:"mealChoice,omitempty"`
	DietaryRestrictions string      `json:"dietaryRestrictions,omitempty"`
	Message             string      `json:"message,omitempty"`
}

type GuestToSave struct {
	Ref                 SiteRef
	Name                string
	Email               string
	Phone               string
	Status              GuestStatus
	NumberOfGuests      int
	GuestNames          []string
	MealChoice          string
	DietaryRestrictions string
	Message             string
}

type RsvpResult struct {
	Guest   Guest `json:"guest"`
	Updated bool  `json:"updated"`
}

type GuestStatusUpdate struct {
	Status GuestStatus `json:"status"`
}

type GuestFilter struct {
	Status GuestStatus
	Search string
	Page   int
	Limit  int
}

type GuestList struct {
	Page[Guest]
	Summary SiteStats `json:"summary"`
}
