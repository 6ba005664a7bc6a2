package domains

import (
	"time"

	"github.com/google/uuid"
)

type WishStatus string

const (
	WishStatusPending  WishStatus = "pending"
	WishStatusApproved WishStatus = "approved"
	WishStatusRejected WishStatus = "rejected"
)

func (s WishStatus) Valid() bool {
	switch s {
	case WishStatusPending, WishStatusApproved, WishStatusRejected:
		return true
	}
	return false
}

type Wish struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	SiteID        *uuid.UUID `db:"site_id" json:"siteId,omitempty"`
	MicrositeID   *uuid.UUID `db:"microsite_id" json:"micrositeId,omitempty"`
	Name          string     `db:"name" json:"name"`
	Message       string     `db:"message" json:"message"`
	Relationship  string     `db:"relationship" json:"relationship,omitempty"`
	Status        WishStatus `db:"status" json:"status"`
	IsHighlighted bool       `db:"is_highlighted" json:"isHighlighted"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

type WishSubmit struct {
	Name         string `json:"name"`
	Message      string `json:"message"`
	Relationship string `json:"relationship,omitempty"`
}

type WishToSave struct {
	Ref          SiteRef
	Name         string
	Message      string
	Relationship string
	Status       WishStatus
}

type WishStatusUpdate struct {
	Status WishStatus `json:"status"`
}

type WishFilter struct {
	Status WishStatus
	Page   int
	Limit  int
}
