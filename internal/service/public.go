package service

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/metrics"
	"eventsite/internal/notify"
)

const (
	maxWishMessage  = 2000
	maxRsvpMessage  = 2000
	noticeTimeout   = 10 * time.Second
	publicWishLimit = 50
)

type OwnerLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (domains.User, error)
}

type WishSaver interface {
	SaveWish(ctx context.Context, w domains.WishToSave) (domains.Wish, error)
	ListApproved(ctx context.Context, ref domains.SiteRef, page, limit int) ([]domains.Wish, int, error)
}

// guestbook holds what the public RSVP and wish paths of microsites and
// legacy sites share.
type guestbook struct {
	wishes   WishSaver
	owners   OwnerLookup
	notifier notify.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func (g guestbook) submitWish(ctx context.Context, ref domains.SiteRef, in domains.WishSubmit) (domains.Wish, error) {
	if !ref.Settings.EnableWishes {
		return domains.Wish{}, ErrWishesDisabled
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Message = strings.TrimSpace(in.Message)
	if in.Name == "" || in.Message == "" {
		return domains.Wish{}, invalid("name and message are required")
	}
	if len(in.Message) > maxWishMessage {
		return domains.Wish{}, invalid("message is too long (max %d characters)", maxWishMessage)
	}
	status := domains.WishStatusApproved
	if ref.Settings.RequireWishApproval {
		status = domains.WishStatusPending
	}
	wish, err := g.wishes.SaveWish(ctx, domains.WishToSave{
		Ref:          ref,
		Name:         in.Name,
		Message:      in.Message,
		Relationship: strings.TrimSpace(in.Relationship),
		Status:       status,
	})
	if err != nil {
		slog.Error("Save wish error", "err", err, "site_id", ref.ID)
		return domains.Wish{}, err
	}
	g.metrics.WishSubmitted(string(status))
	g.notifyWish(ctx, ref, wish)
	return wish, nil
}

func (g guestbook) approvedWishes(ctx context.Context, ref domains.SiteRef) []domains.Wish {
	if !ref.Settings.EnableWishes {
		return nil
	}
	wishes, _, err := g.wishes.ListApproved(ctx, ref, 1, publicWishLimit)
	if err != nil {
		slog.Warn("List approved wishes error", "err", err, "site_id", ref.ID)
		return nil
	}
	return wishes
}

// checkRsvpOpen enforces the enableRsvp toggle and the deadline.
func (g guestbook) checkRsvpOpen(settings domains.MicrositeSettings) error {
	if !settings.EnableRsvp {
		return ErrRsvpDisabled
	}
	if settings.RsvpDeadline != nil && g.now().After(*settings.RsvpDeadline) {
		return ErrRsvpDeadlinePassed
	}
	return nil
}

// rsvpToSave validates a public RSVP and normalizes the email to lower case.
func rsvpToSave(ref domains.SiteRef, in domains.RsvpSubmit) (domains.GuestToSave, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" {
		return domains.GuestToSave{}, invalid("name and email are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domains.GuestToSave{}, invalid("invalid email address")
	}
	if in.Status == "" {
		in.Status = domains.GuestStatusAttending
	}
	if !in.Status.Valid() {
		return domains.GuestToSave{}, invalid("invalid status %q", in.Status)
	}
	if in.NumberOfGuests < 1 {
		in.NumberOfGuests = 1
	}
	if limit := ref.Settings.MaxGuestsPerRsvp; limit > 0 && in.NumberOfGuests > limit {
		return domains.GuestToSave{}, invalid("a maximum of %d guests per RSVP is allowed", limit)
	}
	if len(in.Message) > maxRsvpMessage {
		return domains.GuestToSave{}, invalid("message is too long (max %d characters)", maxRsvpMessage)
	}
	names := make([]string, 0, len(in.GuestNames))
	for _, n := range in.GuestNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return domains.GuestToSave{
		Ref:                 ref,
		Name:                in.Name,
		Email:               in.Email,
		Phone:               strings.TrimSpace(in.Phone),
		Status:              in.Status,
		NumberOfGuests:      in.NumberOfGuests,
		GuestNames:          names,
		MealChoice:          strings.TrimSpace(in.MealChoice),
		DietaryRestrictions: strings.TrimSpace(in.DietaryRestrictions),
		Message:             strings.TrimSpace(in.Message),
	}, nil
}

// notifyRsvp mails the owner. Failures are logged and never reach the guest.
func (g guestbook) notifyRsvp(ctx context.Context, ref domains.SiteRef, guest domains.Guest, updated bool) {
	owner, ok := g.owner(ctx, ref)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), noticeTimeout)
	defer cancel()
	if err := g.notifier.NotifyRsvp(ctx, notify.RsvpNotice{
		OwnerEmail: owner.Email,
		SiteTitle:  ref.Title,
		Guest:      guest,
		Updated:    updated,
	}); err != nil {
		slog.Warn("rsvp notification failed", "err", err, "site_id", ref.ID)
	}
}

func (g guestbook) notifyWish(ctx context.Context, ref domains.SiteRef, wish domains.Wish) {
	owner, ok := g.owner(ctx, ref)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), noticeTimeout)
	defer cancel()
	if err := g.notifier.NotifyWish(ctx, notify.WishNotice{
		OwnerEmail: owner.Email,
		SiteTitle:  ref.Title,
		Wish:       wish,
	}); err != nil {
		slog.Warn("wish notification failed", "err", err, "site_id", ref.ID)
	}
}

func (g guestbook) owner(ctx context.Context, ref domains.SiteRef) (domains.User, bool) {
	if g.notifier == nil || g.owners == nil {
		return domains.User{}, false
	}
	if _, nop := g.notifier.(notify.Nop); nop {
		return domains.User{}, false
	}
	owner, err := g.owners.GetUserByID(ctx, ref.UserID)
	if err != nil {
		slog.Warn("owner lookup failed", "err", err, "user_id", ref.UserID)
		return domains.User{}, false
	}
	return owner, true
}
