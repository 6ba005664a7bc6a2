package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/storage"
)

var csvHeader = []string{
	"Name", "Email", "Phone", "Status", "Number of Guests", "Guest Names",
	"Meal Choice", "Dietary Restrictions", "Message", "Submitted At",
}

type GuestProvider interface {
	ListGuests(ctx context.Context, ref domains.SiteRef, f domains.GuestFilter) ([]domains.Guest, int, error)
	AllGuests(ctx context.Context, ref domains.SiteRef) ([]domains.Guest, error)
	GetGuest(ctx context.Context, ref domains.SiteRef, id uuid.UUID) (domains.Guest, error)
	UpdateGuestStatus(ctx context.Context, ref domains.SiteRef, id uuid.UUID, status domains.GuestStatus) (domains.Guest, error)
	DeleteGuest(ctx context.Context, ref domains.SiteRef, id uuid.UUID) error
}

// ScopeProvider finds the microsite or legacy site behind a site id.
type ScopeProvider interface {
	ResolveSite(ctx context.Context, id uuid.UUID) (domains.SiteRef, error)
	ResolvePublishedSite(ctx context.Context, kind domains.SiteKind, slug string) (domains.SiteRef, error)
}

type GuestService struct {
	provider GuestProvider
	scope    ScopeProvider
	stats    SiteStatsProvider
}

func NewGuestService(provider GuestProvider, scope ScopeProvider, stats SiteStatsProvider) *GuestService {
	return &GuestService{
		provider: provider,
		scope:    scope,
		stats:    stats,
	}
}

func (h *GuestService) ListGuests(ctx context.Context, userID, siteID uuid.UUID, f domains.GuestFilter) (domains.GuestList, error) {
	if f.Status != "" && !f.Status.Valid() {
		return domains.GuestList{}, invalid("invalid status %q", f.Status)
	}
	ref, err := resolveOwned(ctx, h.scope, userID, siteID)
	if err != nil {
		return domains.GuestList{}, err
	}
	f.Page, f.Limit = domains.NormalizePage(f.Page, f.Limit)
	items, total, err := h.provider.ListGuests(ctx, ref, f)
	if err != nil {
		slog.Error("List guests error", "err", err, "site_id", siteID)
		return domains.GuestList{}, err
	}
	summary, err := h.stats.SiteStats(ctx, ref)
	if err != nil {
		slog.Error("Guest summary error", "err", err, "site_id", siteID)
		return domains.GuestList{}, err
	}
	return domains.GuestList{Page: domains.NewPage(items, total, f.Page, f.Limit), Summary: summary}, nil
}

func (h *GuestService) GetGuest(ctx context.Context, userID, siteID, guestID uuid.UUID) (domains.Guest, error) {
	ref, err := resolveOwned(ctx, h.scope, userID, siteID)
	if err != nil {
		return domains.Guest{}, err
	}
	g, err := h.provider.GetGuest(ctx, ref, guestID)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Guest{}, ErrGuestNotFound
	}
	return g, err
}

func (h *GuestService) UpdateGuestStatus(ctx context.Context, userID, siteID, guestID uuid.UUID, status domains.GuestStatus) (domains.Guest, error) {
	if !status.Valid() {
		return domains.Guest{}, invalid("invalid status %q", status)
	}
	ref, err := resolveOwned(ctx, h.scope, userID, siteID)
	if err != nil {
		return domains.Guest{}, err
	}
	g, err := h.provider.UpdateGuestStatus(ctx, ref, guestID, status)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Guest{}, ErrGuestNotFound
	}
	if err != nil {
		slog.Error("Update guest status error", "err", err, "guest_id", guestID)
	}
	return g, err
}

func (h *GuestService) DeleteGuest(ctx context.Context, userID, siteID, guestID uuid.UUID) error {
	ref, err := resolveOwned(ctx, h.scope, userID, siteID)
	if err != nil {
		return err
	}
	err = h.provider.DeleteGuest(ctx, ref, guestID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrGuestNotFound
	}
	if err != nil {
		slog.Error("Delete guest error", "err", err, "guest_id", guestID)
	}
	return err
}

// ExportGuestsCSV writes every guest of the site. The returned name is a
// file name derived from the site slug.
func (h *GuestService) ExportGuestsCSV(ctx context.Context, userID, siteID uuid.UUID, w io.Writer) (string, error) {
	ref, err := resolveOwned(ctx, h.scope, userID, siteID)
	if err != nil {
		return "", err
	}
	guests, err := h.provider.AllGuests(ctx, ref)
	if err != nil {
		slog.Error("Export guests error", "err", err, "site_id", siteID)
		return "", err
	}
	if err := WriteGuestsCSV(w, guests); err != nil {
		return "", err
	}
	return "guests-" + ref.Slug + ".csv", nil
}

// WriteGuestsCSV quotes every value and doubles embedded quotes.
func WriteGuestsCSV(w io.Writer, guests []domains.Guest) error {
	bw := bufio.NewWriter(w)
	writeCSVRow(bw, csvHeader)
	for _, g := range guests {
		writeCSVRow(bw, []string{
			g.Name,
			g.Email,
			g.Phone,
			string(g.Status),
			strconv.Itoa(g.NumberOfGuests),
			strings.Join(g.GuestNames, "; "),
			g.MealChoice,
			g.DietaryRestrictions,
			g.Message,
			g.SubmittedAt.UTC().Format(time.RFC3339),
		})
	}
	return bw.Flush()
}

func writeCSVRow(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteString("\n")
}

// resolveOwned finds the site behind siteID. Sites of other users are
// reported as missing.
func resolveOwned(ctx context.Context, scope ScopeProvider, userID, siteID uuid.UUID) (domains.SiteRef, error) {
	ref, err := scope.ResolveSite(ctx, siteID)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.SiteRef{}, ErrSiteNotFound
	}
	if err != nil {
		slog.Error("Resolve site error", "err", err, "site_id", siteID)
		return domains.SiteRef{}, err
	}
	if ref.UserID != userID {
		return domains.SiteRef{}, ErrSiteNotFound
	}
	return ref, nil
}
