package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/storage"
)

type WishProvider interface {
	ListWishes(ctx context.Context, ref domains.SiteRef, f domains.WishFilter) ([]domains.Wish, int, error)
	ListApproved(ctx context.Context, ref domains.SiteRef, page, limit int) ([]domains.Wish, int, error)
	GetWish(ctx context.Context, ref domains.SiteRef, id uuid.UUID) (domains.Wish, error)
	UpdateWishStatus(ctx context.Context, ref domains.SiteRef, id uuid.UUID, status domains.WishStatus) (domains.Wish, error)
	SetHighlight(ctx context.Context, ref domains.SiteRef, id uuid.UUID, on bool, limit int) (domains.Wish, error)
	DeleteWish(ctx context.Context, ref domains.SiteRef, id uuid.UUID) error
}

type WishService struct {
	provider WishProvider
	scope    ScopeProvider
}

func NewWishService(provider WishProvider, scope ScopeProvider) *WishService {
	return &WishService{
		provider: provider,
		scope:    scope,
	}
}

func (h *WishService) ListWishes(ctx context.Context, userID, siteID uuid.UUID, f domains.WishFilter) (domains.Page[domains.Wish], error) {
	if f.Status != "" && !f.Status.Valid() {
		return domains.Page[domains.Wish]{}, invalid("invalid status %q", f.Status)
	}
	ref, err := resolveOwned(ctx, h.scope, userID, siteID)
	if err != nil {
		return domains.Page[domains.Wish]{}, err
	}
	f.Page, f.Limit = domains.NormalizePage(f.Page, f.Limit)
	items, total, err := h.provider.ListWishes(ctx, ref, f)
	if err != nil {
		slog.Error("List wishes error", "err", err, "site_id", siteID)
		return domains.Page[domains.Wish]{}, err
	}
	return domains.NewPage(items, total, f.Page, f.Limit), nil
}

func (h *WishService) ModerateWish(ctx context.Context, userID, siteID, wishID uuid.UUID, status domains.WishStatus) (domains.Wish, error) {
	if !status.Valid() {
		return domains.Wish{}, invalid("invalid status %q", status)
	}
	ref, err := resolveOwned(ctx, h.scope, userID, siteID)
	if err != nil {
		return domains.Wish{}, err
	}
	w, err := h.provider.UpdateWishStatus(ctx, ref, wishID, status)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Wish{}, ErrWishNotFound
	}
	if err != nil {
		slog.Error("Moderate wish error", "err", err, "wish_id", wishID)
	}
	return w, err
}

// ToggleHighlight flips the highlight flag. Switching it off always works;
// switching it on is capped by the site's maxHighlightedWishes.
func (h *WishService) ToggleHighlight(ctx context.Context, userID, siteID, wishID uuid.UUID) (domains.Wish, error) {
	ref, err := resolveOwned(ctx, h.scope, userID, siteID)
	if err != nil {
		return domains.Wish{}, err
	}
	current, err := h.provider.GetWish(ctx, ref, wishID)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Wish{}, ErrWishNotFound
	}
	if err != nil {
		return domains.Wish{}, err
	}

	limit := ref.Settings.MaxHighlightedWishes
	w, err := h.provider.SetHighlight(ctx, ref, wishID, !current.IsHighlighted, limit)
	switch {
	case errors.Is(err, storage.ErrLimitReached):
		return domains.Wish{}, &HighlightLimitError{Max: limit}
	case errors.Is(err, storage.ErrNotFound):
		return domains.Wish{}, ErrWishNotFound
	case err != nil:
		slog.Error("Toggle highlight error", "err", err, "wish_id", wishID)
		return domains.Wish{}, err
	}
	return w, nil
}

func (h *WishService) DeleteWish(ctx context.Context, userID, siteID, wishID uuid.UUID) error {
	ref, err := resolveOwned(ctx, h.scope, userID, siteID)
	if err != nil {
		return err
	}
	err = h.provider.DeleteWish(ctx, ref, wishID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrWishNotFound
	}
	if err != nil {
		slog.Error("Delete wish error", "err", err, "wish_id", wishID)
	}
	return err
}

// ListPublicWishes pages through approved wishes, highlighted first.
func (h *WishService) ListPublicWishes(ctx context.Context, kind domains.SiteKind, slug string, page, limit int) (domains.Page[domains.Wish], error) {
	ref, err := h.scope.ResolvePublishedSite(ctx, kind, slug)
	if errors.Is(err, storage.ErrNotFound) {
		return domains.Page[domains.Wish]{}, ErrSiteNotPublished
	}
	if err != nil {
		return domains.Page[domains.Wish]{}, err
	}
	page, limit = domains.NormalizePage(page, limit)
	if !ref.Settings.EnableWishes {
		return domains.NewPage[domains.Wish](nil, 0, page, limit), nil
	}
	items, total, err := h.provider.ListApproved(ctx, ref, page, limit)
	if err != nil {
		slog.Error("List public wishes error", "err", err, "slug", slug)
		return domains.Page[domains.Wish]{}, err
	}
	return domains.NewPage(items, total, page, limit), nil
}
