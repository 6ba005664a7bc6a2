package httptransport

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/httpx"
)

type WishHandlers struct {
	service WishServices
}
type WishServices interface {
	ListWishes(ctx context.Context, userID, siteID uuid.UUID, f domains.WishFilter) (domains.Page[domains.Wish], error)
	ModerateWish(ctx context.Context, userID, siteID, wishID uuid.UUID, status domains.WishStatus) (domains.Wish, error)
	ToggleHighlight(ctx context.Context, userID, siteID, wishID uuid.UUID) (domains.Wish, error)
	DeleteWish(ctx context.Context, userID, siteID, wishID uuid.UUID) error
	ListPublicWishes(ctx context.Context, kind domains.SiteKind, slug string, page, limit int) (domains.Page[domains.Wish], error)
}

func NewWishHandlers(service WishServices) *WishHandlers {
	return &WishHandlers{
		service: service,
	}
}

func (h *WishHandlers) ListWishes(w http.ResponseWriter, r *http.Request) {
	userID, siteID, ok := owned(w, r, "siteId")
	if !ok {
		return
	}
	page, err := h.service.ListWishes(r.Context(), userID, siteID, domains.WishFilter{
		Status: domains.WishStatus(r.URL.Query().Get("status")),
		Page:   httpx.QueryInt(r, "page", 1),
		Limit:  httpx.QueryInt(r, "limit", domains.DefaultPageLimit),
	})
	if err != nil {
		writeError(w, err, "ListWishes")
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *WishHandlers) wishPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, uuid.UUID, bool) {
	userID, siteID, ok := owned(w, r, "siteId")
	if !ok {
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	wishID, ok := httpx.PathUUID(w, r, "wishId")
	return userID, siteID, wishID, ok
}

func (h *WishHandlers) Moderate(w http.ResponseWriter, r *http.Request) {
	userID, siteID, wishID, ok := h.wishPath(w, r)
	if !ok {
		return
	}
	req, err := httpx.ReadBody[domains.WishStatusUpdate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	wish, err := h.service.ModerateWish(r.Context(), userID, siteID, wishID, req.Status)
	if err != nil {
		writeError(w, err, "ModerateWish")
		return
	}
	httpx.JSON(w, http.StatusOK, wish)
}

func (h *WishHandlers) ToggleHighlight(w http.ResponseWriter, r *http.Request) {
	userID, siteID, wishID, ok := h.wishPath(w, r)
	if !ok {
		return
	}
	wish, err := h.service.ToggleHighlight(r.Context(), userID, siteID, wishID)
	if err != nil {
		writeError(w, err, "ToggleHighlight")
		return
	}
	httpx.JSON(w, http.StatusOK, wish)
}

func (h *WishHandlers) DeleteWish(w http.ResponseWriter, r *http.Request) {
	userID, siteID, wishID, ok := h.wishPath(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteWish(r.Context(), userID, siteID, wishID); err != nil {
		writeError(w, err, "DeleteWish")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PublicWishes serves the approved wishes of a published microsite or site.
func (h *WishHandlers) PublicWishes(kind domains.SiteKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.service.ListPublicWishes(r.Context(), kind, httpx.PathString(r, "slug"),
			httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "limit", domains.DefaultPageLimit))
		if err != nil {
			writeError(w, err, "ListPublicWishes")
			return
		}
		httpx.JSON(w, http.StatusOK, page)
	}
}
