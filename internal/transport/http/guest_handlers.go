package httptransport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/httpx"
)

type GuestHandlers struct {
	service GuestServices
}
type GuestServices interface {
	ListGuests(ctx context.Context, userID, siteID uuid.UUID, f domains.GuestFilter) (domains.GuestList, error)
	GetGuest(ctx context.Context, userID, siteID, guestID uuid.UUID) (domains.Guest, error)
	UpdateGuestStatus(ctx context.Context, userID, siteID, guestID uuid.UUID, status domains.GuestStatus) (domains.Guest, error)
	DeleteGuest(ctx context.Context, userID, siteID, guestID uuid.UUID) error
	ExportGuestsCSV(ctx context.Context, userID, siteID uuid.UUID, w io.Writer) (string, error)
}

func NewGuestHandlers(service GuestServices) *GuestHandlers {
	return &GuestHandlers{
		service: service,
	}
}

func (h *GuestHandlers) ListGuests(w http.ResponseWriter, r *http.Request) {
	userID, siteID, ok := owned(w, r, "siteId")
	if !ok {
		return
	}
	q := r.URL.Query()
	list, err := h.service.ListGuests(r.Context(), userID, siteID, domains.GuestFilter{
		Status: domains.GuestStatus(q.Get("status")),
		Search: q.Get("search"),
		Page:   httpx.QueryInt(r, "page", 1),
		Limit:  httpx.QueryInt(r, "limit", domains.DefaultPageLimit),
	})
	if err != nil {
		writeError(w, err, "ListGuests")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *GuestHandlers) ExportGuests(w http.ResponseWriter, r *http.Request) {
	userID, siteID, ok := owned(w, r, "siteId")
	if !ok {
		return
	}
	var buf bytes.Buffer
	filename, err := h.service.ExportGuestsCSV(r.Context(), userID, siteID, &buf)
	if err != nil {
		writeError(w, err, "ExportGuestsCSV")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *GuestHandlers) guestPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, uuid.UUID, bool) {
	userID, siteID, ok := owned(w, r, "siteId")
	if !ok {
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	guestID, ok := httpx.PathUUID(w, r, "guestId")
	return userID, siteID, guestID, ok
}

func (h *GuestHandlers) GetGuest(w http.ResponseWriter, r *http.Request) {
	userID, siteID, guestID, ok := h.guestPath(w, r)
	if !ok {
		return
	}
	g, err := h.service.GetGuest(r.Context(), userID, siteID, guestID)
	if err != nil {
		writeError(w, err, "GetGuest")
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *GuestHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, siteID, guestID, ok := h.guestPath(w, r)
	if !ok {
		return
	}
	req, err := httpx.ReadBody[domains.GuestStatusUpdate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	g, err := h.service.UpdateGuestStatus(r.Context(), userID, siteID, guestID, req.Status)
	if err != nil {
		writeError(w, err, "UpdateGuestStatus")
		return
	}
	httpx.JSON(w, http.StatusOK, g)
}

func (h *GuestHandlers) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	userID, siteID, guestID, ok := h.guestPath(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteGuest(r.Context(), userID, siteID, guestID); err != nil {
		writeError(w, err, "DeleteGuest")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
