package httptransport

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"eventsite/internal/httpx"
	"eventsite/internal/service"
)

var badRequest = []error{
	service.ErrRsvpExists,
	service.ErrHighlightLimit,
	service.ErrInvalidColorScheme,
	service.ErrInvalidFontPair,
	service.ErrSectionNotDisabled,
	service.ErrRsvpDisabled,
	service.ErrRsvpDeadlinePassed,
	service.ErrWishesDisabled,
	service.ErrTemplateInactive,
	service.ErrUnsupportedMediaType,
}

var notFoundErrs = []error{
	service.ErrUserNotFound,
	service.ErrTemplateNotFound,
	service.ErrSectionNotFound,
	service.ErrSiteNotFound,
	service.ErrSiteNotPublished,
	service.ErrRsvpNotFound,
	service.ErrGuestNotFound,
	service.ErrWishNotFound,
	service.ErrMediaNotFound,
}

var conflict = []error{
	service.ErrUserExists,
	service.ErrTemplateSlugTaken,
	service.ErrVersionInUse,
	service.ErrTemplateInUse,
	service.ErrSectionExists,
	service.ErrSlugUnavailable,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeError maps a service error onto the JSON error contract. op names the
// failing operation in the log line for unexpected errors.
func writeError(w http.ResponseWriter, err error, op string) {
	var verr *service.ValidationError
	var missing *service.MissingFieldsError

	switch {
	case errors.As(err, &missing):
		httpx.JSON(w, http.StatusBadRequest, httpx.ErrorResponse{Error: missing.Error(), MissingFields: missing.Fields})
	case errors.As(err, &verr):
		httpx.Error(w, http.StatusBadRequest, verr.Msg)
	case isAny(err, badRequest):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case isAny(err, notFoundErrs):
		httpx.Error(w, http.StatusNotFound, err.Error())
	case isAny(err, conflict):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.PasswordIncorrect):
		httpx.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		httpx.Error(w, http.StatusRequestEntityTooLarge, "File too large")
	default:
		slog.Error(op+" failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeBodyError(w http.ResponseWriter, err error) {
	httpx.Error(w, http.StatusBadRequest, err.Error())
}

func principal(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	p, ok := httpx.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return p.ID, true
}
