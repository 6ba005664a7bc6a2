package httptransport

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventsite/internal/service"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{&service.ValidationError{Msg: "title is required"}, http.StatusBadRequest, "title is required"},
		{service.ErrSectionNotDisabled, http.StatusBadRequest, "this section cannot be disabled"},
		{fmt.Errorf("load: %w", service.ErrTemplateNotFound), http.StatusNotFound, "load: template not found"},
		{service.ErrSiteNotPublished, http.StatusNotFound, "site not found or not published"},
		{service.ErrVersionInUse, http.StatusConflict, service.ErrVersionInUse.Error()},
		{service.PasswordIncorrect, http.StatusUnauthorized, "invalid email or password"},
		{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "File too large"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err, "Test")
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if got := decodeError(t, rec)["error"]; got != tt.msg {
				t.Errorf("error = %v, want %q", got, tt.msg)
			}
		})
	}
}
