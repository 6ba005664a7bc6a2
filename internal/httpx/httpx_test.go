package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"eventsite/internal/domains"
)

const secret = "s3cret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestProtected(t *testing.T) {
	id := uuid.New()
	var got domains.Principal
	h := Protected(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	valid := jwt.MapClaims{"sub": id.String(), "role": "editor", "exp": time.Now().Add(time.Hour).Unix()}
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"valid", sign(t, jwt.SigningMethodHS256, []byte(secret), valid), http.StatusNoContent},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), valid), http.StatusUnauthorized},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": id.String(), "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"non-uuid subject", sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "42"}), http.StatusUnauthorized},
		{"unsigned", sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if got.ID != id || got.Role != domains.RoleEditor {
		t.Errorf("principal = %+v", got)
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(domains.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for role, want := range map[domains.Role]int{domains.RoleAdmin: http.StatusNoContent, domains.RoleEditor: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithPrincipal(req.Context(), domains.Principal{ID: uuid.New(), Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("%s: status = %d, want %d", role, rec.Code, want)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no principal: status = %d", rec.Code)
	}
}

func TestRecoverAttachesStack(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })

	for _, withStack := range []bool{false, true} {
		rec := httptest.NewRecorder()
		Recover(logger, withStack)(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", rec.Code)
		}
		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if (body.Stack != "") != withStack {
			t.Errorf("withStack=%v: stack present = %v", withStack, body.Stack != "")
		}
	}
}

func TestReadBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Mia"}`))
	p, err := ReadBody[payload](*req)
	if err != nil || p.Name != "Mia" {
		t.Errorf("got %+v, %v", p, err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if _, err := ReadBody[payload](*req); err != ErrEmptyBody {
		t.Errorf("expected ErrEmptyBody, got %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	if _, err := ReadBody[payload](*req); err == nil {
		t.Error("truncated JSON should fail")
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=x", nil)
	if QueryInt(req, "page", 1) != 3 || QueryInt(req, "limit", 20) != 20 || QueryInt(req, "missing", 7) != 7 {
		t.Error("unexpected QueryInt result")
	}
}
