package httptransport

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"eventsite/internal/domains"
	"eventsite/internal/httpx"
)

type AuthHandlers struct {
	service AuthServices
}
type AuthServices interface {
	Register(ctx context.Context, in domains.UserCreate) (domains.AuthResult, error)
	Login(ctx context.Context, email string, password string) (domains.AuthResult, error)
	Me(ctx context.Context, userID uuid.UUID) (domains.User, error)
}

func NewAuthHandlers(service AuthServices) *AuthHandlers {
	return &AuthHandlers{
		service: service,
	}
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	userData, err := httpx.ReadBody[domains.UserCreate](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	res, err := h.service.Register(r.Context(), userData)
	if err != nil {
		writeError(w, err, "Register")
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	loginData, err := httpx.ReadBody[LoginData](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	res, err := h.service.Login(r.Context(), loginData.Email, loginData.Password)
	if err != nil {
		writeError(w, err, "Login")
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := principal(w, r)
	if !ok {
		return
	}
	user, err := h.service.Me(r.Context(), userID)
	if err != nil {
		writeError(w, err, "Me")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
