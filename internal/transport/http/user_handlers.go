package httptransport

import (
	"context"
	"net/http"

	"eventsite/internal/domains"
	"eventsite/internal/httpx"
)

type UserHandlers struct {
	service UserServices
}
type UserServices interface {
	ListUsers(ctx context.Context) ([]domains.User, error)
	CreateUser(ctx context.Context, in domains.UserCreate, role domains.Role) (domains.User, error)
}

func NewUserHandlers(services UserServices) *UserHandlers {
	return &UserHandlers{
		service: services,
	}
}

func (h *UserHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	userData, err := httpx.ReadBody[NewUserRequest](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), userData.UserCreate, userData.Role)
	if err != nil {
		writeError(w, err, "CreateUser")
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *UserHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err, "ListUsers")
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}
