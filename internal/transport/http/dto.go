package httptransport

import "eventsite/internal/domains"

type LoginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type NewUserRequest struct {
	domains.UserCreate
	Role domains.Role `json:"role"`
}

type NewVersionRequest struct {
	Changelog string `json:"changelog"`
}

type InterpolateRequest struct {
	Text  *string        `json:"text,omitempty"`
	Props map[string]any `json:"props,omitempty"`
	Data  map[string]any `json:"data"`
}

type InterpolateResponse struct {
	Text      *string        `json:"text,omitempty"`
	Props     map[string]any `json:"props,omitempty"`
	Variables []string       `json:"variables"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
