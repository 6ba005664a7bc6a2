package service

import (
	"context"
	"log/slog"

	"eventsite/internal/domains"
)

type UserService struct {
	provider UserProvider
}

type UserProvider interface {
	ListUsers(ctx context.Context) ([]domains.User, error)
}

func NewUserService(provider UserProvider) *UserService {
	return &UserService{
		provider: provider,
	}
}

func (u *UserService) ListUsers(ctx context.Context) ([]domains.User, error) {
	users, err := u.provider.ListUsers(ctx)
	if err != nil {
		slog.Error("List users error", "err", err)
		return nil, err
	}
	if users == nil {
		users = []domains.User{}
	}
	return users, nil
}
