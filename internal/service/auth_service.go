package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"eventsite/internal/domains"
	"eventsite/internal/storage"
)

const (
	DefaultTokenTTL   = 7 * 24 * time.Hour
	minPasswordLength = 6
)

type AuthService struct {
	provider AuthProvider
	secret   string
	ttl      time.Duration
	now      func() time.Time
}

type AuthProvider interface {
	SaveUser(ctx context.Context, u domains.UserToSave) (domains.User, error)
	GetUserByEmail(ctx context.Context, email string) (domains.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (domains.User, error)
}

func NewAuthService(provider AuthProvider, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		provider: provider,
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Register creates an account. The first account of the installation becomes
// admin, later ones editor.
func (s *AuthService) Register(ctx context.Context, in domains.UserCreate) (domains.AuthResult, error) {
	user, err := s.CreateUser(ctx, in, "")
	if err != nil {
		return domains.AuthResult{}, err
	}
	token, err := s.GenerateToken(user)
	if err != nil {
		return domains.AuthResult{}, err
	}
	return domains.AuthResult{Token: token, User: user}, nil
}

// CreateUser stores a user with an explicit role; an empty role applies the
// first-user-is-admin rule.
func (s *AuthService) CreateUser(ctx context.Context, in domains.UserCreate, role domains.Role) (domains.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return domains.User{}, invalid("a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return domains.User{}, invalid("password must be at least %d characters", minPasswordLength)
	}
	if role != "" && !role.Valid() {
		return domains.User{}, invalid("invalid role %q", role)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Create hash pass error", "err", err)
		return domains.User{}, err
	}
	user, err := s.provider.SaveUser(ctx, domains.UserToSave{
		Email:        email,
		Name:         name,
		PasswordHash: string(passHash),
		Role:         role,
	})
	if errors.Is(err, storage.ErrUserExist) {
		return domains.User{}, ErrUserExists
	}
	if err != nil {
		slog.Error("Save user error", "err", err)
		return domains.User{}, err
	}
	slog.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domains.AuthResult, error) {
	user, err := s.provider.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, storage.ErrUserNotFound) {
		return domains.AuthResult{}, PasswordIncorrect
	}
	if err != nil {
		slog.Error("Fetch user error", "err", err)
		return domains.AuthResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domains.AuthResult{}, PasswordIncorrect
	}
	token, err := s.GenerateToken(user)
	if err != nil {
		slog.Error("auth: failed to generate token", "err", err)
		return domains.AuthResult{}, err
	}
	return domains.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (domains.User, error) {
	user, err := s.provider.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrUserNotFound) {
		return domains.User{}, ErrUserNotFound
	}
	return user, err
}

func (s *AuthService) GenerateToken(user domains.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  s.now().Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
}
