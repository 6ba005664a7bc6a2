package providers

import (
	"context"
	"errors"
	"fmt"

	"eventsite/internal/domains"
	"eventsite/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, name, role, password_hash, created_at`

type AuthProvider struct {
	db *pgxpool.Pool
}

func NewAuthProvider(pg *pgxpool.Pool) *AuthProvider {
	return &AuthProvider{
		db: pg,
	}
}

// SaveUser inserts the account. With an empty role the first account becomes
// admin and every later one editor; the table lock keeps two concurrent first
// registrations from both becoming admin.
func (s *AuthProvider) SaveUser(ctx context.Context, u domains.UserToSave) (domains.User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return domains.User{}, fmt.Errorf("lock users: %w", err)
	}

	var role any
	if u.Role != "" {
		role = u.Role
	}
	rows, err := tx.Query(ctx, `
		INSERT INTO users (id, email, name, role, password_hash)
		VALUES ($1, $2, $3,
			COALESCE($4::text, CASE WHEN EXISTS (SELECT 1 FROM users) THEN 'editor' ELSE 'admin' END),
			$5)
		RETURNING `+userColumns,
		uuid.New(), u.Email, u.Name, role, u.PasswordHash)
	if err != nil {
		return domains.User{}, fmt.Errorf("insert user: %w", err)
	}
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.User])
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return domains.User{}, storage.ErrUserExist
		}
		return domains.User{}, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.User{}, fmt.Errorf("commit: %w", err)
	}
	return user, nil
}

func (s *AuthProvider) GetUserByEmail(ctx context.Context, email string) (domains.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *AuthProvider) GetUserByID(ctx context.Context, id uuid.UUID) (domains.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *AuthProvider) getUser(ctx context.Context, query string, arg any) (domains.User, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return domains.User{}, err
	}
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.User{}, storage.ErrUserNotFound
		}
		return domains.User{}, err
	}
	return user, nil
}
