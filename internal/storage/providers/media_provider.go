package providers

import (
	"context"
	"fmt"

	"eventsite/internal/domains"
	"eventsite/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const mediaColumns = `id, user_id, filename, original_name, content_type, size, width, height, url, created_at`

type MediaProvider struct {
	db *pgxpool.Pool
}

func NewMediaProvider(pg *pgxpool.Pool) *MediaProvider {
	return &MediaProvider{db: pg}
}

func (s *MediaProvider) SaveMedia(ctx context.Context, m domains.Media) (domains.Media, error) {
	rows, err := s.db.Query(ctx, `
		INSERT INTO media (id, user_id, filename, original_name, content_type, size, width, height, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+mediaColumns,
		m.ID, m.UserID, m.Filename, m.OriginalName, m.ContentType, m.Size, m.Width, m.Height, m.URL)
	if err != nil {
		return domains.Media{}, fmt.Errorf("insert media: %w", err)
	}
	saved, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Media])
	if err != nil {
		return domains.Media{}, storage.Translate(err)
	}
	return saved, nil
}

func (s *MediaProvider) ListMedia(ctx context.Context, userID uuid.UUID, page, limit int) ([]domains.Media, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM media WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count media: %w", err)
	}
	rows, err := s.db.Query(ctx, `SELECT `+mediaColumns+` FROM media WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, domains.Offset(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Media])
	if err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}
	return items, total, nil
}

func (s *MediaProvider) GetMedia(ctx context.Context, userID, id uuid.UUID) (domains.Media, error) {
	rows, err := s.db.Query(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return domains.Media{}, err
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Media])
	if err != nil {
		return domains.Media{}, storage.Translate(err)
	}
	return m, nil
}

func (s *MediaProvider) DeleteMedia(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM media WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
