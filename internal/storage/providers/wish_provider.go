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

const wishColumns = `id, site_id, microsite_id, name, message, relationship, status, is_highlighted,
	created_at, updated_at`

type WishProvider struct {
	db *pgxpool.Pool
}

func NewWishProvider(pg *pgxpool.Pool) *WishProvider {
	return &WishProvider{db: pg}
}

func (s *WishProvider) SaveWish(ctx context.Context, w domains.WishToSave) (domains.Wish, error) {
	siteID, micrositeID := scopeIDs(w.Ref)
	rows, err := s.db.Query(ctx, `
		INSERT INTO wishes (id, site_id, microsite_id, name, message, relationship, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+wishColumns,
		uuid.New(), siteID, micrositeID, w.Name, w.Message, w.Relationship, w.Status)
	if err != nil {
		return domains.Wish{}, fmt.Errorf("insert wish: %w", err)
	}
	wish, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Wish])
	if err != nil {
		return domains.Wish{}, storage.Translate(err)
	}
	return wish, nil
}

func (s *WishProvider) ListWishes(ctx context.Context, ref domains.SiteRef, f domains.WishFilter) ([]domains.Wish, int, error) {
	var status any
	if f.Status != "" {
		status = f.Status
	}
	where := fmt.Sprintf(`%s = $1 AND ($2::text IS NULL OR status = $2)`, scopeColumn(ref))

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM wishes WHERE `+where, ref.ID, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wishes: %w", err)
	}
	rows, err := s.db.Query(ctx, `SELECT `+wishColumns+` FROM wishes WHERE `+where+`
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		ref.ID, status, f.Limit, domains.Offset(f.Page, f.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list wishes: %w", err)
	}
	wishes, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Wish])
	if err != nil {
		return nil, 0, fmt.Errorf("list wishes: %w", err)
	}
	return wishes, total, nil
}

// ListApproved returns approved wishes, highlighted first, newest first.
func (s *WishProvider) ListApproved(ctx context.Context, ref domains.SiteRef, page, limit int) ([]domains.Wish, int, error) {
	col := scopeColumn(ref)
	var total int
	if err := s.db.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM wishes
		WHERE %s = $1 AND status = 'approved'`, col), ref.ID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wishes: %w", err)
	}
	rows, err := s.db.Query(ctx, fmt.Sprintf(`SELECT `+wishColumns+` FROM wishes
		WHERE %s = $1 AND status = 'approved'
		ORDER BY is_highlighted DESC, created_at DESC LIMIT $2 OFFSET $3`, col),
		ref.ID, limit, domains.Offset(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list approved wishes: %w", err)
	}
	wishes, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Wish])
	if err != nil {
		return nil, 0, fmt.Errorf("list approved wishes: %w", err)
	}
	return wishes, total, nil
}

func (s *WishProvider) GetWish(ctx context.Context, ref domains.SiteRef, id uuid.UUID) (domains.Wish, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`SELECT `+wishColumns+` FROM wishes
		WHERE id = $1 AND %s = $2`, scopeColumn(ref)), id, ref.ID)
	if err != nil {
		return domains.Wish{}, err
	}
	wish, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Wish])
	if err != nil {
		return domains.Wish{}, storage.Translate(err)
	}
	return wish, nil
}

func (s *WishProvider) UpdateWishStatus(ctx context.Context, ref domains.SiteRef, id uuid.UUID, status domains.WishStatus) (domains.Wish, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`UPDATE wishes SET status = $3, updated_at = now()
		WHERE id = $1 AND %s = $2
		RETURNING `+wishColumns, scopeColumn(ref)), id, ref.ID, status)
	if err != nil {
		return domains.Wish{}, fmt.Errorf("update wish status: %w", err)
	}
	wish, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Wish])
	if err != nil {
		return domains.Wish{}, storage.Translate(err)
	}
	return wish, nil
}

// SetHighlight turns the highlight flag on or off. Turning it on succeeds
// only while fewer than max other wishes of the site are highlighted;
// otherwise storage.ErrLimitReached. The site row is locked so concurrent
// requests cannot both pass the count.
func (s *WishProvider) SetHighlight(ctx context.Context, ref domains.SiteRef, id uuid.UUID, on bool, max int) (domains.Wish, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.Wish{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	col := scopeColumn(ref)
	if _, err := tx.Exec(ctx, fmt.Sprintf(`SELECT 1 FROM %s WHERE id = $1 FOR UPDATE`, scopeTable(ref)), ref.ID); err != nil {
		return domains.Wish{}, fmt.Errorf("lock site: %w", err)
	}

	query := fmt.Sprintf(`UPDATE wishes SET is_highlighted = false, updated_at = now()
		WHERE id = $1 AND %s = $2
		RETURNING `+wishColumns, col)
	args := []any{id, ref.ID}
	if on {
		query = fmt.Sprintf(`UPDATE wishes SET is_highlighted = true, updated_at = now()
			WHERE id = $1 AND %[1]s = $2
				AND (SELECT count(*) FROM wishes WHERE %[1]s = $2 AND is_highlighted AND id <> $1) < $3
			RETURNING `+wishColumns, col)
		args = append(args, max)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return domains.Wish{}, fmt.Errorf("set highlight: %w", err)
	}
	wish, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Wish])
	if errors.Is(err, pgx.ErrNoRows) && on {
		var exists bool
		if err := tx.QueryRow(ctx, fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM wishes WHERE id = $1 AND %s = $2)`, col),
			id, ref.ID).Scan(&exists); err != nil {
			return domains.Wish{}, fmt.Errorf("check wish: %w", err)
		}
		if exists {
			return domains.Wish{}, storage.ErrLimitReached
		}
		return domains.Wish{}, storage.ErrNotFound
	}
	if err != nil {
		return domains.Wish{}, storage.Translate(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Wish{}, fmt.Errorf("commit: %w", err)
	}
	return wish, nil
}

func (s *WishProvider) DeleteWish(ctx context.Context, ref domains.SiteRef, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, fmt.Sprintf(`DELETE FROM wishes WHERE id = $1 AND %s = $2`,
		scopeColumn(ref)), id, ref.ID)
	if err != nil {
		return fmt.Errorf("delete wish: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
