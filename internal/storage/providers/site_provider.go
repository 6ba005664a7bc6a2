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

const siteColumns = `id, user_id, template_id, version_id, title, slug, status, color_scheme,
	font_pair, sections, settings, view_count, published_at, created_at, updated_at`

type SiteProvider struct {
	db *pgxpool.Pool
}

func NewSiteProvider(pg *pgxpool.Pool) *SiteProvider {
	return &SiteProvider{db: pg}
}

func (s *SiteProvider) CreateSite(ctx context.Context, site domains.SiteToSave) (domains.Site, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.Site{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		INSERT INTO sites (id, user_id, template_id, version_id, title, slug, color_scheme,
			font_pair, sections, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+siteColumns,
		uuid.New(), site.UserID, site.TemplateID, site.VersionID, site.Title, site.Slug,
		site.ColorScheme, site.FontPair, nonNil(site.Sections), site.Settings)
	if err != nil {
		return domains.Site{}, fmt.Errorf("insert site: %w", err)
	}
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Site])
	if err != nil {
		return domains.Site{}, storage.Translate(err)
	}

	if _, err := tx.Exec(ctx, `UPDATE templates SET usage_count = usage_count + 1 WHERE id = $1`,
		site.TemplateID); err != nil {
		return domains.Site{}, fmt.Errorf("bump usage: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Site{}, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func (s *SiteProvider) ListSites(ctx context.Context, userID uuid.UUID, page, limit int) ([]domains.Site, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM sites WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sites: %w", err)
	}
	rows, err := s.db.Query(ctx, `SELECT `+siteColumns+` FROM sites WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, domains.Offset(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list sites: %w", err)
	}
	sites, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Site])
	if err != nil {
		return nil, 0, fmt.Errorf("list sites: %w", err)
	}
	return sites, total, nil
}

func (s *SiteProvider) GetSite(ctx context.Context, userID, id uuid.UUID) (domains.Site, error) {
	rows, err := s.db.Query(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return domains.Site{}, err
	}
	site, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Site])
	if err != nil {
		return domains.Site{}, storage.Translate(err)
	}
	return site, nil
}

func (s *SiteProvider) GetPublishedSite(ctx context.Context, slug string, countView bool) (domains.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE slug = $1 AND status = 'published'`
	if countView {
		query = `UPDATE sites SET view_count = view_count + 1
			WHERE slug = $1 AND status = 'published'
			RETURNING ` + siteColumns
	}
	rows, err := s.db.Query(ctx, query, slug)
	if err != nil {
		return domains.Site{}, err
	}
	site, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Site])
	if err != nil {
		return domains.Site{}, storage.Translate(err)
	}
	return site, nil
}

func (s *SiteProvider) UpdateSite(ctx context.Context, userID, id uuid.UUID, u domains.SiteToUpdate) (domains.Site, error) {
	var sections, settings any
	if u.Sections != nil {
		sections = u.Sections
	}
	if u.Settings != nil {
		settings = *u.Settings
	}
	rows, err := s.db.Query(ctx, `
		UPDATE sites SET
			title = COALESCE($3, title),
			color_scheme = COALESCE($4, color_scheme),
			font_pair = COALESCE($5, font_pair),
			sections = COALESCE($6::jsonb, sections),
			settings = COALESCE($7::jsonb, settings),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+siteColumns,
		id, userID, u.Title, u.ColorScheme, u.FontPair, sections, settings)
	if err != nil {
		return domains.Site{}, fmt.Errorf("update site: %w", err)
	}
	site, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Site])
	if err != nil {
		return domains.Site{}, storage.Translate(err)
	}
	return site, nil
}

func (s *SiteProvider) SetStatus(ctx context.Context, userID, id uuid.UUID, status domains.MicrositeStatus) (domains.Site, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE sites SET
			status = $3,
			published_at = CASE WHEN $3 = 'published' THEN now() ELSE published_at END,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+siteColumns, id, userID, status)
	if err != nil {
		return domains.Site{}, fmt.Errorf("set status: %w", err)
	}
	site, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Site])
	if err != nil {
		return domains.Site{}, storage.Translate(err)
	}
	return site, nil
}

func (s *SiteProvider) DeleteSite(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM sites WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
