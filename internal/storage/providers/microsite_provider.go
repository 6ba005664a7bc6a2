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

const (
	micrositeColumns = `id, user_id, template_id, version_id, title, slug, status, color_scheme_id,
		font_pair_id, settings, view_count, published_at, created_at, updated_at`
	micrositeSectionColumns = `id, microsite_id, section_id, type, name, field_values, enabled,
		sort_order, updated_at`
)

type MicrositeProvider struct {
	db *pgxpool.Pool
}

func NewMicrositeProvider(pg *pgxpool.Pool) *MicrositeProvider {
	return &MicrositeProvider{db: pg}
}

// CreateMicrosite inserts the microsite with its sections and bumps the
// template usage counter in the same transaction.
func (s *MicrositeProvider) CreateMicrosite(ctx context.Context, m domains.MicrositeToSave) (domains.Microsite, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.Microsite{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		INSERT INTO microsites (id, user_id, template_id, version_id, title, slug, color_scheme_id,
			font_pair_id, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+micrositeColumns,
		uuid.New(), m.UserID, m.TemplateID, m.VersionID, m.Title, m.Slug, m.ColorSchemeID,
		m.FontPairID, m.Settings)
	if err != nil {
		return domains.Microsite{}, fmt.Errorf("insert microsite: %w", err)
	}
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Microsite])
	if err != nil {
		return domains.Microsite{}, storage.Translate(err)
	}

	batch := &pgx.Batch{}
	for _, sec := range m.Sections {
		batch.Queue(`
			INSERT INTO microsite_sections (id, microsite_id, section_id, type, name, field_values,
				enabled, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(), created.ID, sec.SectionID, sec.Type, sec.Name, nonNilMap(sec.Values),
			sec.Enabled, sec.Order)
	}
	batch.Queue(`UPDATE templates SET usage_count = usage_count + 1 WHERE id = $1`, m.TemplateID)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return domains.Microsite{}, fmt.Errorf("insert sections: %w", storage.Translate(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Microsite{}, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func (s *MicrositeProvider) ListMicrosites(ctx context.Context, userID uuid.UUID, f domains.MicrositeFilter) ([]domains.MicrositeSummary, int, error) {
	var status any
	if f.Status != "" {
		status = f.Status
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM microsites
		WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)`, userID, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count microsites: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.user_id, m.template_id, m.version_id, m.title, m.slug, m.status,
			m.color_scheme_id, m.font_pair_id, m.settings, m.view_count, m.published_at,
			m.created_at, m.updated_at,
			t.name AS template_name,
			(SELECT count(*) FROM guests g WHERE g.microsite_id = m.id) AS guest_count,
			(SELECT COALESCE(sum(g.number_of_guests), 0) FROM guests g
				WHERE g.microsite_id = m.id AND g.status = 'attending') AS attending_size,
			(SELECT count(*) FROM wishes w WHERE w.microsite_id = m.id) AS wish_count
		FROM microsites m
		JOIN templates t ON t.id = m.template_id
		WHERE m.user_id = $1 AND ($2::text IS NULL OR m.status = $2)
		ORDER BY m.created_at DESC
		LIMIT $3 OFFSET $4`,
		userID, status, f.Limit, domains.Offset(f.Page, f.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list microsites: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.MicrositeSummary])
	if err != nil {
		return nil, 0, fmt.Errorf("list microsites: %w", err)
	}
	return items, total, nil
}

// GetMicrosite returns the microsite only when it belongs to userID.
func (s *MicrositeProvider) GetMicrosite(ctx context.Context, userID, id uuid.UUID) (domains.Microsite, error) {
	rows, err := s.db.Query(ctx, `SELECT `+micrositeColumns+` FROM microsites
		WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return domains.Microsite{}, err
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Microsite])
	if err != nil {
		return domains.Microsite{}, storage.Translate(err)
	}
	return m, nil
}

// GetPublishedMicrosite looks up a published microsite by slug. With
// countView set the view counter is incremented in the same statement.
func (s *MicrositeProvider) GetPublishedMicrosite(ctx context.Context, slug string, countView bool) (domains.Microsite, error) {
	query := `SELECT ` + micrositeColumns + ` FROM microsites WHERE slug = $1 AND status = 'published'`
	if countView {
		query = `UPDATE microsites SET view_count = view_count + 1
			WHERE slug = $1 AND status = 'published'
			RETURNING ` + micrositeColumns
	}
	rows, err := s.db.Query(ctx, query, slug)
	if err != nil {
		return domains.Microsite{}, err
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Microsite])
	if err != nil {
		return domains.Microsite{}, storage.Translate(err)
	}
	return m, nil
}

func (s *MicrositeProvider) ListSections(ctx context.Context, micrositeID uuid.UUID) ([]domains.MicrositeSection, error) {
	rows, err := s.db.Query(ctx, `SELECT `+micrositeSectionColumns+` FROM microsite_sections
		WHERE microsite_id = $1 ORDER BY sort_order, section_id`, micrositeID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[domains.MicrositeSection])
}

func (s *MicrositeProvider) GetSection(ctx context.Context, micrositeID uuid.UUID, sectionID string) (domains.MicrositeSection, error) {
	rows, err := s.db.Query(ctx, `SELECT `+micrositeSectionColumns+` FROM microsite_sections
		WHERE microsite_id = $1 AND section_id = $2`, micrositeID, sectionID)
	if err != nil {
		return domains.MicrositeSection{}, err
	}
	sec, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.MicrositeSection])
	if err != nil {
		return domains.MicrositeSection{}, storage.Translate(err)
	}
	return sec, nil
}

func (s *MicrositeProvider) UpdateMicrosite(ctx context.Context, userID, id uuid.UUID, u domains.MicrositeToUpdate) (domains.Microsite, error) {
	var settings any
	if u.Settings != nil {
		settings = *u.Settings
	}
	rows, err := s.db.Query(ctx, `
		UPDATE microsites SET
			title = COALESCE($3, title),
			color_scheme_id = COALESCE($4, color_scheme_id),
			font_pair_id = COALESCE($5, font_pair_id),
			settings = COALESCE($6::jsonb, settings),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+micrositeColumns,
		id, userID, u.Title, u.ColorSchemeID, u.FontPairID, settings)
	if err != nil {
		return domains.Microsite{}, fmt.Errorf("update microsite: %w", err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Microsite])
	if err != nil {
		return domains.Microsite{}, storage.Translate(err)
	}
	return m, nil
}

// UpdateSection merges values key-wise into the stored ones; enabled and
// order change only when set.
func (s *MicrositeProvider) UpdateSection(ctx context.Context, micrositeID uuid.UUID, sectionID string, p domains.SectionPatch) (domains.MicrositeSection, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE microsite_sections SET
			field_values = field_values || $3::jsonb,
			enabled = COALESCE($4, enabled),
			sort_order = COALESCE($5, sort_order),
			updated_at = now()
		WHERE microsite_id = $1 AND section_id = $2
		RETURNING `+micrositeSectionColumns,
		micrositeID, sectionID, nonNilMap(p.Values), p.Enabled, p.Order)
	if err != nil {
		return domains.MicrositeSection{}, fmt.Errorf("update section: %w", err)
	}
	sec, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.MicrositeSection])
	if err != nil {
		return domains.MicrositeSection{}, storage.Translate(err)
	}
	return sec, nil
}

// ReorderSections assigns order = position to each listed section. Sections
// missing from the list are left untouched.
func (s *MicrositeProvider) ReorderSections(ctx context.Context, micrositeID uuid.UUID, orderedIDs []string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i, id := range orderedIDs {
		batch.Queue(`UPDATE microsite_sections SET sort_order = $3, updated_at = now()
			WHERE microsite_id = $1 AND section_id = $2`, micrositeID, id, i)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("reorder sections: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *MicrositeProvider) SetStatus(ctx context.Context, userID, id uuid.UUID, status domains.MicrositeStatus) (domains.Microsite, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE microsites SET
			status = $3,
			published_at = CASE WHEN $3 = 'published' THEN now() ELSE published_at END,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+micrositeColumns, id, userID, status)
	if err != nil {
		return domains.Microsite{}, fmt.Errorf("set status: %w", err)
	}
	m, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Microsite])
	if err != nil {
		return domains.Microsite{}, storage.Translate(err)
	}
	return m, nil
}

// DeleteMicrosite removes the microsite; sections, guests and wishes go with
// it through ON DELETE CASCADE.
func (s *MicrositeProvider) DeleteMicrosite(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM microsites WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete microsite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
