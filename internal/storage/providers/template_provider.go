package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventsite/internal/domains"
	"eventsite/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	templateColumns = `id, slug, name, description, category, thumbnail_url, status, is_active,
		current_version, current_version_id, usage_count, created_by, created_at, updated_at`
	versionColumns = `id, template_id, version, color_schemes, font_pairs, default_color_scheme,
		default_font_pair, changelog, created_at`
	templateSectionColumns = `id, version_id, section_id, type, name, description, fields,
		sample_values, is_required, can_disable, sort_order`
)

type TemplateProvider struct {
	db *pgxpool.Pool
}

func NewTemplateProvider(pg *pgxpool.Pool) *TemplateProvider {
	return &TemplateProvider{
		db: pg,
	}
}

// SaveTemplate inserts the template, its first version and the sections in
// one transaction.
func (s *TemplateProvider) SaveTemplate(ctx context.Context, t domains.TemplateToSave) (domains.TemplateDetails, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.TemplateDetails{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	templateID, versionID := uuid.New(), uuid.New()

	rows, err := tx.Query(ctx, `
		INSERT INTO templates (id, slug, name, description, category, thumbnail_url, status,
			is_active, current_version, current_version_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $10)
		RETURNING `+templateColumns,
		templateID, t.Slug, t.Name, t.Description, t.Category, t.ThumbnailURL, t.Status,
		t.Status == domains.TemplateStatusPublished, versionID, t.CreatedBy)
	if err != nil {
		return domains.TemplateDetails{}, fmt.Errorf("insert template: %w", err)
	}
	template, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Template])
	if err != nil {
		return domains.TemplateDetails{}, fmt.Errorf("insert template: %w", storage.Translate(err))
	}

	version, err := insertVersion(ctx, tx, versionID, templateID, 1, t.Version)
	if err != nil {
		return domains.TemplateDetails{}, err
	}

	sections, err := insertTemplateSections(ctx, tx, versionID, t.Sections)
	if err != nil {
		return domains.TemplateDetails{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.TemplateDetails{}, fmt.Errorf("commit: %w", err)
	}
	return domains.TemplateDetails{Template: template, Version: version, Sections: sections}, nil
}

func insertVersion(ctx context.Context, tx pgx.Tx, id, templateID uuid.UUID, number int, v domains.VersionToSave) (domains.TemplateVersion, error) {
	rows, err := tx.Query(ctx, `
		INSERT INTO template_versions (id, template_id, version, color_schemes, font_pairs,
			default_color_scheme, default_font_pair, changelog)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+versionColumns,
		id, templateID, number, nonNil(v.ColorSchemes), nonNil(v.FontPairs),
		v.DefaultColorScheme, v.DefaultFontPair, v.Changelog)
	if err != nil {
		return domains.TemplateVersion{}, fmt.Errorf("insert version: %w", err)
	}
	version, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.TemplateVersion])
	if err != nil {
		return domains.TemplateVersion{}, fmt.Errorf("insert version: %w", storage.Translate(err))
	}
	return version, nil
}

func insertTemplateSections(ctx context.Context, tx pgx.Tx, versionID uuid.UUID, sections []domains.TemplateSection) ([]domains.TemplateSection, error) {
	out := make([]domains.TemplateSection, 0, len(sections))
	for _, sec := range sections {
		rows, err := tx.Query(ctx, `
			INSERT INTO template_sections (id, version_id, section_id, type, name, description,
				fields, sample_values, is_required, can_disable, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING `+templateSectionColumns,
			uuid.New(), versionID, sec.SectionID, sec.Type, sec.Name, sec.Description,
			nonNil(sec.Fields), nonNilMap(sec.SampleValues), sec.IsRequired, sec.CanDisable, sec.Order)
		if err != nil {
			return nil, fmt.Errorf("insert section %s: %w", sec.SectionID, err)
		}
		created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.TemplateSection])
		if err != nil {
			return nil, fmt.Errorf("insert section %s: %w", sec.SectionID, storage.Translate(err))
		}
		out = append(out, created)
	}
	return out, nil
}

func (s *TemplateProvider) ListTemplates(ctx context.Context, f domains.TemplateFilter) ([]domains.Template, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if f.ActiveOnly {
		where = append(where, "is_active")
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRow(ctx, "SELECT count(*) FROM templates "+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count templates: %w", err)
	}

	args = append(args, f.Limit, domains.Offset(f.Page, f.Limit))
	rows, err := s.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM templates %s
		ORDER BY usage_count DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		templateColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list templates: %w", err)
	}
	templates, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Template])
	if err != nil {
		return nil, 0, fmt.Errorf("list templates: %w", err)
	}
	return templates, total, nil
}

func (s *TemplateProvider) GetTemplate(ctx context.Context, id uuid.UUID) (domains.Template, error) {
	rows, err := s.db.Query(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)
	if err != nil {
		return domains.Template{}, err
	}
	template, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Template])
	if err != nil {
		return domains.Template{}, storage.Translate(err)
	}
	return template, nil
}

func (s *TemplateProvider) GetVersion(ctx context.Context, versionID uuid.UUID) (domains.TemplateVersion, error) {
	rows, err := s.db.Query(ctx, `SELECT `+versionColumns+` FROM template_versions WHERE id = $1`, versionID)
	if err != nil {
		return domains.TemplateVersion{}, err
	}
	version, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.TemplateVersion])
	if err != nil {
		return domains.TemplateVersion{}, storage.Translate(err)
	}
	return version, nil
}

func (s *TemplateProvider) ListVersionSections(ctx context.Context, versionID uuid.UUID) ([]domains.TemplateSection, error) {
	rows, err := s.db.Query(ctx, `SELECT `+templateSectionColumns+` FROM template_sections
		WHERE version_id = $1 ORDER BY sort_order, section_id`, versionID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[domains.TemplateSection])
}

// GetTemplateDetails loads the template with its current version and sections.
func (s *TemplateProvider) GetTemplateDetails(ctx context.Context, id uuid.UUID) (domains.TemplateDetails, error) {
	template, err := s.GetTemplate(ctx, id)
	if err != nil {
		return domains.TemplateDetails{}, err
	}
	if template.CurrentVersionID == nil {
		return domains.TemplateDetails{}, storage.ErrNotFound
	}
	version, err := s.GetVersion(ctx, *template.CurrentVersionID)
	if err != nil {
		return domains.TemplateDetails{}, err
	}
	sections, err := s.ListVersionSections(ctx, version.ID)
	if err != nil {
		return domains.TemplateDetails{}, err
	}
	return domains.TemplateDetails{Template: template, Version: version, Sections: sections}, nil
}

func (s *TemplateProvider) ListVersions(ctx context.Context, templateID uuid.UUID) ([]domains.TemplateVersion, error) {
	rows, err := s.db.Query(ctx, `SELECT `+versionColumns+` FROM template_versions
		WHERE template_id = $1 ORDER BY version DESC`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[domains.TemplateVersion])
}

func (s *TemplateProvider) UpdateTemplate(ctx context.Context, id uuid.UUID, u domains.TemplateUpdate) (domains.Template, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE templates SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			category = COALESCE($4, category),
			thumbnail_url = COALESCE($5, thumbnail_url),
			status = COALESCE($6, status),
			updated_at = now()
		WHERE id = $1
		RETURNING `+templateColumns,
		id, u.Name, u.Description, u.Category, u.ThumbnailURL, u.Status)
	if err != nil {
		return domains.Template{}, fmt.Errorf("update template: %w", err)
	}
	template, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Template])
	if err != nil {
		return domains.Template{}, storage.Translate(err)
	}
	return template, nil
}

// SetActive flips catalog visibility together with the status.
func (s *TemplateProvider) SetActive(ctx context.Context, id uuid.UUID, active bool) (domains.Template, error) {
	status := domains.TemplateStatusDraft
	if active {
		status = domains.TemplateStatusPublished
	}
	rows, err := s.db.Query(ctx, `
		UPDATE templates SET is_active = $2, status = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+templateColumns, id, active, status)
	if err != nil {
		return domains.Template{}, fmt.Errorf("set active: %w", err)
	}
	template, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Template])
	if err != nil {
		return domains.Template{}, storage.Translate(err)
	}
	return template, nil
}

// VersionInUse reports whether any microsite or site is bound to the version.
func (s *TemplateProvider) VersionInUse(ctx context.Context, versionID uuid.UUID) (bool, error) {
	var used bool
	err := s.db.QueryRow(ctx, `SELECT
		EXISTS (SELECT 1 FROM microsites WHERE version_id = $1)
		OR EXISTS (SELECT 1 FROM sites WHERE version_id = $1)`, versionID).Scan(&used)
	return used, err
}

func (s *TemplateProvider) TemplateInUse(ctx context.Context, templateID uuid.UUID) (bool, error) {
	var used bool
	err := s.db.QueryRow(ctx, `SELECT
		EXISTS (SELECT 1 FROM microsites WHERE template_id = $1)
		OR EXISTS (SELECT 1 FROM sites WHERE template_id = $1)`, templateID).Scan(&used)
	return used, err
}

func (s *TemplateProvider) UpdateVersion(ctx context.Context, versionID uuid.UUID, u domains.VersionUpdate) (domains.TemplateVersion, error) {
	var schemes, fonts any
	if u.ColorSchemes != nil {
		schemes = u.ColorSchemes
	}
	if u.FontPairs != nil {
		fonts = u.FontPairs
	}
	rows, err := s.db.Query(ctx, `
		UPDATE template_versions SET
			color_schemes = COALESCE($2::jsonb, color_schemes),
			font_pairs = COALESCE($3::jsonb, font_pairs),
			default_color_scheme = COALESCE($4, default_color_scheme),
			default_font_pair = COALESCE($5, default_font_pair),
			changelog = COALESCE($6, changelog)
		WHERE id = $1
		RETURNING `+versionColumns,
		versionID, schemes, fonts, u.DefaultColorScheme, u.DefaultFontPair, u.Changelog)
	if err != nil {
		return domains.TemplateVersion{}, fmt.Errorf("update version: %w", err)
	}
	version, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.TemplateVersion])
	if err != nil {
		return domains.TemplateVersion{}, storage.Translate(err)
	}
	return version, nil
}

// AddSection appends a section after the last one of the version.
func (s *TemplateProvider) AddSection(ctx context.Context, versionID uuid.UUID, sec domains.TemplateSection) (domains.TemplateSection, error) {
	rows, err := s.db.Query(ctx, `
		INSERT INTO template_sections (id, version_id, section_id, type, name, description,
			fields, sample_values, is_required, can_disable, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			(SELECT COALESCE(max(sort_order) + 1, 0) FROM template_sections WHERE version_id = $2))
		RETURNING `+templateSectionColumns,
		uuid.New(), versionID, sec.SectionID, sec.Type, sec.Name, sec.Description,
		nonNil(sec.Fields), nonNilMap(sec.SampleValues), sec.IsRequired, sec.CanDisable)
	if err != nil {
		return domains.TemplateSection{}, fmt.Errorf("add section: %w", err)
	}
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.TemplateSection])
	if err != nil {
		return domains.TemplateSection{}, storage.Translate(err)
	}
	return created, nil
}

func (s *TemplateProvider) UpdateSection(ctx context.Context, versionID uuid.UUID, sectionID string, u domains.TemplateSectionUpdate) (domains.TemplateSection, error) {
	var fields, samples any
	if u.Fields != nil {
		fields = u.Fields
	}
	if u.SampleValues != nil {
		samples = u.SampleValues
	}
	rows, err := s.db.Query(ctx, `
		UPDATE template_sections SET
			type = COALESCE($3, type),
			name = COALESCE($4, name),
			description = COALESCE($5, description),
			fields = COALESCE($6::jsonb, fields),
			sample_values = COALESCE($7::jsonb, sample_values),
			is_required = COALESCE($8, is_required),
			can_disable = COALESCE($9, can_disable)
		WHERE version_id = $1 AND section_id = $2
		RETURNING `+templateSectionColumns,
		versionID, sectionID, u.Type, u.Name, u.Description, fields, samples, u.IsRequired, u.CanDisable)
	if err != nil {
		return domains.TemplateSection{}, fmt.Errorf("update section: %w", err)
	}
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.TemplateSection])
	if err != nil {
		return domains.TemplateSection{}, storage.Translate(err)
	}
	return updated, nil
}

// DeleteSection removes the section and closes the gap it leaves so the
// remaining orders stay 0..n-1.
func (s *TemplateProvider) DeleteSection(ctx context.Context, versionID uuid.UUID, sectionID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var order int
	err = tx.QueryRow(ctx, `DELETE FROM template_sections WHERE version_id = $1 AND section_id = $2
		RETURNING sort_order`, versionID, sectionID).Scan(&order)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE template_sections SET sort_order = sort_order - 1
		WHERE version_id = $1 AND sort_order > $2`, versionID, order); err != nil {
		return fmt.Errorf("compact section order: %w", err)
	}
	return tx.Commit(ctx)
}

// ReorderSections sets sort_order to the list position for the listed ids.
// Sections not in the list keep their current order.
func (s *TemplateProvider) ReorderSections(ctx context.Context, versionID uuid.UUID, orderedIDs []string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, id := range orderedIDs {
		if _, err := tx.Exec(ctx, `UPDATE template_sections SET sort_order = $3
			WHERE version_id = $1 AND section_id = $2`, versionID, id, i); err != nil {
			return fmt.Errorf("reorder %s: %w", id, err)
		}
	}
	return tx.Commit(ctx)
}

// CreateNewVersion copies the current version (schemes, fonts, defaults and
// sections) to version+1 and makes it current.
func (s *TemplateProvider) CreateNewVersion(ctx context.Context, templateID uuid.UUID, changelog string) (domains.TemplateVersion, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.TemplateVersion{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		currentID *uuid.UUID
		number    int
	)
	err = tx.QueryRow(ctx, `SELECT current_version_id, current_version FROM templates
		WHERE id = $1 FOR UPDATE`, templateID).Scan(&currentID, &number)
	if err != nil {
		return domains.TemplateVersion{}, storage.Translate(err)
	}
	if currentID == nil {
		return domains.TemplateVersion{}, storage.ErrNotFound
	}

	rows, err := tx.Query(ctx, `SELECT `+versionColumns+` FROM template_versions WHERE id = $1`, *currentID)
	if err != nil {
		return domains.TemplateVersion{}, err
	}
	current, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.TemplateVersion])
	if err != nil {
		return domains.TemplateVersion{}, storage.Translate(err)
	}

	newID := uuid.New()
	version, err := insertVersion(ctx, tx, newID, templateID, number+1, domains.VersionToSave{
		ColorSchemes:       current.ColorSchemes,
		FontPairs:          current.FontPairs,
		DefaultColorScheme: current.DefaultColorScheme,
		DefaultFontPair:    current.DefaultFontPair,
		Changelog:          changelog,
	})
	if err != nil {
		return domains.TemplateVersion{}, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO template_sections (id, version_id, section_id, type, name, description,
			fields, sample_values, is_required, can_disable, sort_order)
		SELECT gen_random_uuid(), $2, section_id, type, name, description,
			fields, sample_values, is_required, can_disable, sort_order
		FROM template_sections WHERE version_id = $1`, *currentID, newID); err != nil {
		return domains.TemplateVersion{}, fmt.Errorf("copy sections: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE templates SET current_version = $2, current_version_id = $3,
		updated_at = now() WHERE id = $1`, templateID, version.Version, newID); err != nil {
		return domains.TemplateVersion{}, fmt.Errorf("repoint template: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.TemplateVersion{}, fmt.Errorf("commit: %w", err)
	}
	return version, nil
}

func (s *TemplateProvider) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE templates SET current_version_id = NULL WHERE id = $1`, id); err != nil {
		return fmt.Errorf("detach version: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		if err = storage.Translate(err); errors.Is(err, storage.ErrInUse) {
			return err
		}
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return tx.Commit(ctx)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
