package providers

import (
	"context"
	"fmt"

	"eventsite/internal/domains"
	"eventsite/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScopeProvider resolves the microsite or legacy site that guests and wishes
// hang off. Both tables share the uuid space, so one id finds at most one row.
type ScopeProvider struct {
	db *pgxpool.Pool
}

func NewScopeProvider(pg *pgxpool.Pool) *ScopeProvider {
	return &ScopeProvider{db: pg}
}

const scopeSelect = `
	SELECT 'microsite', id, user_id, title, slug, status, settings FROM microsites WHERE %[1]s
	UNION ALL
	SELECT 'site', id, user_id, title, slug, status, settings FROM sites WHERE %[1]s
	LIMIT 1`

func (s *ScopeProvider) ResolveSite(ctx context.Context, id uuid.UUID) (domains.SiteRef, error) {
	return s.resolve(ctx, fmt.Sprintf(scopeSelect, "id = $1"), id)
}

// ResolvePublishedSite finds a published site of the given kind by slug.
func (s *ScopeProvider) ResolvePublishedSite(ctx context.Context, kind domains.SiteKind, slug string) (domains.SiteRef, error) {
	table := "microsites"
	if kind == domains.SiteKindSite {
		table = "sites"
	}
	query := fmt.Sprintf(`SELECT '%s', id, user_id, title, slug, status, settings FROM %s
		WHERE slug = $1 AND status = 'published'`, kind, table)
	return s.resolve(ctx, query, slug)
}

func (s *ScopeProvider) resolve(ctx context.Context, query string, arg any) (domains.SiteRef, error) {
	var ref domains.SiteRef
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&ref.Kind, &ref.ID, &ref.UserID, &ref.Title, &ref.Slug, &ref.Status, &ref.Settings)
	if err != nil {
		return domains.SiteRef{}, storage.Translate(err)
	}
	return ref, nil
}

// scopeColumn names the guests/wishes column that points at ref.
func scopeColumn(ref domains.SiteRef) string {
	if ref.Kind == domains.SiteKindSite {
		return "site_id"
	}
	return "microsite_id"
}

func scopeTable(ref domains.SiteRef) string {
	if ref.Kind == domains.SiteKindSite {
		return "sites"
	}
	return "microsites"
}

// scopeIDs splits ref into the (site_id, microsite_id) pair stored on rows.
func scopeIDs(ref domains.SiteRef) (*uuid.UUID, *uuid.UUID) {
	id := ref.ID
	if ref.Kind == domains.SiteKindSite {
		return &id, nil
	}
	return nil, &id
}
