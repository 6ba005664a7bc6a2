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

const guestColumns = `id, site_id, microsite_id, name, email, phone, status, number_of_guests,
	guest_names, meal_choice, dietary_restrictions, message, submitted_at, updated_at`

type GuestProvider struct {
	db *pgxpool.Pool
}

func NewGuestProvider(pg *pgxpool.Pool) *GuestProvider {
	return &GuestProvider{db: pg}
}

// InsertRsvp stores a new response; a second response with the same email
// for the same site fails with storage.ErrConflict.
func (s *GuestProvider) InsertRsvp(ctx context.Context, g domains.GuestToSave) (domains.Guest, error) {
	siteID, micrositeID := scopeIDs(g.Ref)
	rows, err := s.db.Query(ctx, `
		INSERT INTO guests (id, site_id, microsite_id, name, email, phone, status, number_of_guests,
			guest_names, meal_choice, dietary_restrictions, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+guestColumns,
		uuid.New(), siteID, micrositeID, g.Name, g.Email, g.Phone, g.Status, g.NumberOfGuests,
		nonNil(g.GuestNames), g.MealChoice, g.DietaryRestrictions, g.Message)
	if err != nil {
		return domains.Guest{}, fmt.Errorf("insert guest: %w", err)
	}
	guest, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Guest])
	if err != nil {
		return domains.Guest{}, storage.Translate(err)
	}
	return guest, nil
}

type upsertedGuest struct {
	domains.Guest
	Updated bool `db:"updated"`
}

// UpsertMicrositeRsvp inserts or replaces the response keyed by
// (microsite_id, email) in one statement.
func (s *GuestProvider) UpsertMicrositeRsvp(ctx context.Context, g domains.GuestToSave) (domains.RsvpResult, error) {
	rows, err := s.db.Query(ctx, `
		INSERT INTO guests (id, microsite_id, name, email, phone, status, number_of_guests,
			guest_names, meal_choice, dietary_restrictions, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (microsite_id, email) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			status = EXCLUDED.status,
			number_of_guests = EXCLUDED.number_of_guests,
			guest_names = EXCLUDED.guest_names,
			meal_choice = EXCLUDED.meal_choice,
			dietary_restrictions = EXCLUDED.dietary_restrictions,
			message = EXCLUDED.message,
			updated_at = now()
		RETURNING `+guestColumns+`, (xmax <> 0) AS updated`,
		uuid.New(), g.Ref.ID, g.Name, g.Email, g.Phone, g.Status, g.NumberOfGuests,
		nonNil(g.GuestNames), g.MealChoice, g.DietaryRestrictions, g.Message)
	if err != nil {
		return domains.RsvpResult{}, fmt.Errorf("upsert guest: %w", err)
	}
	res, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[upsertedGuest])
	if err != nil {
		return domains.RsvpResult{}, storage.Translate(err)
	}
	return domains.RsvpResult{Guest: res.Guest, Updated: res.Updated}, nil
}

// UpdateRsvpByEmail replaces the response fields of an existing guest.
func (s *GuestProvider) UpdateRsvpByEmail(ctx context.Context, g domains.GuestToSave) (domains.Guest, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		UPDATE guests SET
			name = $3, phone = $4, status = $5, number_of_guests = $6, guest_names = $7,
			meal_choice = $8, dietary_restrictions = $9, message = $10, updated_at = now()
		WHERE %s = $1 AND email = $2
		RETURNING `+guestColumns, scopeColumn(g.Ref)),
		g.Ref.ID, g.Email, g.Name, g.Phone, g.Status, g.NumberOfGuests, nonNil(g.GuestNames),
		g.MealChoice, g.DietaryRestrictions, g.Message)
	if err != nil {
		return domains.Guest{}, fmt.Errorf("update guest: %w", err)
	}
	guest, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Guest])
	if err != nil {
		return domains.Guest{}, storage.Translate(err)
	}
	return guest, nil
}

func (s *GuestProvider) ListGuests(ctx context.Context, ref domains.SiteRef, f domains.GuestFilter) ([]domains.Guest, int, error) {
	var status, search any
	if f.Status != "" {
		status = f.Status
	}
	if f.Search != "" {
		search = "%" + f.Search + "%"
	}
	where := fmt.Sprintf(`%s = $1 AND ($2::text IS NULL OR status = $2)
		AND ($3::text IS NULL OR name ILIKE $3 OR email ILIKE $3)`, scopeColumn(ref))

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM guests WHERE `+where, ref.ID, status, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count guests: %w", err)
	}
	rows, err := s.db.Query(ctx, `SELECT `+guestColumns+` FROM guests WHERE `+where+`
		ORDER BY submitted_at DESC LIMIT $4 OFFSET $5`,
		ref.ID, status, search, f.Limit, domains.Offset(f.Page, f.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("list guests: %w", err)
	}
	guests, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Guest])
	if err != nil {
		return nil, 0, fmt.Errorf("list guests: %w", err)
	}
	return guests, total, nil
}

// AllGuests returns every guest of the site, oldest first, for export.
func (s *GuestProvider) AllGuests(ctx context.Context, ref domains.SiteRef) ([]domains.Guest, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`SELECT `+guestColumns+` FROM guests
		WHERE %s = $1 ORDER BY submitted_at`, scopeColumn(ref)), ref.ID)
	if err != nil {
		return nil, fmt.Errorf("export guests: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[domains.Guest])
}

func (s *GuestProvider) GetGuest(ctx context.Context, ref domains.SiteRef, id uuid.UUID) (domains.Guest, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`SELECT `+guestColumns+` FROM guests
		WHERE id = $1 AND %s = $2`, scopeColumn(ref)), id, ref.ID)
	if err != nil {
		return domains.Guest{}, err
	}
	guest, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Guest])
	if err != nil {
		return domains.Guest{}, storage.Translate(err)
	}
	return guest, nil
}

func (s *GuestProvider) UpdateGuestStatus(ctx context.Context, ref domains.SiteRef, id uuid.UUID, status domains.GuestStatus) (domains.Guest, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`UPDATE guests SET status = $3, updated_at = now()
		WHERE id = $1 AND %s = $2
		RETURNING `+guestColumns, scopeColumn(ref)), id, ref.ID, status)
	if err != nil {
		return domains.Guest{}, fmt.Errorf("update guest status: %w", err)
	}
	guest, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Guest])
	if err != nil {
		return domains.Guest{}, storage.Translate(err)
	}
	return guest, nil
}

func (s *GuestProvider) DeleteGuest(ctx context.Context, ref domains.SiteRef, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, fmt.Sprintf(`DELETE FROM guests WHERE id = $1 AND %s = $2`,
		scopeColumn(ref)), id, ref.ID)
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
