package providers

import (
	"context"
	"fmt"

	"eventsite/internal/domains"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsProvider struct {
	db *pgxpool.Pool
}

func NewStatsProvider(pg *pgxpool.Pool) *StatsProvider {
	return &StatsProvider{db: pg}
}

// SiteStats aggregates guest and wish counters of one site.
func (s *StatsProvider) SiteStats(ctx context.Context, ref domains.SiteRef) (domains.SiteStats, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT
			g.guests_total, g.guests_attending, g.guests_not_attending, g.guests_maybe,
			g.guests_pending, g.attending_party_size,
			w.wishes_total, w.wishes_pending, w.wishes_approved
		FROM (
			SELECT
				count(*) AS guests_total,
				count(*) FILTER (WHERE status = 'attending') AS guests_attending,
				count(*) FILTER (WHERE status = 'not_attending') AS guests_not_attending,
				count(*) FILTER (WHERE status = 'maybe') AS guests_maybe,
				count(*) FILTER (WHERE status = 'pending') AS guests_pending,
				COALESCE(sum(number_of_guests) FILTER (WHERE status = 'attending'), 0) AS attending_party_size
			FROM guests WHERE %[1]s = $1
		) g, (
			SELECT
				count(*) AS wishes_total,
				count(*) FILTER (WHERE status = 'pending') AS wishes_pending,
				count(*) FILTER (WHERE status = 'approved') AS wishes_approved
			FROM wishes WHERE %[1]s = $1
		) w`, scopeColumn(ref)), ref.ID)
	if err != nil {
		return domains.SiteStats{}, fmt.Errorf("site stats: %w", err)
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.SiteStats])
}

func (s *StatsProvider) CountPublishedMicrosites(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM microsites WHERE status = 'published'`).Scan(&n)
	return n, err
}

func (s *StatsProvider) CountPendingWishes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM wishes WHERE status = 'pending'`).Scan(&n)
	return n, err
}
