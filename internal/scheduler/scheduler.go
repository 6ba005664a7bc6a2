package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type StatsProvider interface {
	CountPublishedMicrosites(ctx context.Context) (int, error)
	CountPendingWishes(ctx context.Context) (int, error)
}

// GaugeSink receives the refreshed counts.
type GaugeSink interface {
	SetGauges(published, pendingWishes int)
}

// StatsScheduler periodically refreshes the published-microsite and
// pending-wish gauges. It never writes to the database.
type StatsScheduler struct {
	provider StatsProvider
	sink     GaugeSink
	interval time.Duration
}

func NewStatsScheduler(provider StatsProvider, sink GaugeSink, interval time.Duration) *StatsScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsScheduler{provider: provider, sink: sink, interval: interval}
}

func (s *StatsScheduler) Start(ctx context.Context) {
	if s.provider == nil || s.sink == nil {
		slog.Warn("stats scheduler skipped: no provider configured")
		return
	}
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		s.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

func (s *StatsScheduler) run(ctx context.Context) {
	published, err := s.provider.CountPublishedMicrosites(ctx)
	if err != nil {
		slog.Error("count published microsites failed", "err", err)
		return
	}
	pending, err := s.provider.CountPendingWishes(ctx)
	if err != nil {
		slog.Error("count pending wishes failed", "err", err)
		return
	}
	s.sink.SetGauges(published, pending)
	slog.Debug("stats refreshed", "published", published, "pending_wishes", pending)
}
