package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type mockStats struct {
	published, pending int
	err                error
}

func (m mockStats) CountPublishedMicrosites(context.Context) (int, error) { return m.published, m.err }
func (m mockStats) CountPendingWishes(context.Context) (int, error)       { return m.pending, nil }

type recordingSink struct {
	mu    sync.Mutex
	calls [][2]int
	done  chan struct{}
}

func (r *recordingSink) SetGauges(published, pending int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, [2]int{published, pending})
	if len(r.calls) == 1 {
		close(r.done)
	}
}

func TestStatsSchedulerRunsImmediately(t *testing.T) {
	sink := &recordingSink{done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	NewStatsScheduler(mockStats{published: 4, pending: 2}, sink, time.Hour).Start(ctx)

	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not run on start")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.calls[0] != [2]int{4, 2} {
		t.Errorf("gauges = %v", sink.calls[0])
	}
}

func TestStatsSchedulerSkipsOnError(t *testing.T) {
	sink := &recordingSink{done: make(chan struct{})}
	s := NewStatsScheduler(mockStats{err: errors.New("db down")}, sink, 0)
	s.run(context.Background())

	if len(sink.calls) != 0 {
		t.Errorf("gauges should not be touched on error, got %v", sink.calls)
	}
	if s.interval != time.Minute {
		t.Errorf("default interval = %v", s.interval)
	}
}
