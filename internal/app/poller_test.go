package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/five82/marquee/internal/kinopoisk"
	"github.com/five82/marquee/internal/repository"
	"github.com/five82/marquee/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 4 * time.Minute

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 4 * time.Minute},
		{"negative failures", -1, 4 * time.Minute},
		{"one failure", 1, 8 * time.Minute},
		{"two failures", 2, 16 * time.Minute},
		{"three failures capped", 3, 30 * time.Minute}, // Would be 32m, capped to 30m
		{"many failures capped", 40, 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := defaultPollInterval
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeSource struct {
	mu    sync.Mutex
	calls int
	list  repository.FeaturedList
	err   error
}

func (f *fakeSource) Featured(context.Context, int) (repository.FeaturedList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.list, f.err
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestPoller_RefreshOnceUpdatesStore(t *testing.T) {
	store := &state.Store{}
	source := &fakeSource{list: repository.FeaturedList{Films: []kinopoisk.FilmSummary{{FilmID: 1}}}}
	p := NewPoller(store, source, time.Hour, 1, nil)

	updates := 0
	p.OnUpdate(func() { updates++ })
	p.RefreshOnce(context.Background())

	snap := store.Snapshot()
	require.Len(t, snap.Films, 1)
	assert.NoError(t, snap.LastError)
	assert.Equal(t, 1, updates)

	source.err = errors.New("offline")
	p.RefreshOnce(context.Background())
	snap = store.Snapshot()
	assert.Equal(t, 1, snap.ConsecutiveFailures)
	assert.EqualError(t, snap.LastError, "offline")
}

func TestPoller_StartRefreshesImmediatelyAndOnTrigger(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &state.Store{}
	source := &fakeSource{}
	p := NewPoller(store, source, time.Hour, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	require.Eventually(t, func() bool { return source.Calls() == 1 }, time.Second, 5*time.Millisecond)
	p.Refresh()
	require.Eventually(t, func() bool { return source.Calls() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
}
