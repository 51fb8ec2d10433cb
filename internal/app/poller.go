package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/marquee/internal/repository"
	"github.com/five82/marquee/internal/state"
)

const (
	defaultPollInterval = 10 * time.Minute
	maxBackoff          = 30 * time.Minute
)

// FeaturedSource supplies the featured list. *repository.Repository implements it.
type FeaturedSource interface {
	Featured(ctx context.Context, pages int) (repository.FeaturedList, error)
}

// Poller refreshes the featured list in the background.
type Poller struct {
	store    *state.Store
	source   FeaturedSource
	interval time.Duration
	pages    int
	logger   *zap.Logger
	trigger  chan struct{}
	updated  func()
}

// NewPoller builds a Poller. A non-positive interval uses the default.
func NewPoller(store *state.Store, source FeaturedSource, interval time.Duration, pages int, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		store:    store,
		source:   source,
		interval: interval,
		pages:    pages,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// OnUpdate registers fn to be called after every refresh. Call before Start.
func (p *Poller) OnUpdate(fn func()) {
	p.updated = fn
}

// Refresh asks the poller to refresh now. Requests made while one is pending
// are coalesced.
func (p *Poller) Refresh() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Start launches the background goroutine and returns immediately. It waits
// the interval between refreshes, backing off exponentially while the
// catalogue keeps failing.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			case <-p.trigger:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}

			p.RefreshOnce(ctx)
			if ctx.Err() != nil {
				return
			}
			failures := p.store.Snapshot().ConsecutiveFailures
			wait := calculateBackoff(failures, p.interval)
			if failures > 0 {
				p.logger.Debug("featured refresh backing off",
					zap.Int("failures", failures),
					zap.Duration("wait", wait))
			}
			timer.Reset(wait)
		}
	}()
}

// RefreshOnce fetches the featured list and records the outcome in the store.
func (p *Poller) RefreshOnce(ctx context.Context) {
	list, err := p.source.Featured(ctx, p.pages)
	if err != nil && ctx.Err() != nil {
		return
	}
	p.store.Update(list, err)
	if err != nil {
		p.logger.Warn("featured refresh failed",
			zap.Bool("from_cache", list.FromCache),
			zap.Int("films", len(list.Films)),
			zap.Error(err))
	} else {
		p.logger.Info("featured refreshed", zap.Int("films", len(list.Films)))
	}
	if p.updated != nil {
		p.updated()
	}
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
