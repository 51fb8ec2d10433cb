// Package detail holds the film detail state and reduces a film's fetch stream
// into it.
package detail

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/marquee/internal/events"
	"github.com/five82/marquee/internal/kinopoisk"
	"github.com/five82/marquee/internal/resource"
)

// CachedFallbackMessage is shown when an error arrives together with cached data.
const CachedFallbackMessage = "Server unavailable. Showing data loaded from cache."

// Repository streams the load of one film.
type Repository interface {
	FilmInfo(ctx context.Context, id int64) <-chan resource.Result[kinopoisk.Film]
}

// State is the presentation state of the detail pane.
type State struct {
	Loading bool
	Error   string
	Film    *kinopoisk.Film
}

// HasError reports whether the last load failed.
func (s State) HasError() bool { return s.Error != "" }

// Controller owns a State and at most one live subscription.
type Controller struct {
	repo   Repository
	sink   events.Sink
	logger *zap.Logger

	mu      sync.Mutex
	state   State
	gen     uint64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	changes chan struct{}
}

// NewController builds a Controller. sink receives the cached-fallback
// notification and may be nil. Send is called with the controller's lock held,
// so it must not block or call back into the controller.
func NewController(repo Repository, sink events.Sink, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		repo:    repo,
		sink:    sink,
		logger:  logger,
		changes: make(chan struct{}, 1),
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Changes is signalled after every state write. Signals coalesce; read State
// after receiving.
func (c *Controller) Changes() <-chan struct{} { return c.changes }

// Load starts loading filmID, superseding any previous load. A nil id clears
// the loading and error flags, keeps the current film, and fetches nothing.
func (c *Controller) Load(filmID *int64) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if filmID == nil {
		c.state.Loading = false
		c.state.Error = ""
		c.mu.Unlock()
		c.signal()
		return
	}

	c.state = State{}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	id := *filmID
	c.wg.Add(1)
	c.mu.Unlock()
	c.signal()

	c.logger.Debug("loading film", zap.Int64("film_id", id), zap.Uint64("generation", gen))
	stream := c.repo.FilmInfo(ctx, id)
	go c.consume(ctx, gen, stream)
}

func (c *Controller) consume(ctx context.Context, gen uint64, stream <-chan resource.Result[kinopoisk.Film]) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-stream:
			if !ok {
				return
			}
			if !c.apply(gen, res) {
				return
			}
		}
	}
}

// apply reduces one result into the state. It returns false when gen has been
// superseded, in which case nothing is written.
func (c *Controller) apply(gen uint64, res resource.Result[kinopoisk.Film]) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	film := c.state.Film
	if res.HasData() {
		film = res.Data()
	}
	switch res.Kind() {
	case resource.KindLoading:
		c.state = State{Loading: true, Film: film}
	case resource.KindSuccess:
		c.state = State{Film: film}
	case resource.KindError:
		c.state = State{Error: res.Message(), Film: film}
		// Posted under the generation check and before the change signal, so
		// a reader woken by Changes already finds the event in the sink.
		if res.HasData() && c.sink != nil {
			c.sink.Send(events.NewSnackbar(CachedFallbackMessage))
		}
	}
	c.mu.Unlock()

	c.signal()
	return true
}

func (c *Controller) signal() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// Close cancels the live subscription and waits for it to stop.
func (c *Controller) Close() {
	c.mu.Lock()
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}
