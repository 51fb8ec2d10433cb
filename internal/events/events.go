// Package events carries one-shot UI notifications and navigation requests from
// producers (the detail controller, the layout coordinator, the home list) to the
// single consumer running the UI loop.
package events

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBuffer is the channel capacity used by NewAggregator.
const DefaultBuffer = 8

// UIEvent is a transient user-facing event.
type UIEvent interface{ isUIEvent() }

// ShowSnackbar asks the UI to display a short-lived message.
type ShowSnackbar struct {
	ID      string
	Message string
}

func (ShowSnackbar) isUIEvent() {}

// NewSnackbar returns a snackbar event with a fresh id.
func NewSnackbar(message string) ShowSnackbar {
	return ShowSnackbar{ID: uuid.NewString(), Message: message}
}

// NavigationEvent is a request to change the active route.
type NavigationEvent interface{ isNavigationEvent() }

// ToHome returns to the start route.
type ToHome struct{}

// ToFilmInfo opens the detail for one film.
type ToFilmInfo struct {
	ID int64
}

func (ToHome) isNavigationEvent()     {}
func (ToFilmInfo) isNavigationEvent() {}

// Sink accepts UI events. Send never blocks.
type Sink interface {
	Send(UIEvent)
}

// NavigationSink accepts navigation requests. Navigate never blocks.
type NavigationSink interface {
	Navigate(NavigationEvent)
}

// Aggregator fans producer events into two bounded channels. Delivery is
// best-effort: when a channel is full the event is dropped.
type Aggregator struct {
	ui     chan UIEvent
	nav    chan NavigationEvent
	logger *zap.Logger
}

var (
	_ Sink           = (*Aggregator)(nil)
	_ NavigationSink = (*Aggregator)(nil)
)

// NewAggregator builds an aggregator with DefaultBuffer capacity per channel.
func NewAggregator(logger *zap.Logger) *Aggregator {
	return NewAggregatorSize(DefaultBuffer, logger)
}

// NewAggregatorSize builds an aggregator with the given channel capacity.
func NewAggregatorSize(size int, logger *zap.Logger) *Aggregator {
	if size <= 0 {
		size = DefaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		ui:     make(chan UIEvent, size),
		nav:    make(chan NavigationEvent, size),
		logger: logger,
	}
}

// Send enqueues a UI event, dropping it when nobody keeps up.
func (a *Aggregator) Send(ev UIEvent) {
	if ev == nil {
		return
	}
	select {
	case a.ui <- ev:
	default:
		a.logger.Debug("dropped ui event", zap.Any("event", ev))
	}
}

// Navigate enqueues a navigation request, dropping it when nobody keeps up.
func (a *Aggregator) Navigate(ev NavigationEvent) {
	if ev == nil {
		return
	}
	select {
	case a.nav <- ev:
	default:
		a.logger.Debug("dropped navigation event", zap.Any("event", ev))
	}
}

// UIEvents is the consumer side of Send.
func (a *Aggregator) UIEvents() <-chan UIEvent { return a.ui }

// Navigation is the consumer side of Navigate.
func (a *Aggregator) Navigation() <-chan NavigationEvent { return a.nav }
