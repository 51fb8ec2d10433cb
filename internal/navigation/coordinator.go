// Package navigation decides how film selection is presented: inline in a
// split pane when the terminal is wide, or as a pushed full-screen route when
// it is narrow. It keeps the back stack consistent when the layout flips.
package navigation

import (
	"go.uber.org/zap"

	"github.com/five82/marquee/internal/events"
)

// Coordinator owns the selected film id and the navigation stack.
type Coordinator struct {
	stack    *Stack
	requests events.NavigationSink
	logger   *zap.Logger

	wide     bool
	wideSet  bool
	selected *int64
	onSelect []func(*int64)
}

// NewCoordinator builds a coordinator starting at the home route. Navigation
// requests it raises itself (re-opening the detail after a layout change) are
// posted to requests and come back through Handle.
func NewCoordinator(requests events.NavigationSink, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		stack:    NewStack(Home()),
		requests: requests,
		logger:   logger,
	}
}

// OnSelect registers fn to run whenever the selected id changes.
func (c *Coordinator) OnSelect(fn func(*int64)) {
	if fn != nil {
		c.onSelect = append(c.onSelect, fn)
	}
}

// Wide reports the current layout mode.
func (c *Coordinator) Wide() bool { return c.wide }

// Selected returns the selected film id, or nil.
func (c *Coordinator) Selected() *int64 {
	if c.selected == nil {
		return nil
	}
	id := *c.selected
	return &id
}

// Active returns the active route.
func (c *Coordinator) Active() Route { return c.stack.Active() }

// Depth returns the number of routes above home.
func (c *Coordinator) Depth() int { return c.stack.Depth() }

// ShowDetailPane reports whether the detail renders inline beside the list.
func (c *Coordinator) ShowDetailPane() bool {
	return c.wide && c.selected != nil
}

// DetailFraction is the target visibility of the inline detail pane: 1 when
// shown, 0 when hidden.
func (c *Coordinator) DetailFraction() float64 {
	if c.ShowDetailPane() {
		return 1
	}
	return 0
}

// SetWide applies a layout change. Repeated calls with the same value are
// no-ops.
func (c *Coordinator) SetWide(wide bool) {
	if c.wideSet && c.wide == wide {
		return
	}
	c.wideSet = true
	c.wide = wide
	c.logger.Debug("layout changed", zap.Bool("wide", wide), zap.Stringer("route", c.stack.Active()))

	switch {
	case wide && c.stack.Active().IsFilmInfo():
		// The detail renders inline now; drop its full-screen route.
		c.stack.Pop()
	case !wide && c.selected != nil:
		c.post(events.ToFilmInfo{ID: *c.selected})
	}
}

// Select asks to open the detail for id.
func (c *Coordinator) Select(id int64) {
	c.post(events.ToFilmInfo{ID: id})
}

// Handle processes one navigation request.
func (c *Coordinator) Handle(ev events.NavigationEvent) {
	switch ev := ev.(type) {
	case events.ToFilmInfo:
		if c.wide {
			c.setSelected(&ev.ID)
			return
		}
		// Single top: the film's route is never stacked on itself.
		if active := c.stack.Active(); !active.IsFilmInfo() || active.FilmID == nil || *active.FilmID != ev.ID {
			c.stack.Push(FilmInfo(ev.ID))
		}
		c.enter(c.stack.Active())
	case events.ToHome:
		c.stack.PopToStart()
	}
}

// enter applies the arguments of a newly active route.
func (c *Coordinator) enter(r Route) {
	if r.IsFilmInfo() && !c.wide && r.FilmID != nil {
		c.setSelected(r.FilmID)
	}
}

// Dismiss closes the detail.
func (c *Coordinator) Dismiss() {
	if !c.wide && c.stack.Active().IsFilmInfo() {
		c.stack.Pop()
	}
	c.setSelected(nil)
}

// Back handles the back action. While the inline pane is open it only closes
// the pane. It returns false when there is nothing to go back to.
func (c *Coordinator) Back() bool {
	if c.wide && c.selected != nil {
		c.setSelected(nil)
		return true
	}
	removed, ok := c.stack.Pop()
	if !ok {
		return false
	}
	if removed.IsFilmInfo() {
		c.setSelected(nil)
	}
	return true
}

func (c *Coordinator) post(ev events.NavigationEvent) {
	if c.requests == nil {
		c.Handle(ev)
		return
	}
	c.requests.Navigate(ev)
}

func (c *Coordinator) setSelected(id *int64) {
	if equalID(c.selected, id) {
		return
	}
	if id == nil {
		c.selected = nil
	} else {
		v := *id
		c.selected = &v
	}
	for _, fn := range c.onSelect {
		fn(c.Selected())
	}
}

func equalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
