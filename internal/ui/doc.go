// Package ui is marquee's Bubble Tea interface.
//
// # Layout
//
// The screen is a header (source badge, featured count, last refresh), a
// command bar with the keys for the current view, and the content area. The
// content is either the film list or the logs view.
//
// How a selected film is shown depends on the terminal width, decided by
// navigation.Coordinator:
//
//   - wide (width >= ui.wide_width): the detail opens in a pane beside the
//     list. The split animates with a harmonica spring driven by
//     Coordinator.DetailFraction.
//   - narrow: the detail replaces the list as its own screen (a pushed
//     film_info route). esc returns to the list.
//
// Resizing across the threshold converts one form into the other without
// losing the selection.
//
// # Data Flow
//
//	state.Store ──(tick)──────────> snapshotMsg ──> film list
//	Poller update signal ──────────> storeUpdatedMsg ─> snapshotMsg
//	events.Aggregator.Navigation ─> navigationMsg ─> Coordinator.Handle
//	events.Aggregator.UIEvents ───> uiEventMsg ───> snackbar
//	detail.Controller.Changes ────> detailChangedMsg ─> detail viewport
//
// Every coordinator call happens inside Update, on the program goroutine.
// Commands only wait on channels and turn what they receive into messages.
//
// # Files
//
//   - app.go: Model, Update loop, messages and Run
//   - home.go: film list, search input, bordered boxes
//   - search.go: title matching with typo tolerance
//   - detail.go: detail rendering into a viewport
//   - transition.go: split-pane spring
//   - snackbar.go: transient notifications
//   - logs.go: tail of the application log
//   - header.go, help.go, keys.go, theme.go: chrome
package ui
