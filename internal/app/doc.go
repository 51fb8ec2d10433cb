// Package app provides the orchestration layer for marquee.
//
// # Overview
//
// This package wires together configuration, the film cache, the Kinopoisk
// client, the detail controller, the navigation coordinator, the featured
// poller and the UI. It is the composition root.
//
// # Startup
//
//  1. Load config from ~/.config/marquee/config.toml (MARQUEE_* overrides)
//  2. Build the zap file logger
//  3. Open the SQLite cache and prune entries older than cache.max_age
//  4. Create the Kinopoisk client and the repository over client and cache
//  5. Create the event aggregator, detail controller and coordinator, and
//     route coordinator selections into Controller.Load
//  6. Start the featured poller against a shared state.Store
//  7. Start the TUI and block until the user exits or the context cancels
//
// The headless commands use Open and Services directly and skip the UI.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> Open()                    config, logger, cache, client
//	       ├─────> events.NewAggregator()    snackbar + navigation channels
//	       ├─────> detail.NewController()    film stream -> detail.State
//	       ├─────> navigation.NewCoordinator() selection, route stack
//	       ├─────> Poller.Start()            featured list -> state.Store
//	       └─────> ui.Run()                  Bubble Tea program (blocks)
//
// # Polling Behavior
//
// The poller refreshes the featured list every featured.refresh_interval
// (default 10 minutes). A failed refresh keeps the previous list, and the
// wait doubles per consecutive failure up to 30 minutes. The UI can request
// an immediate refresh, and every refresh signals the UI to re-read the
// store.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Config file unreadable or invalid
//   - Cache cannot be opened or migrated
//   - Invalid API base URL
//
// Everything after startup is absorbed into state: the detail pane shows
// errors, the header shows offline status, and the log records details.
package app
