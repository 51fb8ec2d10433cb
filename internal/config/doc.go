// Package config loads marquee's configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/marquee/config.toml (default)
//  3. If the config file doesn't exist, fall back to built-in defaults
//  4. MARQUEE_* environment variables override file values (MARQUEE_API_KEY
//     sets api.key, MARQUEE_UI_WIDE_WIDTH sets ui.wide_width, and so on)
//
// # Example
//
//	[api]
//	key = "00000000-0000-0000-0000-000000000000"
//	timeout = "10s"
//
//	[cache]
//	path = "~/.local/share/marquee/cache.db"
//	max_age = "720h"
//
//	[featured]
//	pages = 2
//	refresh_interval = "10m"
//
//	[ui]
//	wide_width = 120
//
//	[log]
//	file = "~/.local/share/marquee/marquee.log" # "-" disables logging
//
// Paths starting with ~ are expanded to the user's home directory and made
// absolute. Zero or negative durations and counts fall back to defaults.
package config
