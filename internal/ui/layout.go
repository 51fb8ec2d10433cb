package ui

import "time"

// Pane sizing.
const (
	// listMinWidth is the narrowest the film list gets while the detail pane
	// is open.
	listMinWidth = 40

	// listFraction is the share of the width the list keeps when the detail
	// pane is fully open.
	listFraction = 0.42

	// chromeHeight is the header plus the command bar.
	chromeHeight = 2
)

// Timing constants.
const (
	// snackbarDuration is how long a snackbar stays on screen.
	snackbarDuration = 4 * time.Second

	// snapshotInterval is how often the featured store is re-read.
	snapshotInterval = time.Second

	// logRefreshInterval is how often the logs view re-reads the log file.
	logRefreshInterval = 2 * time.Second

	// logTailLines is the number of log lines kept in the logs view.
	logTailLines = 500
)

// Pane transition spring.
const (
	transitionFPS       = 60
	transitionFrequency = 7.0
	transitionDamping   = 0.9
)
