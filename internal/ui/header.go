package ui

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/marquee/internal/kinopoisk"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < 100

	parts := []string{bg.Render("marquee", styles.Logo)}
	parts = append(parts, m.renderSourceBadge(styles, bg))
	parts = append(parts,
		bg.Render("Featured:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.snapshot.Films)), styles.Text),
	)

	if timeStr := m.formatTimestamp(); timeStr != "" {
		parts = append(parts, bg.Render(timeStr, styles.MutedText))
	}

	if err := m.snapshot.LastError; err != nil {
		maxErr := 60
		if compact {
			maxErr = 24
		}
		parts = append(parts,
			bg.Render(classifyConnectionError(err), styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncateWidth(err.Error(), maxErr), styles.DangerText),
		)
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Padding(0, 1).
		Width(m.width).
		MaxHeight(1).
		Render(bg.Join(parts, "  "))
}

// renderSourceBadge shows where the featured list came from.
func (m Model) renderSourceBadge(styles Styles, bg BgStyle) string {
	switch {
	case m.snapshot.IsOffline():
		return bg.Render("● OFFLINE", styles.DangerText)
	case m.snapshot.FromCache:
		return bg.Render("● CACHED", styles.WarningText)
	case m.snapshot.HasFilms:
		return bg.Render("● LIVE", styles.SuccessText)
	default:
		return bg.Render("● CONNECTING", styles.WarningText)
	}
}

// formatTimestamp formats the last update time with relative indicator.
func (m Model) formatTimestamp() string {
	if m.lastUpdated.IsZero() {
		return ""
	}

	timeSince := time.Since(m.lastUpdated)
	timeStr := m.lastUpdated.Format("15:04:05")

	if timeSince < time.Minute {
		timeStr += " (now)"
	} else if timeSince < time.Hour {
		timeStr += fmt.Sprintf(" (%dm ago)", int(timeSince.Minutes()))
	} else if timeSince < 24*time.Hour {
		timeStr += fmt.Sprintf(" (%dh ago)", int(timeSince.Hours()))
	}

	return timeStr
}

// classifyConnectionError returns a short label for a refresh error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *kinopoisk.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case 401, 403:
			return "AUTH"
		case 402, 429:
			return "QUOTA"
		}
		return fmt.Sprintf("HTTP %d", apiErr.Status)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "TIMEOUT"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.currentView == ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"f", "Level " + levelLabel(m.logState.minLevel)},
			{"j/k", "Scroll"},
			{"L", "Films"},
			{"?", "More"},
		}
	case m.search.active:
		commands = []cmd{
			{"enter", "Apply"},
			{"esc", "Clear"},
		}
	case m.detailScreenActive():
		commands = []cmd{
			{"j/k", "Scroll"},
			{"esc", "Back"},
			{"x", "Close"},
			{"L", "Logs"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"enter", "Open"},
			{"/", "Search"},
			{"s", ternary(m.sortByRating, "Rank", "Rating")},
			{"j/k", "Navigate"},
		}
		if m.nav.ShowDetailPane() {
			commands = append(commands, cmd{"x", "Close"})
		}
		commands = append(commands, cmd{"r", "Refresh"}, cmd{"L", "Logs"}, cmd{"?", "More"})
	}

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(segments, bg.Spaces(2)))
}
