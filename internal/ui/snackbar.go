package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/marquee/internal/events"
)

// snackbarState is the toast currently on screen.
type snackbarState struct {
	id      string
	message string
}

type snackbarExpiredMsg struct{ id string }

// showSnackbar replaces any visible toast. Each toast schedules its own expiry,
// so an older timer never clears a newer toast.
func (m *Model) showSnackbar(ev events.ShowSnackbar) tea.Cmd {
	m.snackbar = &snackbarState{id: ev.ID, message: ev.Message}
	id := ev.ID
	return tea.Tick(snackbarDuration, func(time.Time) tea.Msg {
		return snackbarExpiredMsg{id: id}
	})
}

func (m Model) renderSnackbar() string {
	if m.snackbar == nil {
		return ""
	}
	width := min(m.width-4, max(30, lipgloss.Width(m.snackbar.message)+4))
	box := lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Warning)).
		Foreground(lipgloss.Color(m.theme.Background)).
		Bold(true).
		Padding(0, 2).
		Width(width).
		Render(truncateWidth(m.snackbar.message, max(1, width-4)))
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
}

// overlayBottom replaces the second-to-last line of content with bar, keeping
// the bottom border of the pane visible.
func overlayBottom(content, bar string) string {
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content + "\n" + bar
	}
	lines[len(lines)-2] = bar
	return strings.Join(lines, "\n")
}
