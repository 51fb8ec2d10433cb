package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/marquee/internal/logtail"
)

// logLevels is the cycle of minimum levels for the logs view; "" shows all.
var logLevels = []string{"", "INFO", "WARN", "ERROR"}

// logState holds all log-related state.
type logState struct {
	entries  []logtail.Entry
	err      error
	follow   bool
	minLevel string
	ticking  bool
	dirty    bool
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

type logTickMsg struct{}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logsMsg{}
		}
		entries, err := logtail.Tail(path, logTailLines)
		return logsMsg{entries: entries, err: err}
	}
}

func logTickCmd() tea.Cmd {
	return tea.Tick(logRefreshInterval, func(time.Time) tea.Msg {
		return logTickMsg{}
	})
}

// openLogs switches to the logs view and starts tailing.
func (m *Model) openLogs() tea.Cmd {
	m.currentView = ViewLogs
	m.updateLogViewport()
	cmds := []tea.Cmd{readLogsCmd(m.logFile)}
	if !m.logState.ticking {
		m.logState.ticking = true
		cmds = append(cmds, logTickCmd())
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleLogs(msg logsMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
	}
	m.logState.dirty = true
	m.updateLogViewport()
}

// handleLogsKey processes keyboard input for the logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.currentView = ViewFilms
		return m, nil

	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, readLogsCmd(m.logFile)
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleLevel):
		m.logState.minLevel = nextLevel(m.logState.minLevel)
		m.logState.dirty = true
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.logState.follow = false
		m.logViewport.SetYOffset(m.logViewport.YOffset - 1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.SetYOffset(m.logViewport.YOffset + 1)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logState.follow = false
		m.logViewport.SetYOffset(m.logViewport.YOffset - max(1, m.logViewport.Height/2))
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.SetYOffset(m.logViewport.YOffset + max(1, m.logViewport.Height/2))
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	}
	return m, nil
}

func nextLevel(current string) string {
	for i, level := range logLevels {
		if level == current {
			return logLevels[(i+1)%len(logLevels)]
		}
	}
	return logLevels[0]
}

func levelLabel(level string) string {
	if level == "" {
		return "all"
	}
	return strings.ToLower(level) + "+"
}

// updateLogViewport resizes the viewport and re-renders when the content changed.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	width := max(1, m.width-4)
	height := max(1, m.contentHeight()-3) // borders + status line
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
		m.logState.dirty = true
	}
	if m.logViewport.Width != width {
		m.logState.dirty = true
	}
	m.logViewport.Width = width
	m.logViewport.Height = height

	if m.logState.dirty {
		m.logViewport.SetContent(m.renderLogContent(width))
		m.logState.dirty = false
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the logs view.
func (m Model) renderLogs() string {
	title := "Log"
	if m.logFile != "" {
		title = "Log " + m.logFile
	}
	box := m.renderTitledBox(title, m.logViewport.View(), m.width, m.contentHeight()-1, true)
	return box + "\n" + m.renderLogStatus()
}

func (m Model) renderLogStatus() string {
	styles := m.theme.Styles()
	if m.logFile == "" {
		return styles.MutedText.Render("Logging is disabled (log.file = \"-\")")
	}
	if m.logState.err != nil {
		return styles.DangerText.Render(truncateWidth(m.logState.err.Error(), m.width))
	}
	shown := len(logtail.Filter(m.logState.entries, m.logState.minLevel))
	status := fmt.Sprintf("%d/%d entries  level %s  auto-tail %s",
		shown, len(m.logState.entries), levelLabel(m.logState.minLevel), ternary(m.logState.follow, "on", "off"))
	return styles.FaintText.Render(status)
}

// renderLogContent renders the filtered entries, one per line.
func (m Model) renderLogContent(width int) string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()

	entries := logtail.Filter(m.logState.entries, m.logState.minLevel)
	if len(entries) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, bg.FillLine(m.renderLogEntry(e, styles, bg), width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogEntry(e logtail.Entry, styles Styles, bg BgStyle) string {
	if e.Level == "" && e.Message == "" {
		return bg.Render(e.Raw, styles.MutedText)
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(bg.Render(e.Time.Local().Format("15:04:05"), styles.FaintText))
		b.WriteString(bg.Space())
	}
	b.WriteString(bg.Render(fmt.Sprintf("%-5s", e.Level), levelStyle(e.Level, styles).Bold(true)))
	b.WriteString(bg.Space())
	b.WriteString(bg.Render(e.Message, styles.Text))
	if fields := logtail.FormatFields(e.Fields); fields != "" {
		b.WriteString(bg.Spaces(2))
		b.WriteString(bg.Render(fields, styles.MutedText))
	}
	return b.String()
}

// levelStyle returns the style for a log level.
func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "INFO":
		return styles.SuccessText
	case "WARN":
		return styles.WarningText
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return styles.DangerText
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.Text
	}
}
