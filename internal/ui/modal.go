package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Modal is an overlay that takes all key input while open. Update reports
// closed=true once the overlay should be dismissed.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (next Modal, cmd tea.Cmd, closed bool)
	View(theme Theme, width, height int) string
}
