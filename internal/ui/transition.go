package ui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
)

// settleEpsilon is how close the spring must get to its target to stop.
const settleEpsilon = 0.01

// paneTransition animates the detail pane's share of the split with a spring.
// pos runs from 0 (hidden) to 1 (fully open).
type paneTransition struct {
	spring    harmonica.Spring
	pos       float64
	vel       float64
	target    float64
	animating bool
}

func newPaneTransition() paneTransition {
	return paneTransition{
		spring: harmonica.NewSpring(harmonica.FPS(transitionFPS), transitionFrequency, transitionDamping),
	}
}

// step advances one frame and reports whether the spring is still moving.
func (t *paneTransition) step() bool {
	t.pos, t.vel = t.spring.Update(t.pos, t.vel, t.target)
	if math.Abs(t.pos-t.target) < settleEpsilon && math.Abs(t.vel) < settleEpsilon {
		t.pos, t.vel = t.target, 0
		t.animating = false
		return false
	}
	return true
}

type transitionFrameMsg struct{}

func transitionFrameCmd() tea.Cmd {
	return tea.Tick(time.Second/transitionFPS, func(time.Time) tea.Msg {
		return transitionFrameMsg{}
	})
}

// startTransition retargets the spring at the coordinator's detail fraction.
// Only one frame loop runs at a time.
func (m *Model) startTransition() tea.Cmd {
	m.transition.target = m.nav.DetailFraction()
	if m.transition.animating || m.transition.pos == m.transition.target {
		return nil
	}
	if m.width == 0 {
		// Nothing on screen yet; jump.
		m.transition.pos = m.transition.target
		return nil
	}
	m.transition.animating = true
	return transitionFrameCmd()
}

func (m *Model) stepTransition() tea.Cmd {
	if !m.transition.animating {
		return nil
	}
	m.transition.target = m.nav.DetailFraction()
	moving := m.transition.step()
	m.updateDetailViewport()
	if !moving {
		return nil
	}
	return transitionFrameCmd()
}

// paneWidths splits the width between list and detail pane for the current
// frame of the transition. detail is zero while the pane is hidden.
func (m Model) paneWidths() (list, detail int) {
	if !m.nav.Wide() {
		return m.width, 0
	}
	listOpen := max(listMinWidth, int(float64(m.width)*listFraction))
	full := max(0, m.width-listOpen)
	detail = int(math.Round(m.transition.pos * float64(full)))
	if detail < 12 {
		return m.width, 0
	}
	return m.width - detail, detail
}
