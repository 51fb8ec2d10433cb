package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/marquee/internal/detail"
	"github.com/five82/marquee/internal/events"
	"github.com/five82/marquee/internal/navigation"
	"github.com/five82/marquee/internal/prefs"
	"github.com/five82/marquee/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewFilms View = iota
	ViewLogs
)

// DetailSource is the detail state the UI renders. *detail.Controller implements it.
type DetailSource interface {
	State() detail.State
	Changes() <-chan struct{}
}

// EventSource delivers UI and navigation events. *events.Aggregator implements it.
type EventSource interface {
	UIEvents() <-chan events.UIEvent
	Navigation() <-chan events.NavigationEvent
}

// Refresher triggers an out-of-band featured refresh.
type Refresher interface {
	Refresh()
}

// Options configures the UI.
type Options struct {
	Context     context.Context
	Store       *state.Store
	Refresher   Refresher
	Coordinator *navigation.Coordinator
	Detail      DetailSource
	Events      EventSource
	Updates     <-chan struct{} // signalled after each featured refresh
	Logger      *zap.Logger

	WideWidth int    // terminal width at which the detail opens beside the list
	LogFile   string // application log shown by the logs view
	ThemeName string
	PrefsPath string
	LastFilm  int64 // film to reopen on start; zero opens nothing
}

// searchState holds the title filter.
type searchState struct {
	active bool // input has focus
	query  string
	input  textinput.Model
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	refresher Refresher
	nav       *navigation.Coordinator
	detail    DetailSource
	events    EventSource
	updates   <-chan struct{}
	logger    *zap.Logger
	wideWidth int
	logFile   string
	prefsPath string
	lastFilm  int64

	// UI state
	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	modal       Modal

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time

	// Film list state
	cursor       int
	sortByRating bool
	search       searchState

	// Detail state
	detailState    detail.State
	detailViewport viewport.Model
	spinner        spinner.Model
	transition     paneTransition

	// Snackbar
	snackbar *snackbarState

	// Logs
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	nav := opts.Coordinator
	if nav == nil {
		nav = navigation.NewCoordinator(nil, logger)
	}
	wideWidth := opts.WideWidth
	if wideWidth <= 0 {
		wideWidth = 120
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = ThemeNames()[0]
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	input := textinput.New()
	input.Placeholder = "Search titles..."
	input.Prompt = "/"
	input.CharLimit = 80

	theme := GetTheme(themeName)
	return Model{
		ctx:         ctx,
		store:       opts.Store,
		refresher:   opts.Refresher,
		nav:         nav,
		detail:      opts.Detail,
		events:      opts.Events,
		updates:     opts.Updates,
		logger:      logger,
		wideWidth:   wideWidth,
		logFile:     opts.LogFile,
		prefsPath:   prefsPath,
		lastFilm:    opts.LastFilm,
		keys:        DefaultKeyMap(),
		theme:       theme,
		currentView: ViewFilms,
		search:      searchState{input: input},
		spinner:     newSpinner(theme),
		transition:  newPaneTransition(),
		logState:    logState{follow: true},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(snapshotInterval),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	cmds = append(cmds, m.waitForDetail(), m.waitForUIEvent(), m.waitForNavigation(), m.waitForUpdates())
	if m.lastFilm > 0 {
		id := m.lastFilm
		cmds = append(cmds, func() tea.Msg { return restoreFilmMsg{id: id} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.nav.SetWide(m.width >= m.wideWidth)
		m.clampCursor()
		m.updateDetailViewport()
		m.updateLogViewport()
		cmd := m.startTransition()
		return m, cmd

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(snapshotInterval)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case storeUpdatedMsg:
		cmds := []tea.Cmd{m.waitForUpdates()}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case restoreFilmMsg:
		m.logger.Debug("restoring last film", zap.Int64("film_id", msg.id))
		m.nav.Select(msg.id)
		cmd := m.afterNavigation()
		return m, cmd

	case navigationMsg:
		m.nav.Handle(msg.event)
		cmd := m.afterNavigation()
		return m, tea.Batch(cmd, m.waitForNavigation())

	case uiEventMsg:
		cmd := m.handleUIEvent(msg.event)
		return m, tea.Batch(cmd, m.waitForUIEvent())

	case detailChangedMsg:
		if m.detail == nil {
			return m, nil
		}
		wasLoading := m.detailState.Loading
		m.detailState = m.detail.State()
		m.updateDetailViewport()
		cmds := []tea.Cmd{m.waitForDetail()}
		if m.detailState.Loading && !wasLoading {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.detailState.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateDetailViewport()
		return m, cmd

	case snackbarExpiredMsg:
		if m.snackbar != nil && m.snackbar.id == msg.id {
			m.snackbar = nil
		}
		return m, nil

	case transitionFrameMsg:
		cmd := m.stepTransition()
		return m, cmd

	case logsMsg:
		m.handleLogs(msg)
		return m, nil

	case logTickMsg:
		if m.currentView != ViewLogs {
			m.logState.ticking = false
			return m, nil
		}
		cmds := []tea.Cmd{logTickCmd()}
		if m.logState.follow {
			cmds = append(cmds, readLogsCmd(m.logFile))
		}
		return m, tea.Batch(cmds...)

	case prefsChangedMsg:
		if msg.prefs.Theme != "" && msg.prefs.Theme != m.theme.Name {
			m.logger.Debug("theme changed on disk", zap.String("theme", msg.prefs.Theme))
			m.setTheme(msg.prefs.Theme)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	// The search input swallows everything else while focused.
	if m.search.active {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.modal = newHelpModal(m.keys)
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.setTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.refresher != nil {
			m.refresher.Refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		if m.currentView == ViewLogs {
			m.currentView = ViewFilms
			return m, nil
		}
		cmd := m.openLogs()
		return m, cmd
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleFilmsKey(msg)
	}
}

// handleFilmsKey processes keyboard input for the film list and detail.
func (m Model) handleFilmsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	detailScreen := m.detailScreenActive()

	switch {
	case key.Matches(msg, m.keys.Back):
		if m.search.query != "" && !detailScreen && !m.nav.ShowDetailPane() {
			m.clearSearch()
			return m, nil
		}
		if !m.nav.Back() {
			return m.quit()
		}
		cmd := m.afterNavigation()
		return m, cmd

	case key.Matches(msg, m.keys.Dismiss):
		m.nav.Dismiss()
		cmd := m.afterNavigation()
		return m, cmd

	case key.Matches(msg, m.keys.HalfPageDown):
		m.detailViewport.SetYOffset(m.detailViewport.YOffset + max(1, m.detailViewport.Height/2))
		return m, nil

	case key.Matches(msg, m.keys.HalfPageUp):
		m.detailViewport.SetYOffset(m.detailViewport.YOffset - max(1, m.detailViewport.Height/2))
		return m, nil
	}

	if detailScreen {
		switch {
		case key.Matches(msg, m.keys.Down):
			m.detailViewport.SetYOffset(m.detailViewport.YOffset + 1)
		case key.Matches(msg, m.keys.Up):
			m.detailViewport.SetYOffset(m.detailViewport.YOffset - 1)
		case key.Matches(msg, m.keys.Top):
			m.detailViewport.GotoTop()
		case key.Matches(msg, m.keys.Bottom):
			m.detailViewport.GotoBottom()
		}
		return m, nil
	}

	return m.handleListKey(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.savePrefs()
	return m, tea.Quit
}

func (m *Model) setTheme(name string) {
	m.theme = GetTheme(name)
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	m.updateDetailViewport()
	m.logState.dirty = true
	m.updateLogViewport()
}

// savePrefs persists the theme and the open film. Failures are logged only.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name}
	if id := m.nav.Selected(); id != nil {
		p.LastFilm = *id
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

// afterNavigation resyncs everything that depends on the coordinator.
func (m *Model) afterNavigation() tea.Cmd {
	m.updateDetailViewport()
	return m.startTransition()
}

// detailScreenActive reports whether the detail fills the screen.
func (m Model) detailScreenActive() bool {
	return !m.nav.Wide() && m.nav.Active().IsFilmInfo()
}

func (m *Model) handleUIEvent(ev events.UIEvent) tea.Cmd {
	switch ev := ev.(type) {
	case events.ShowSnackbar:
		return m.showSnackbar(ev)
	}
	return nil
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	content := m.renderContent()
	if bar := m.renderSnackbar(); bar != "" {
		content = overlayBottom(content, bar)
	}
	b.WriteString(content)

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderFilms()
	}
}

// contentHeight is the height below the header and command bar.
func (m Model) contentHeight() int {
	return max(3, m.height-chromeHeight)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type storeUpdatedMsg struct{}

type restoreFilmMsg struct{ id int64 }

type navigationMsg struct{ event events.NavigationEvent }

type uiEventMsg struct{ event events.UIEvent }

type detailChangedMsg struct{}

type prefsChangedMsg struct{ prefs prefs.Prefs }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func (m Model) waitForDetail() tea.Cmd {
	if m.detail == nil {
		return nil
	}
	return waitForDetailCmd(m.ctx, m.detail.Changes())
}

func (m Model) waitForUIEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return waitForUIEventCmd(m.ctx, m.events.UIEvents())
}

func (m Model) waitForNavigation() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return waitForNavigationCmd(m.ctx, m.events.Navigation())
}

func (m Model) waitForUpdates() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	ctx, ch := m.ctx, m.updates
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return storeUpdatedMsg{}
		}
	}
}

func waitForDetailCmd(ctx context.Context, changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			return detailChangedMsg{}
		}
	}
}

func waitForUIEventCmd(ctx context.Context, ch <-chan events.UIEvent) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			return uiEventMsg{event: ev}
		}
	}
}

func waitForNavigationCmd(ctx context.Context, ch <-chan events.NavigationEvent) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			return navigationMsg{event: ev}
		}
	}
}

// Run starts the Bubble Tea program. Preference changes made on disk while it
// runs are applied live.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))

	watchCtx, stopWatch := context.WithCancel(m.ctx)
	defer stopWatch()
	go func() {
		err := prefs.Watch(watchCtx, m.prefsPath, func(pr prefs.Prefs) {
			p.Send(prefsChangedMsg{prefs: pr})
		})
		if err != nil {
			m.logger.Warn("prefs watch stopped", zap.Error(err))
		}
	}()

	_, err := p.Run()
	return err
}
