package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/marquee/internal/detail"
	"github.com/five82/marquee/internal/events"
	"github.com/five82/marquee/internal/kinopoisk"
	"github.com/five82/marquee/internal/navigation"
	"github.com/five82/marquee/internal/prefs"
	"github.com/five82/marquee/internal/repository"
	"github.com/five82/marquee/internal/state"
)

type fakeDetail struct {
	mu      sync.Mutex
	state   detail.State
	changes chan struct{}
}

func newFakeDetail() *fakeDetail {
	return &fakeDetail{changes: make(chan struct{}, 1)}
}

func (f *fakeDetail) State() detail.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeDetail) Changes() <-chan struct{} { return f.changes }

func (f *fakeDetail) set(st detail.State) {
	f.mu.Lock()
	f.state = st
	f.mu.Unlock()
}

func testFilms() []kinopoisk.FilmSummary {
	return []kinopoisk.FilmSummary{
		{FilmID: 301, NameRu: "Матрица", NameEn: "The Matrix", Year: "1999", Rating: "8.5"},
		{FilmID: 258687, NameRu: "Интерстеллар", NameEn: "Interstellar", Year: "2014", Rating: "8.6"},
		{FilmID: 326, NameRu: "Побег из Шоушенка", Year: "1994", Rating: "9.1"},
	}
}

type testHarness struct {
	model     Model
	nav       *navigation.Coordinator
	detail    *fakeDetail
	loads     []*int64
	prefsPath string
}

func newHarness(t *testing.T, width int) *testHarness {
	t.Helper()
	store := &state.Store{}
	store.Update(repository.FeaturedList{Films: testFilms(), FetchedAt: time.Now()}, nil)

	h := &testHarness{
		nav:       navigation.NewCoordinator(nil, nil),
		detail:    newFakeDetail(),
		prefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	}
	h.nav.OnSelect(func(id *int64) { h.loads = append(h.loads, id) })

	h.model = New(Options{
		Context:     context.Background(),
		Store:       store,
		Coordinator: h.nav,
		Detail:      h.detail,
		WideWidth:   120,
		PrefsPath:   h.prefsPath,
	})
	h.send(tea.WindowSizeMsg{Width: width, Height: 30})
	h.send(snapshotMsg(store.Snapshot()))
	return h
}

func (h *testHarness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

func (h *testHarness) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		cmd = h.send(keyMsg(k))
	}
	return cmd
}

// settle runs transition frames until the spring stops.
func (h *testHarness) settle(t *testing.T) {
	t.Helper()
	for i := 0; i < 1000 && h.model.transition.animating; i++ {
		h.send(transitionFrameMsg{})
	}
	require.False(t, h.model.transition.animating, "transition did not settle")
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestWideSelectOpensPaneBesideList(t *testing.T) {
	h := newHarness(t, 150)

	cmd := h.press("enter")
	require.NotNil(t, h.nav.Selected())
	assert.Equal(t, int64(301), *h.nav.Selected())
	assert.True(t, h.nav.ShowDetailPane())
	assert.False(t, h.model.detailScreenActive())
	assert.Equal(t, 1, h.nav.Depth())
	assert.NotNil(t, cmd, "expected a transition frame")
	require.Len(t, h.loads, 1)

	h.settle(t)
	assert.Equal(t, 1.0, h.model.transition.pos)
	list, pane := h.model.paneWidths()
	assert.Equal(t, 63, list)
	assert.Equal(t, 87, pane)
}

func TestDismissClosesPane(t *testing.T) {
	h := newHarness(t, 150)
	h.press("enter")
	h.settle(t)

	h.press("x")
	assert.Nil(t, h.nav.Selected())
	h.settle(t)
	_, pane := h.model.paneWidths()
	assert.Zero(t, pane)
}

func TestNarrowSelectPushesDetailScreen(t *testing.T) {
	h := newHarness(t, 80)

	h.press("j", "enter")
	require.NotNil(t, h.nav.Selected())
	assert.Equal(t, int64(258687), *h.nav.Selected())
	assert.True(t, h.model.detailScreenActive())
	assert.Equal(t, 2, h.nav.Depth())

	cmd := h.press("esc")
	assert.False(t, isQuit(cmd))
	assert.False(t, h.model.detailScreenActive())
	assert.Nil(t, h.nav.Selected())
	assert.Equal(t, 1, h.nav.Depth())
}

func TestResizeMovesDetailBetweenScreenAndPane(t *testing.T) {
	h := newHarness(t, 80)
	h.press("enter")
	require.True(t, h.model.detailScreenActive())

	h.send(tea.WindowSizeMsg{Width: 150, Height: 30})
	assert.False(t, h.model.detailScreenActive())
	assert.Equal(t, 1, h.nav.Depth())
	require.NotNil(t, h.nav.Selected())
	assert.True(t, h.nav.ShowDetailPane())

	h.send(tea.WindowSizeMsg{Width: 80, Height: 30})
	assert.True(t, h.model.detailScreenActive())
	assert.Equal(t, 2, h.nav.Depth())
	assert.Equal(t, int64(301), *h.nav.Selected())
}

func TestBackAtHomeQuits(t *testing.T) {
	h := newHarness(t, 150)
	assert.True(t, isQuit(h.press("esc")))
}

func TestBackInWidePaneClearsSelection(t *testing.T) {
	h := newHarness(t, 150)
	h.press("enter")

	cmd := h.press("esc")
	assert.False(t, isQuit(cmd))
	assert.Nil(t, h.nav.Selected())
	require.Len(t, h.loads, 2)
	assert.Nil(t, h.loads[1])
}

func TestSearchFiltersAndBackClearsQueryFirst(t *testing.T) {
	h := newHarness(t, 150)

	h.press("/", "и", "н", "т", "е", "р")
	assert.True(t, h.model.search.active)
	h.press("enter")
	assert.False(t, h.model.search.active)

	films := h.model.visibleFilms()
	require.Len(t, films, 1)
	assert.Equal(t, int64(258687), films[0].FilmID)
	assert.Equal(t, "Featured (1/3)", h.model.listTitle())

	cmd := h.press("esc")
	assert.False(t, isQuit(cmd))
	assert.Empty(t, h.model.search.query)
	assert.Len(t, h.model.visibleFilms(), 3)
}

func TestSortByRatingKeepsSelectionByID(t *testing.T) {
	h := newHarness(t, 150)
	h.press("s")
	film, ok := h.model.cursorFilm()
	require.True(t, ok)
	assert.Equal(t, int64(326), film.FilmID)

	h.press("j")
	h.model.applySnapshot(h.model.store.Snapshot())
	film, _ = h.model.cursorFilm()
	assert.Equal(t, int64(258687), film.FilmID)
}

func TestSnackbarExpiresOnlyForItsOwnID(t *testing.T) {
	h := newHarness(t, 150)

	require.NotNil(t, h.send(uiEventMsg{event: events.ShowSnackbar{ID: "a", Message: "first"}}))
	h.send(uiEventMsg{event: events.ShowSnackbar{ID: "b", Message: "second"}})

	h.send(snackbarExpiredMsg{id: "a"})
	require.NotNil(t, h.model.snackbar)
	assert.Equal(t, "second", h.model.snackbar.message)
	assert.Contains(t, h.model.View(), "second")

	h.send(snackbarExpiredMsg{id: "b"})
	assert.Nil(t, h.model.snackbar)
}

func TestDetailChangesRender(t *testing.T) {
	h := newHarness(t, 150)
	film := &kinopoisk.Film{KinopoiskID: 301, NameRu: "Матрица", Year: 1999, Description: "Хакер узнаёт правду."}

	h.detail.set(detail.State{Loading: true})
	cmd := h.send(detailChangedMsg{})
	assert.NotNil(t, cmd, "expected spinner tick")
	assert.Contains(t, h.model.renderDetailContent(60), "Loading film...")

	h.detail.set(detail.State{Loading: true, Film: film})
	h.send(detailChangedMsg{})
	out := h.model.renderDetailContent(60)
	assert.Contains(t, out, "Refreshing...")
	assert.Contains(t, out, "Матрица")

	h.detail.set(detail.State{Error: "boom", Film: film})
	h.send(detailChangedMsg{})
	out = h.model.renderDetailContent(60)
	assert.Contains(t, out, "⚠ boom")
	assert.Contains(t, out, "Хакер узнаёт правду.")
	assert.Equal(t, "Матрица", h.model.detailTitle())

	h.detail.set(detail.State{Error: "boom"})
	h.send(detailChangedMsg{})
	assert.Contains(t, h.model.renderDetailContent(60), "Error: boom")

	h.detail.set(detail.State{})
	h.send(detailChangedMsg{})
	assert.Contains(t, h.model.renderDetailContent(60), "Select a film")
}

func TestThemeCycleIsSavedAndPrefsChangesApply(t *testing.T) {
	h := newHarness(t, 150)

	h.press("T")
	assert.Equal(t, "Kanagawa", h.model.theme.Name)
	p, err := prefs.Load(h.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "Kanagawa", p.Theme)

	h.send(prefsChangedMsg{prefs: prefs.Prefs{Theme: "Slate"}})
	assert.Equal(t, "Slate", h.model.theme.Name)
}

func TestQuitSavesOpenFilm(t *testing.T) {
	h := newHarness(t, 150)
	h.press("j", "enter")

	assert.True(t, isQuit(h.press("q")))
	p, err := prefs.Load(h.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, int64(258687), p.LastFilm)
}

func TestRestoreLastFilm(t *testing.T) {
	h := newHarness(t, 80)
	h.send(restoreFilmMsg{id: 326})
	require.NotNil(t, h.nav.Selected())
	assert.Equal(t, int64(326), *h.nav.Selected())
	assert.True(t, h.model.detailScreenActive())
}

func TestRestoreBeforeFirstResizeOpensOneDetailScreen(t *testing.T) {
	nav := navigation.NewCoordinator(nil, nil)
	m := New(Options{
		Context:     context.Background(),
		Store:       &state.Store{},
		Coordinator: nav,
		Detail:      newFakeDetail(),
		WideWidth:   120,
		PrefsPath:   filepath.Join(t.TempDir(), "prefs.toml"),
		LastFilm:    326,
	})
	h := &testHarness{model: m, nav: nav}

	h.send(restoreFilmMsg{id: 326})
	h.send(tea.WindowSizeMsg{Width: 80, Height: 30})
	assert.Equal(t, 1, nav.Depth())
	assert.True(t, h.model.detailScreenActive())

	h.press("esc")
	assert.Equal(t, 0, nav.Depth())
	assert.Nil(t, nav.Selected())
	assert.False(t, h.model.detailScreenActive())
}

func TestHelpModalClosesOnAnyKey(t *testing.T) {
	h := newHarness(t, 150)
	h.press("?")
	require.NotNil(t, h.model.modal)
	assert.Contains(t, h.model.View(), "Navigation")

	h.press("j")
	assert.Nil(t, h.model.modal)
	assert.Equal(t, 0, h.model.cursor)
}

func TestPaneWidths(t *testing.T) {
	h := newHarness(t, 80)
	list, pane := h.model.paneWidths()
	assert.Equal(t, 80, list)
	assert.Zero(t, pane)

	h = newHarness(t, 150)
	h.model.transition.pos = 0.05
	list, pane = h.model.paneWidths()
	assert.Equal(t, 150, list, "slivers narrower than a column stay hidden")
	assert.Zero(t, pane)

	h.model.transition.pos = 0.5
	list, pane = h.model.paneWidths()
	assert.Equal(t, 150, list+pane)
	assert.Equal(t, 44, pane)
}

func TestLogsView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marquee.log")
	lines := []string{
		`{"level":"info","ts":"2026-01-02T10:00:00.000Z","msg":"featured refreshed","films":40}`,
		`{"level":"warn","ts":"2026-01-02T10:01:00.000Z","msg":"film fetch failed","film_id":301}`,
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	h := newHarness(t, 150)
	h.model.logFile = path

	cmd := h.press("L")
	require.NotNil(t, cmd)
	assert.Equal(t, ViewLogs, h.model.currentView)

	h.send(readLogsCmd(path)())
	require.Len(t, h.model.logState.entries, 2)
	assert.Contains(t, h.model.renderLogContent(120), "film fetch failed")

	h.press("f", "f")
	assert.Equal(t, "WARN", h.model.logState.minLevel)
	out := h.model.renderLogContent(120)
	assert.Contains(t, out, "film fetch failed")
	assert.NotContains(t, out, "featured refreshed")

	h.press("esc")
	assert.Equal(t, ViewFilms, h.model.currentView)
}

func TestNextLevel(t *testing.T) {
	assert.Equal(t, "INFO", nextLevel(""))
	assert.Equal(t, "ERROR", nextLevel("WARN"))
	assert.Equal(t, "", nextLevel("ERROR"))
	assert.Equal(t, "", nextLevel("bogus"))
}
