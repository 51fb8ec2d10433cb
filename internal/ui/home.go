package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/five82/marquee/internal/kinopoisk"
	"github.com/five82/marquee/internal/repository"
	"github.com/five82/marquee/internal/state"
)

// applySnapshot takes a new featured snapshot, keeping the cursor on the same
// film when it is still listed.
func (m *Model) applySnapshot(snap state.Snapshot) {
	var cursorID int64
	if film, ok := m.cursorFilm(); ok {
		cursorID = film.FilmID
	}
	if !snap.LastUpdated.Equal(m.snapshot.LastUpdated) {
		m.lastUpdated = snap.LastUpdated
	}
	m.snapshot = snap

	if cursorID != 0 {
		for i, f := range m.visibleFilms() {
			if f.FilmID == cursorID {
				m.cursor = i
				return
			}
		}
	}
	m.clampCursor()
}

// visibleFilms returns the featured films after search and sort.
func (m Model) visibleFilms() []kinopoisk.FilmSummary {
	films := m.snapshot.Films
	if m.sortByRating {
		films = append([]kinopoisk.FilmSummary(nil), films...)
		repository.SortByRating(films)
	}
	return filterFilms(films, m.search.query)
}

// cursorFilm returns the film under the cursor.
func (m Model) cursorFilm() (kinopoisk.FilmSummary, bool) {
	films := m.visibleFilms()
	if m.cursor < 0 || m.cursor >= len(films) {
		return kinopoisk.FilmSummary{}, false
	}
	return films[m.cursor], true
}

func (m *Model) clampCursor() {
	count := len(m.visibleFilms())
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// handleListKey processes keyboard input for the film list.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.search.active = true
		m.search.input.SetValue(m.search.query)
		m.search.input.CursorEnd()
		cmd := m.search.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Sort):
		m.sortByRating = !m.sortByRating
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Select):
		film, ok := m.cursorFilm()
		if !ok {
			return m, nil
		}
		m.logger.Debug("film selected", zap.Int64("film_id", film.FilmID))
		m.nav.Select(film.FilmID)
		cmd := m.afterNavigation()
		return m, cmd
	}

	count := len(m.visibleFilms())
	if count == 0 {
		return m, nil
	}
	page := max(1, m.listRows()/2)

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < count-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.cursor = min(count-1, m.cursor+page)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.cursor = max(0, m.cursor-page)
	}
	return m, nil
}

// handleSearchKey edits the search query. The list filters as the user types.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.search.active = false
		m.search.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.clearSearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	if q := m.search.input.Value(); q != m.search.query {
		m.search.query = q
		m.cursor = 0
	}
	return m, cmd
}

func (m *Model) clearSearch() {
	m.search.active = false
	m.search.query = ""
	m.search.input.Blur()
	m.search.input.SetValue("")
	m.cursor = 0
}

// renderFilms renders the film list with the detail beside it or in its place.
func (m Model) renderFilms() string {
	height := m.contentHeight()
	if m.detailScreenActive() {
		return m.renderTitledBox(m.detailTitle(), m.detailViewport.View(), m.width, height, true)
	}

	listWidth, detailWidth := m.paneWidths()
	listFocused := detailWidth == 0 || !m.nav.ShowDetailPane()
	list := m.renderTitledBox(m.listTitle(), m.renderFilmList(listWidth-2), listWidth, height, listFocused)
	if detailWidth == 0 {
		return list
	}
	pane := m.renderTitledBox(m.detailTitle(), m.detailViewport.View(), detailWidth, height, !listFocused)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, pane)
}

// listRows is the number of film rows that fit in the list box.
func (m Model) listRows() int {
	rows := m.contentHeight() - 2 // borders
	if m.search.active || m.search.query != "" {
		rows-- // search line
	}
	return max(1, rows)
}

func (m Model) listTitle() string {
	total := len(m.snapshot.Films)
	shown := len(m.visibleFilms())
	title := "Featured"
	if m.sortByRating {
		title += " by rating"
	}
	if shown != total {
		return fmt.Sprintf("%s (%d/%d)", title, shown, total)
	}
	return fmt.Sprintf("%s (%d)", title, total)
}

// renderFilmList renders the visible films as styled rows, scrolled so the
// cursor stays on screen.
func (m Model) renderFilmList(width int) string {
	bgColor := m.theme.SurfaceAlt
	if !m.nav.ShowDetailPane() {
		bgColor = m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	var lines []string
	if m.search.active {
		lines = append(lines, bg.FillLine(m.search.input.View(), width))
	} else if m.search.query != "" {
		lines = append(lines, bg.FillLine(bg.Render("/"+m.search.query, styles.AccentText), width))
	}

	films := m.visibleFilms()
	if len(films) == 0 {
		msg := "Waiting for featured films..."
		switch {
		case m.search.query != "":
			msg = "No titles match"
		case m.snapshot.LastError != nil:
			msg = "Featured films unavailable"
		}
		lines = append(lines, bg.FillLine(bg.Render(msg, styles.MutedText), width))
		return strings.Join(lines, "\n")
	}

	rows := m.listRows()
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(len(films), start+rows)

	selected := m.nav.Selected()
	for i := start; i < end; i++ {
		film := films[i]
		open := selected != nil && *selected == film.FilmID
		if i == m.cursor {
			content := m.formatFilmRow(film, i, width, m.theme.SelectionBg, true, open)
			lines = append(lines, NewBgStyle(m.theme.SelectionBg).FillLine(content, width))
			continue
		}
		lines = append(lines, bg.FillLine(m.formatFilmRow(film, i, width, bgColor, false, open), width))
	}
	return strings.Join(lines, "\n")
}

// formatFilmRow formats one list row:
//
//	  3  Title (1999)            ★ 8.6  драма, криминал
func (m Model) formatFilmRow(film kinopoisk.FilmSummary, index, width int, bgColor string, selected, open bool) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()
	textStyle := styles.Text
	mutedStyle := styles.MutedText
	if selected {
		textStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		mutedStyle = textStyle
	}

	marker := " "
	if open {
		marker = "▸"
	}
	rank := fmt.Sprintf("%s%3d ", marker, index+1)

	rating, rated := film.RatingValue()
	ratingText := "  –  "
	if rated {
		ratingText = fmt.Sprintf("★ %.1f", rating)
	}
	ratingStyle := styles.RatingStyle(rating, rated)
	if selected {
		ratingStyle = ratingStyle.Foreground(lipgloss.Color(m.theme.SelectionText))
	}

	title := film.Title()
	if film.Year != "" && film.Year != "null" {
		title += " (" + film.Year + ")"
	}

	genres := strings.Join(film.GenreNames(), ", ")
	fixed := lipgloss.Width(rank) + 1 + lipgloss.Width(ratingText) + 2
	titleWidth := width - fixed
	genreWidth := 0
	if width >= 70 && genres != "" {
		genreWidth = min(24, width/4)
		titleWidth -= genreWidth + 2
	}
	titleWidth = max(8, titleWidth)

	row := bg.Render(rank, mutedStyle) +
		bg.Render(padRight(truncateWidth(title, titleWidth), titleWidth), textStyle) +
		bg.Space() +
		bg.Render(ratingText, ratingStyle)
	if genreWidth > 0 {
		row += bg.Spaces(2) + bg.Render(truncateWidth(genres, genreWidth), mutedStyle)
	}
	return row
}

// renderTitledBox draws a bordered box with the title set into the top edge.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(0, width-2)
	title = truncateWidth(title, max(0, innerWidth-4))
	titleLen := lipgloss.Width(title)
	leftPad := max(0, (innerWidth-titleLen-2)/2)
	rightPad := max(0, innerWidth-titleLen-2-leftPad)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(0, height-2)

	paddedLines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}
