package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/marquee/internal/detail"
	"github.com/five82/marquee/internal/kinopoisk"
)

func newSpinner(theme Theme) spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))),
	)
}

// detailSize returns the inner size of the detail box for the current layout.
func (m Model) detailSize() (width, height int) {
	height = max(1, m.contentHeight()-2)
	if m.detailScreenActive() {
		return max(1, m.width-4), height
	}
	_, paneWidth := m.paneWidths()
	if paneWidth == 0 {
		// Render at the open width so the pane has content while it slides in.
		listOpen := max(listMinWidth, int(float64(m.width)*listFraction))
		paneWidth = m.width - listOpen
	}
	return max(1, paneWidth-4), height
}

// updateDetailViewport re-renders the detail into its viewport. The scroll
// position is kept unless the film changed.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	width, height := m.detailSize()
	if m.detailViewport.Width == 0 {
		m.detailViewport = viewport.New(width, height)
	}
	m.detailViewport.Width = width
	m.detailViewport.Height = height
	m.detailViewport.Style = lipgloss.NewStyle().PaddingLeft(1)

	offset := m.detailViewport.YOffset
	m.detailViewport.SetContent(m.renderDetailContent(width - 1))
	m.detailViewport.SetYOffset(offset)
}

func (m Model) detailTitle() string {
	if film := m.detailState.Film; film != nil {
		return film.Title()
	}
	return "Details"
}

// renderDetailContent renders the detail state as plain styled lines.
func (m Model) renderDetailContent(width int) string {
	styles := m.theme.Styles()
	st := m.detailState

	var lines []string
	if st.Loading {
		label := "Loading film..."
		if st.Film != nil {
			label = "Refreshing..."
		}
		lines = append(lines, m.spinner.View()+" "+styles.MutedText.Render(label))
	}
	if st.HasError() {
		lines = append(lines, m.renderDetailError(st, width)...)
	}

	if st.Film == nil {
		if !st.Loading && !st.HasError() {
			lines = append(lines, styles.MutedText.Render("Select a film to see its details"))
		}
		return strings.Join(lines, "\n")
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, renderFilm(*st.Film, width, styles)...)
	return strings.Join(lines, "\n")
}

func (m Model) renderDetailError(st detail.State, width int) []string {
	styles := m.theme.Styles()
	if st.Film != nil {
		return strings.Split(styles.WarningText.Render(wrapText("⚠ "+st.Error, width)), "\n")
	}
	return strings.Split(styles.DangerText.Render(wrapText("Error: "+st.Error, width)), "\n")
}

// renderFilm lays out one film:
//
//	Title
//	Original title
//	1999 • 2h 16m • ★ 8.6 KP • 8.7 IMDb
//	Genres     драма, криминал
//	Countries  США
//
//	Description wrapped to width.
func renderFilm(film kinopoisk.Film, width int, styles Styles) []string {
	var lines []string
	lines = append(lines, styles.Text.Bold(true).Render(truncateWidth(film.Title(), width)))

	if original := originalTitle(film); original != "" {
		lines = append(lines, styles.MutedText.Italic(true).Render(truncateWidth(original, width)))
	}

	var facts []string
	if film.Year > 0 {
		facts = append(facts, styles.Text.Render(fmt.Sprintf("%d", film.Year)))
	}
	if runtime := film.Runtime(); runtime != "" {
		facts = append(facts, styles.Text.Render(runtime))
	}
	if film.RatingKinopoisk > 0 {
		facts = append(facts, styles.RatingStyle(film.RatingKinopoisk, true).Render(fmt.Sprintf("★ %.1f KP", film.RatingKinopoisk)))
	}
	if film.RatingImdb > 0 {
		facts = append(facts, styles.RatingStyle(film.RatingImdb, true).Render(fmt.Sprintf("%.1f IMDb", film.RatingImdb)))
	}
	if len(facts) > 0 {
		lines = append(lines, strings.Join(facts, styles.FaintText.Render(" • ")))
	}

	label := lipgloss.NewStyle().Inherit(styles.FaintText).Width(11)
	if genres := strings.Join(film.GenreNames(), ", "); genres != "" {
		lines = append(lines, label.Render("Genres")+styles.Text.Render(truncateWidth(genres, width-11)))
	}
	if countries := strings.Join(film.CountryNames(), ", "); countries != "" {
		lines = append(lines, label.Render("Countries")+styles.Text.Render(truncateWidth(countries, width-11)))
	}

	if slogan := strings.TrimSpace(film.Slogan); slogan != "" && slogan != "-" {
		lines = append(lines, "", styles.AccentText.Italic(true).Render(wrapText("«"+slogan+"»", width)))
	}

	description := strings.TrimSpace(film.Description)
	if description == "" {
		description = film.ShortDescription
	}
	if description = wrapText(description, width); description != "" {
		lines = append(lines, "")
		lines = append(lines, strings.Split(styles.Text.Render(description), "\n")...)
	}

	if film.WebURL != "" {
		lines = append(lines, "", styles.FaintText.Render(truncateWidth(film.WebURL, width)))
	}
	return lines
}

// originalTitle returns the secondary title when it differs from the display title.
func originalTitle(film kinopoisk.Film) string {
	title := film.Title()
	for _, candidate := range []string{film.NameOriginal, film.NameEn} {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && candidate != title {
			return candidate
		}
	}
	return ""
}
