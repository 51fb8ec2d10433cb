package kinopoisk

import (
	"fmt"
	"strconv"
	"strings"
)

// TopCollection is the featured list requested from /api/v2.2/films/top.
const TopCollection = "TOP_100_POPULAR_FILMS"

// Genre mirrors a genre entry.
type Genre struct {
	Genre string `json:"genre"`
}

// Country mirrors a country entry.
type Country struct {
	Country string `json:"country"`
}

// Film mirrors the payload returned by /api/v2.2/films/{id}.
type Film struct {
	KinopoiskID      int64     `json:"kinopoiskId"`
	NameRu           string    `json:"nameRu"`
	NameEn           string    `json:"nameEn"`
	NameOriginal     string    `json:"nameOriginal"`
	Year             int       `json:"year"`
	Description      string    `json:"description"`
	ShortDescription string    `json:"shortDescription"`
	Slogan           string    `json:"slogan"`
	Genres           []Genre   `json:"genres"`
	Countries        []Country `json:"countries"`
	RatingKinopoisk  float64   `json:"ratingKinopoisk"`
	RatingImdb       float64   `json:"ratingImdb"`
	FilmLength       int       `json:"filmLength"`
	PosterURL        string    `json:"posterUrl"`
	PosterURLPreview string    `json:"posterUrlPreview"`
	WebURL           string    `json:"webUrl"`
}

// Title returns the best display title available.
func (f Film) Title() string {
	return firstNonEmpty(f.NameRu, f.NameEn, f.NameOriginal, fmt.Sprintf("#%d", f.KinopoiskID))
}

// GenreNames returns genre labels in payload order.
func (f Film) GenreNames() []string { return genreNames(f.Genres) }

// CountryNames returns country labels in payload order.
func (f Film) CountryNames() []string { return countryNames(f.Countries) }

// Runtime formats FilmLength (minutes) as "2h 16m". Empty when unknown.
func (f Film) Runtime() string {
	if f.FilmLength <= 0 {
		return ""
	}
	h, m := f.FilmLength/60, f.FilmLength%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// FilmSummary mirrors one entry of the top list.
type FilmSummary struct {
	FilmID           int64     `json:"filmId"`
	NameRu           string    `json:"nameRu"`
	NameEn           string    `json:"nameEn"`
	Year             string    `json:"year"`
	FilmLength       string    `json:"filmLength"`
	Rating           string    `json:"rating"`
	RatingVoteCount  int       `json:"ratingVoteCount"`
	Genres           []Genre   `json:"genres"`
	Countries        []Country `json:"countries"`
	PosterURL        string    `json:"posterUrl"`
	PosterURLPreview string    `json:"posterUrlPreview"`
}

// Title returns the best display title available.
func (s FilmSummary) Title() string {
	return firstNonEmpty(s.NameRu, s.NameEn, fmt.Sprintf("#%d", s.FilmID))
}

// GenreNames returns genre labels in payload order.
func (s FilmSummary) GenreNames() []string { return genreNames(s.Genres) }

// RatingValue parses Rating. The API sends strings like "8.1", "99.0%" or "null".
func (s FilmSummary) RatingValue() (float64, bool) {
	raw := strings.TrimSuffix(strings.TrimSpace(s.Rating), "%")
	if raw == "" || raw == "null" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// TopPage mirrors /api/v2.2/films/top.
type TopPage struct {
	PagesCount int           `json:"pagesCount"`
	Films      []FilmSummary `json:"films"`
}

func genreNames(genres []Genre) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if name := strings.TrimSpace(g.Genre); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func countryNames(countries []Country) []string {
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		if name := strings.TrimSpace(c.Country); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
