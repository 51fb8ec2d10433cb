package ui

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/five82/marquee/internal/kinopoisk"
)

// Match scores; lower ranks first.
const (
	scorePrefix    = 0
	scoreSubstring = 1
	scoreFuzzyBase = 10
)

// filterFilms returns the films whose titles match query, best matches first.
// Exact prefix and substring matches rank ahead of typo-tolerant ones. An
// empty query returns films unchanged.
func filterFilms(films []kinopoisk.FilmSummary, query string) []kinopoisk.FilmSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return films
	}

	type scored struct {
		film  kinopoisk.FilmSummary
		score int
	}
	var matches []scored
	for _, f := range films {
		best := -1
		for _, title := range []string{f.NameRu, f.NameEn} {
			if s, ok := matchScore(strings.ToLower(title), query); ok && (best < 0 || s < best) {
				best = s
			}
		}
		if best >= 0 {
			matches = append(matches, scored{film: f, score: best})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})
	out := make([]kinopoisk.FilmSummary, len(matches))
	for i, m := range matches {
		out[i] = m.film
	}
	return out
}

// matchScore scores one lowercased title against a lowercased query.
func matchScore(title, query string) (int, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, false
	}
	switch {
	case strings.HasPrefix(title, query):
		return scorePrefix, true
	case strings.Contains(title, query):
		return scoreSubstring, true
	}

	limit := fuzzyLimit(query)
	if limit == 0 {
		return 0, false
	}
	best := limit + 1
	for _, candidate := range fuzzyCandidates(title, query) {
		if d := levenshtein.ComputeDistance(query, candidate); d < best {
			best = d
		}
	}
	if best > limit {
		return 0, false
	}
	return scoreFuzzyBase + best, true
}

// fuzzyLimit is the edit distance tolerated for a query: none for very short
// queries, then one typo per four runes.
func fuzzyLimit(query string) int {
	n := utf8.RuneCountInString(query)
	if n < 3 {
		return 0
	}
	return max(1, n/4)
}

// fuzzyCandidates are the title fragments a query is compared with: each word,
// and each run of words as long as the query.
func fuzzyCandidates(title, query string) []string {
	words := strings.Fields(title)
	queryWords := len(strings.Fields(query))
	candidates := append([]string(nil), words...)
	if queryWords > 1 {
		for i := 0; i+queryWords <= len(words); i++ {
			candidates = append(candidates, strings.Join(words[i:i+queryWords], " "))
		}
	}
	if r := []rune(title); len(r) > utf8.RuneCountInString(query) {
		candidates = append(candidates, string(r[:utf8.RuneCountInString(query)]))
	}
	return candidates
}
