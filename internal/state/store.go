package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/marquee/internal/kinopoisk"
	"github.com/five82/marquee/internal/repository"
)

// Snapshot represents the latest featured list available to the UI.
type Snapshot struct {
	Films               []kinopoisk.FilmSummary
	HasFilms            bool
	FromCache           bool      // Films came from the local cache, not the catalogue
	FetchedAt           time.Time // When Films were fetched from the catalogue
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
}

// IsOffline returns true when the catalogue has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records one refresh. When err is non-nil the previous films are kept
// and the error is recorded; cached films carried by list are adopted only
// when nothing fresher is held.
func (s *Store) Update(list repository.FeaturedList, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = now
		s.snapshot.ConsecutiveFailures++
		if len(list.Films) > 0 && (!s.snapshot.HasFilms || s.snapshot.FromCache) {
			s.setFilms(list)
		}
		return
	}

	s.setFilms(list)
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = now
	s.snapshot.ConsecutiveFailures = 0
}

func (s *Store) setFilms(list repository.FeaturedList) {
	s.snapshot.Films = cloneFilms(list.Films)
	s.snapshot.HasFilms = len(list.Films) > 0
	s.snapshot.FromCache = list.FromCache
	s.snapshot.FetchedAt = list.FetchedAt
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Films = cloneFilms(s.snapshot.Films)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Film looks up a featured film by id.
func (s *Store) Film(id int64) (kinopoisk.FilmSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.snapshot.Films {
		if f.FilmID == id {
			return f, true
		}
	}
	return kinopoisk.FilmSummary{}, false
}

func cloneFilms(films []kinopoisk.FilmSummary) []kinopoisk.FilmSummary {
	if len(films) == 0 {
		return nil
	}
	dup := make([]kinopoisk.FilmSummary, len(films))
	copy(dup, films)
	return dup
}
