package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/marquee/internal/kinopoisk"
	"github.com/five82/marquee/internal/repository"
)

func featured(fromCache bool, ids ...int64) repository.FeaturedList {
	list := repository.FeaturedList{FromCache: fromCache, FetchedAt: time.Now()}
	for _, id := range ids {
		list.Films = append(list.Films, kinopoisk.FilmSummary{FilmID: id})
	}
	return list
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Update(featured(false, 1, 2), nil)

	snap := s.Snapshot()
	if !snap.HasFilms || len(snap.Films) != 2 || snap.Films[0].FilmID != 1 {
		t.Fatalf("snapshot films = %#v, want 2 items", snap.Films)
	}
	if snap.FromCache {
		t.Fatalf("FromCache = true, want false")
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Films[0].FilmID = 999
	snap2 := s.Snapshot()
	if snap2.Films[0].FilmID != 1 {
		t.Fatalf("Snapshot should clone films; got id %d want 1", snap2.Films[0].FilmID)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(featured(false, 1), nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Update(featured(true, 7, 8), origErr)

	snap := s.Snapshot()
	if snap.FromCache || len(snap.Films) != 1 || snap.Films[0].FilmID != 1 {
		t.Fatalf("films changed on error: got %#v want %#v", snap.Films, prev.Films)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_UpdateErrorAdoptsCacheWhenEmpty(t *testing.T) {
	var s Store

	s.Update(featured(true, 4, 5), errors.New("offline"))

	snap := s.Snapshot()
	if !snap.HasFilms || !snap.FromCache || len(snap.Films) != 2 {
		t.Fatalf("snapshot = %#v, want cached films adopted", snap)
	}

	s.Update(featured(false, 6), nil)
	snap = s.Snapshot()
	if snap.FromCache || len(snap.Films) != 1 || snap.Films[0].FilmID != 6 {
		t.Fatalf("snapshot = %#v, want fresh films", snap)
	}
}

func TestStore_Film(t *testing.T) {
	var s Store
	s.Update(featured(false, 10, 20), nil)

	if f, ok := s.Film(20); !ok || f.FilmID != 20 {
		t.Fatalf("Film(20) = %#v, %v", f, ok)
	}
	if _, ok := s.Film(30); ok {
		t.Fatalf("Film(30) found, want missing")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.Update(repository.FeaturedList{}, errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}

	// Second failure - now offline
	s.Update(repository.FeaturedList{}, errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("ConsecutiveFailures = %d offline=%v, want 2/true", snap.ConsecutiveFailures, snap.IsOffline())
	}

	// Success resets counter
	s.Update(featured(false, 1), nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0 after success", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false after success")
	}
}
