package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/five82/marquee/internal/kinopoisk"
	"github.com/five82/marquee/internal/resource"
)

type fakeFetcher struct {
	mu        sync.Mutex
	films     map[int64]*kinopoisk.Film
	pages     map[int]kinopoisk.TopPage
	err       error
	filmCalls atomic.Int32
	gate      chan struct{}
}

func (f *fakeFetcher) FetchFilm(ctx context.Context, id int64) (*kinopoisk.Film, error) {
	f.filmCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	film, ok := f.films[id]
	if !ok {
		return nil, kinopoisk.ErrNotFound
	}
	dup := *film
	return &dup, nil
}

func (f *fakeFetcher) FetchTop(ctx context.Context, page int) (kinopoisk.TopPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return kinopoisk.TopPage{}, f.err
	}
	return f.pages[page], nil
}

type memStore struct {
	mu       sync.Mutex
	films    map[int64]kinopoisk.Film
	featured map[int][]kinopoisk.FilmSummary
}

func newMemStore() *memStore {
	return &memStore{films: map[int64]kinopoisk.Film{}, featured: map[int][]kinopoisk.FilmSummary{}}
}

func (s *memStore) Film(ctx context.Context, id int64) (*kinopoisk.Film, time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.films[id]
	if !ok {
		return nil, time.Time{}, false, nil
	}
	return &f, time.Now(), true, nil
}

func (s *memStore) PutFilm(ctx context.Context, film kinopoisk.Film) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.films[film.KinopoiskID] = film
	return nil
}

func (s *memStore) Featured(ctx context.Context, page int) ([]kinopoisk.FilmSummary, time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	films, ok := s.featured[page]
	return films, time.Now(), ok, nil
}

func (s *memStore) PutFeatured(ctx context.Context, page int, films []kinopoisk.FilmSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.featured[page] = append([]kinopoisk.FilmSummary(nil), films...)
	return nil
}

func collect(t *testing.T, ch <-chan FilmResult) []FilmResult {
	t.Helper()
	var out []FilmResult
	timeout := time.After(2 * time.Second)
	for {
		select {
		case res, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, res)
		case <-timeout:
			t.Fatalf("stream did not close; got %d results", len(out))
		}
	}
}

func TestFilmInfo_FreshFetchIsCached(t *testing.T) {
	defer goleak.VerifyNone(t)

	remote := &fakeFetcher{films: map[int64]*kinopoisk.Film{42: {KinopoiskID: 42, NameRu: "Fresh"}}}
	store := newMemStore()
	repo := New(remote, store, nil)

	results := collect(t, repo.FilmInfo(context.Background(), 42))
	require.Len(t, results, 2)

	assert.Equal(t, resource.KindLoading, results[0].Kind())
	assert.Nil(t, results[0].Data(), "no cached copy yet")
	assert.Equal(t, resource.KindSuccess, results[1].Kind())
	assert.Equal(t, "Fresh", results[1].Data().NameRu)

	cached, _, ok, _ := store.Film(context.Background(), 42)
	require.True(t, ok)
	assert.Equal(t, "Fresh", cached.NameRu)
}

func TestFilmInfo_ErrorFallsBackToCache(t *testing.T) {
	defer goleak.VerifyNone(t)

	remote := &fakeFetcher{err: errors.New("timeout")}
	store := newMemStore()
	require.NoError(t, store.PutFilm(context.Background(), kinopoisk.Film{KinopoiskID: 7, NameRu: "Cached"}))
	repo := New(remote, store, nil)

	results := collect(t, repo.FilmInfo(context.Background(), 7))
	require.Len(t, results, 2)

	assert.Equal(t, resource.KindLoading, results[0].Kind())
	require.NotNil(t, results[0].Data())
	assert.Equal(t, "Cached", results[0].Data().NameRu)

	assert.Equal(t, resource.KindError, results[1].Kind())
	assert.Equal(t, "timeout", results[1].Message())
	require.NotNil(t, results[1].Data())
	assert.Equal(t, "Cached", results[1].Data().NameRu)
}

func TestFilmInfo_ErrorWithoutCacheHasNoData(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := New(&fakeFetcher{err: errors.New("boom")}, nil, nil)
	results := collect(t, repo.FilmInfo(context.Background(), 1))
	require.Len(t, results, 2)
	assert.Equal(t, resource.KindError, results[1].Kind())
	assert.False(t, results[1].HasData())
}

func TestFilmInfo_CancelClosesStream(t *testing.T) {
	defer goleak.VerifyNone(t)

	gate := make(chan struct{})
	remote := &fakeFetcher{films: map[int64]*kinopoisk.Film{1: {KinopoiskID: 1}}, gate: gate}
	repo := New(remote, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch := repo.FilmInfo(ctx, 1)
	first := <-ch
	assert.Equal(t, resource.KindLoading, first.Kind())

	cancel()
	for range ch {
		t.Fatalf("no result expected after cancellation")
	}
	// Let the shared request finish so no goroutine outlives the test.
	close(gate)
	require.Eventually(t, func() bool { return remote.filmCalls.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
}

func TestFilmInfo_ConcurrentLoadsShareOneRequest(t *testing.T) {
	defer goleak.VerifyNone(t)

	gate := make(chan struct{})
	remote := &fakeFetcher{films: map[int64]*kinopoisk.Film{5: {KinopoiskID: 5}}, gate: gate}
	repo := New(remote, nil, nil)

	a := repo.FilmInfo(context.Background(), 5)
	b := repo.FilmInfo(context.Background(), 5)
	<-a
	<-b
	require.Eventually(t, func() bool { return remote.filmCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond) // let the second caller join the flight
	close(gate)

	ra := collect(t, a)
	rb := collect(t, b)
	require.Len(t, ra, 1)
	require.Len(t, rb, 1)
	assert.Equal(t, resource.KindSuccess, ra[0].Kind())
	assert.Equal(t, resource.KindSuccess, rb[0].Kind())
	assert.EqualValues(t, 1, remote.filmCalls.Load())
}

func TestFeatured_MergesPagesAndCaches(t *testing.T) {
	remote := &fakeFetcher{pages: map[int]kinopoisk.TopPage{
		1: {Films: []kinopoisk.FilmSummary{{FilmID: 1}, {FilmID: 2}}},
		2: {Films: []kinopoisk.FilmSummary{{FilmID: 2}, {FilmID: 3}}},
	}}
	store := newMemStore()
	repo := New(remote, store, nil)

	list, err := repo.Featured(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, list.FromCache)
	ids := make([]int64, 0, len(list.Films))
	for _, f := range list.Films {
		ids = append(ids, f.FilmID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.Len(t, store.featured, 2)
}

func TestFeatured_FallsBackToCache(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.PutFeatured(context.Background(), 1, []kinopoisk.FilmSummary{{FilmID: 10}}))
	repo := New(&fakeFetcher{err: errors.New("offline")}, store, nil)

	list, err := repo.Featured(context.Background(), 2)
	require.Error(t, err)
	assert.True(t, list.FromCache)
	require.Len(t, list.Films, 1)
	assert.EqualValues(t, 10, list.Films[0].FilmID)
}

func TestSortByRating(t *testing.T) {
	films := []kinopoisk.FilmSummary{
		{FilmID: 1, Rating: "null"},
		{FilmID: 2, Rating: "7.5"},
		{FilmID: 3, Rating: "8.9"},
		{FilmID: 4, Rating: "7.5"},
	}
	SortByRating(films)
	got := []int64{films[0].FilmID, films[1].FilmID, films[2].FilmID, films[3].FilmID}
	assert.Equal(t, []int64{3, 2, 4, 1}, got)
}
