// Package repository combines the remote catalogue with the local cache. It
// exposes film details as a stream of resource results and the featured list as
// a cache-backed snapshot.
package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/five82/marquee/internal/kinopoisk"
	"github.com/five82/marquee/internal/resource"
)

// FilmStore is the cache surface the repository needs. *cache.Cache implements it.
type FilmStore interface {
	Film(ctx context.Context, id int64) (*kinopoisk.Film, time.Time, bool, error)
	PutFilm(ctx context.Context, film kinopoisk.Film) error
	Featured(ctx context.Context, page int) ([]kinopoisk.FilmSummary, time.Time, bool, error)
	PutFeatured(ctx context.Context, page int, films []kinopoisk.FilmSummary) error
}

// FilmResult is one emission of a film detail stream.
type FilmResult = resource.Result[kinopoisk.Film]

// FeaturedList is the merged featured collection.
type FeaturedList struct {
	Films     []kinopoisk.FilmSummary
	FromCache bool
	FetchedAt time.Time
}

// Repository serves film data from the catalogue, falling back to the cache.
type Repository struct {
	remote kinopoisk.Fetcher
	store  FilmStore
	logger *zap.Logger
	group  singleflight.Group
}

// New builds a Repository. store may be nil to run without a cache.
func New(remote kinopoisk.Fetcher, store FilmStore, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{remote: remote, store: store, logger: logger}
}

// FilmInfo streams the load of one film: a Loading result carrying any cached
// copy, then a Success with fresh data or an Error carrying the cached copy.
// The channel is closed after the terminal result or when ctx is done.
func (r *Repository) FilmInfo(ctx context.Context, id int64) <-chan FilmResult {
	out := make(chan FilmResult, 1)
	go func() {
		defer close(out)

		cached := r.cachedFilm(ctx, id)
		if !send(ctx, out, resource.Loading(cached)) {
			return
		}

		fresh, err := r.fetchFilm(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Warn("film fetch failed",
				zap.Int64("film_id", id),
				zap.Bool("cached", cached != nil),
				zap.Error(err))
			send(ctx, out, resource.Failure(err.Error(), cached))
			return
		}
		if r.store != nil {
			if err := r.store.PutFilm(ctx, *fresh); err != nil {
				r.logger.Warn("film cache write failed", zap.Int64("film_id", id), zap.Error(err))
			}
		}
		send(ctx, out, resource.Success(fresh))
	}()
	return out
}

// fetchFilm collapses concurrent fetches for the same id into one request. The
// shared request outlives any single caller's cancellation; the client timeout
// bounds it.
func (r *Repository) fetchFilm(ctx context.Context, id int64) (*kinopoisk.Film, error) {
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		return r.remote.FetchFilm(shared, id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		film := *res.Val.(*kinopoisk.Film)
		return &film, nil
	}
}

func (r *Repository) cachedFilm(ctx context.Context, id int64) *kinopoisk.Film {
	if r.store == nil {
		return nil
	}
	film, _, ok, err := r.store.Film(ctx, id)
	if err != nil {
		r.logger.Warn("film cache read failed", zap.Int64("film_id", id), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return film
}

// Featured fetches pages 1..pages concurrently and caches them. When any page
// fails it falls back to the cached pages and returns the fetch error alongside
// whatever the cache held.
func (r *Repository) Featured(ctx context.Context, pages int) (FeaturedList, error) {
	if pages < 1 {
		pages = 1
	}
	results := make([][]kinopoisk.FilmSummary, pages)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < pages; i++ {
		page := i + 1
		g.Go(func() error {
			top, err := r.remote.FetchTop(gctx, page)
			if err != nil {
				return fmt.Errorf("fetch featured page %d: %w", page, err)
			}
			results[page-1] = top.Films
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Warn("featured fetch failed", zap.Int("pages", pages), zap.Error(err))
		cached, cerr := r.cachedFeatured(ctx, pages)
		if cerr != nil {
			r.logger.Warn("featured cache read failed", zap.Error(cerr))
		}
		return cached, err
	}

	list := FeaturedList{FetchedAt: time.Now()}
	for i, films := range results {
		if r.store != nil {
			if err := r.store.PutFeatured(ctx, i+1, films); err != nil {
				r.logger.Warn("featured cache write failed", zap.Int("page", i+1), zap.Error(err))
			}
		}
		list.Films = append(list.Films, films...)
	}
	list.Films = dedupe(list.Films)
	return list, nil
}

func (r *Repository) cachedFeatured(ctx context.Context, pages int) (FeaturedList, error) {
	list := FeaturedList{FromCache: true}
	if r.store == nil {
		return list, nil
	}
	for page := 1; page <= pages; page++ {
		films, fetchedAt, ok, err := r.store.Featured(ctx, page)
		if err != nil {
			return list, err
		}
		if !ok {
			continue
		}
		list.Films = append(list.Films, films...)
		if list.FetchedAt.IsZero() || fetchedAt.Before(list.FetchedAt) {
			list.FetchedAt = fetchedAt
		}
	}
	list.Films = dedupe(list.Films)
	return list, nil
}

// dedupe drops repeated film ids, keeping the first occurrence. Pages of the
// remote collection shift while they are being fetched.
func dedupe(films []kinopoisk.FilmSummary) []kinopoisk.FilmSummary {
	seen := make(map[int64]struct{}, len(films))
	out := films[:0]
	for _, f := range films {
		if _, ok := seen[f.FilmID]; ok {
			continue
		}
		seen[f.FilmID] = struct{}{}
		out = append(out, f)
	}
	return out
}

// SortByRating orders films by descending rating, unrated last. Ties keep their
// original order.
func SortByRating(films []kinopoisk.FilmSummary) {
	sort.SliceStable(films, func(i, j int) bool {
		ri, oki := films[i].RatingValue()
		rj, okj := films[j].RatingValue()
		if oki != okj {
			return oki
		}
		return ri > rj
	})
}

func send(ctx context.Context, out chan<- FilmResult, res FilmResult) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- res:
		return true
	}
}
