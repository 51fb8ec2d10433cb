package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/five82/marquee/internal/kinopoisk"
)

// Stats summarises cache contents.
type Stats struct {
	Films         int
	FeaturedPages int
	Oldest        time.Time
}

// Film returns the cached details for id. ok is false when nothing is cached.
func (c *Cache) Film(ctx context.Context, id int64) (film *kinopoisk.Film, fetchedAt time.Time, ok bool, err error) {
	var payload string
	var unix int64
	err = c.db.QueryRowContext(ctx, `SELECT payload, fetched_at FROM films WHERE id = ?`, id).Scan(&payload, &unix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("query film %d: %w", id, err)
	}
	var f kinopoisk.Film
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decode film %d: %w", id, err)
	}
	return &f, time.Unix(unix, 0), true, nil
}

// PutFilm stores or replaces the details for film.KinopoiskID.
func (c *Cache) PutFilm(ctx context.Context, film kinopoisk.Film) error {
	if film.KinopoiskID <= 0 {
		return fmt.Errorf("film id must be positive, got %d", film.KinopoiskID)
	}
	payload, err := json.Marshal(film)
	if err != nil {
		return fmt.Errorf("encode film %d: %w", film.KinopoiskID, err)
	}
	_, err = c.db.ExecContext(ctx, `
	INSERT INTO films(id, payload, fetched_at) VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 payload=excluded.payload,
	 fetched_at=excluded.fetched_at;
	`, film.KinopoiskID, string(payload), c.now().Unix())
	if err != nil {
		return fmt.Errorf("store film %d: %w", film.KinopoiskID, err)
	}
	return nil
}

// Featured returns the cached films of one featured page in list order.
func (c *Cache) Featured(ctx context.Context, page int) ([]kinopoisk.FilmSummary, time.Time, bool, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT payload, fetched_at FROM featured WHERE page = ? ORDER BY position`, page)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("query featured page %d: %w", page, err)
	}
	defer rows.Close()

	var out []kinopoisk.FilmSummary
	var fetchedAt time.Time
	for rows.Next() {
		var payload string
		var unix int64
		if err := rows.Scan(&payload, &unix); err != nil {
			return nil, time.Time{}, false, fmt.Errorf("scan featured page %d: %w", page, err)
		}
		var s kinopoisk.FilmSummary
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, time.Time{}, false, fmt.Errorf("decode featured page %d: %w", page, err)
		}
		out = append(out, s)
		fetchedAt = time.Unix(unix, 0)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, false, err
	}
	return out, fetchedAt, len(out) > 0, nil
}

// PutFeatured replaces the cached contents of one featured page.
func (c *Cache) PutFeatured(ctx context.Context, page int, films []kinopoisk.FilmSummary) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin featured page %d: %w", page, err)
	}
	if err := putFeaturedTx(ctx, tx, page, films, c.now().Unix()); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func putFeaturedTx(ctx context.Context, tx *sql.Tx, page int, films []kinopoisk.FilmSummary, now int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM featured WHERE page = ?`, page); err != nil {
		return fmt.Errorf("clear featured page %d: %w", page, err)
	}
	for i, f := range films {
		payload, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("encode featured film %d: %w", f.FilmID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO featured(page, position, film_id, payload, fetched_at) VALUES (?, ?, ?, ?, ?)`,
			page, i, f.FilmID, string(payload), now); err != nil {
			return fmt.Errorf("store featured film %d: %w", f.FilmID, err)
		}
	}
	return nil
}

// Prune removes entries fetched before now-olderThan and returns how many rows
// were deleted.
func (c *Cache) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := c.now().Add(-olderThan).Unix()
	var total int64
	for _, table := range []string{"films", "featured"} {
		res, err := c.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE fetched_at < ?`, cutoff)
		if err != nil {
			return total, fmt.Errorf("prune %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// Clear removes every cached entry.
func (c *Cache) Clear(ctx context.Context) error {
	for _, table := range []string{"films", "featured"} {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Stats reports row counts and the oldest fetch time.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	var oldest sql.NullInt64
	err := c.db.QueryRowContext(ctx, `
	SELECT
	 (SELECT COUNT(*) FROM films),
	 (SELECT COUNT(DISTINCT page) FROM featured),
	 (SELECT MIN(t) FROM (SELECT fetched_at AS t FROM films UNION ALL SELECT fetched_at FROM featured))
	`).Scan(&s.Films, &s.FeaturedPages, &oldest)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	if oldest.Valid {
		s.Oldest = time.Unix(oldest.Int64, 0)
	}
	return s, nil
}
