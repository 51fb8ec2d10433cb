package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/marquee/internal/kinopoisk"
)

type fakeCatalogue struct {
	server *httptest.Server
	down   atomic.Bool
}

func newFakeCatalogue(t *testing.T) *fakeCatalogue {
	t.Helper()
	fc := &fakeCatalogue{}
	fc.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fc.down.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v2.2/films/301":
			_ = json.NewEncoder(w).Encode(kinopoisk.Film{
				KinopoiskID:  301,
				NameRu:       "Матрица",
				NameOriginal: "The Matrix",
				Year:         1999,
				FilmLength:   136,
				Description:  "Хакер узнаёт правду о мире.",
				Genres:       []kinopoisk.Genre{{Genre: "фантастика"}},
			})
		case "/api/v2.2/films/top":
			_ = json.NewEncoder(w).Encode(kinopoisk.TopPage{PagesCount: 1, Films: []kinopoisk.FilmSummary{
				{FilmID: 301, NameRu: "Матрица", Year: "1999", Rating: "8.5"},
				{FilmID: 258687, NameRu: "Интерстеллар", Year: "2014", Rating: "8.6"},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(fc.server.Close)

	dir := t.TempDir()
	t.Setenv("MARQUEE_API_BASE_URL", fc.server.URL)
	t.Setenv("MARQUEE_API_KEY", "test")
	t.Setenv("MARQUEE_CACHE_PATH", filepath.Join(dir, "cache.db"))
	t.Setenv("MARQUEE_LOG_FILE", "-")
	t.Setenv("MARQUEE_FEATURED_PAGES", "1")
	return fc
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFilmCommand_PrintsDetails(t *testing.T) {
	newFakeCatalogue(t)

	out, _, err := execute(t, "film", "301")
	require.NoError(t, err)
	assert.Contains(t, out, "Матрица")
	assert.Contains(t, out, "The Matrix")
	assert.Contains(t, out, "1999 · 2h 16m")
	assert.Contains(t, out, "Genres:    фантастика")
}

func TestFilmCommand_FallsBackToCacheWhenCatalogueIsDown(t *testing.T) {
	fc := newFakeCatalogue(t)

	_, _, err := execute(t, "film", "301")
	require.NoError(t, err)

	fc.down.Store(true)
	out, errOut, err := execute(t, "film", "301")
	require.NoError(t, err)
	assert.Contains(t, out, "Матрица")
	assert.Contains(t, errOut, "note: Server unavailable. Showing data loaded from cache.")
	assert.Contains(t, errOut, "503")
}

func TestFilmCommand_CacheNoteIsAlwaysPrinted(t *testing.T) {
	fc := newFakeCatalogue(t)

	_, _, err := execute(t, "film", "301")
	require.NoError(t, err)

	fc.down.Store(true)
	for i := 0; i < 20; i++ {
		_, errOut, err := execute(t, "film", "301")
		require.NoError(t, err)
		require.Contains(t, errOut, "note: Server unavailable.", "run %d", i)
	}
}

func TestFilmCommand_FailsWithoutCache(t *testing.T) {
	fc := newFakeCatalogue(t)
	fc.down.Store(true)

	_, _, err := execute(t, "film", "301")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "film 301")
}

func TestFilmCommand_RejectsBadID(t *testing.T) {
	newFakeCatalogue(t)

	_, _, err := execute(t, "film", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid film id")
}

func TestFeaturedCommand(t *testing.T) {
	newFakeCatalogue(t)

	out, _, err := execute(t, "featured", "--by-rating")
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[1]), "Интерстеллар")
	assert.Contains(t, string(lines[2]), "Матрица")
}

func TestCacheCommands(t *testing.T) {
	newFakeCatalogue(t)

	_, _, err := execute(t, "film", "301")
	require.NoError(t, err)

	out, _, err := execute(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "films:          1")

	out, _, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "cache cleared")

	out, _, err = execute(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "films:          0")
}
