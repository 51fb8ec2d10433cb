package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p, "missing file")

	writeFile(t, filepath.Join(home, ".config", "marquee", "prefs.toml"), "theme = \"Slate\"\nlast_film = 301\n")
	p, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Prefs{Theme: "Slate", LastFilm: 301}, p)
}

func TestLoad_Normalizes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Prefs
	}{
		{"empty theme", "theme = \"\"\n", Prefs{Theme: defaultTheme}},
		{"padded theme", "theme = \"  Kanagawa \"\n", Prefs{Theme: "Kanagawa"}},
		{"negative film", "theme = \"Slate\"\nlast_film = -4\n", Prefs{Theme: "Slate"}},
		{"unknown keys", "theme = \"Slate\"\nfont = \"mono\"\n", Prefs{Theme: "Slate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.toml")
			writeFile(t, path, tt.body)
			p, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestLoad_InvalidTOMLReportsErrorWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	writeFile(t, path, "not valid toml {{{\n")

	p, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse prefs")
	assert.Equal(t, Defaults(), p)
}

func TestSave_CreatesDirsAndRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "prefs.toml")

	require.NoError(t, Save(path, Prefs{Theme: "Kanagawa", LastFilm: 258687}))
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Prefs{Theme: "Kanagawa", LastFilm: 258687}, p)

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "prefs.toml", entries[0].Name())
}

func TestSave_OmitsUnsetFilm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, Save(path, Prefs{Theme: "Slate"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "last_film")
}

func TestWatch_ReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, Save(path, Prefs{Theme: "Slate"}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Prefs, 64)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(p Prefs) {
			select {
			case changes <- p:
			default:
			}
		})
	}()

	// The watcher registers asynchronously; keep saving until an event lands.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case p := <-changes:
			if p.Theme != "Kanagawa" {
				continue
			}
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
			require.NoError(t, Save(path, Prefs{Theme: "Kanagawa"}))
		case <-deadline:
			t.Fatal("no change reported")
		}
	}
}
