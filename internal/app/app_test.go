package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MARQUEE_CACHE_PATH", filepath.Join(dir, "cache.db"))
	t.Setenv("MARQUEE_LOG_FILE", "-")
	return dir
}

func TestOpen_WiresServices(t *testing.T) {
	dir := setTestEnv(t)

	svc, err := Open(filepath.Join(dir, "missing.toml"), false, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	assert.Equal(t, filepath.Join(dir, "cache.db"), svc.Config.CachePath)
	require.NotNil(t, svc.Repository)

	stats, err := svc.Cache.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Films)
}

func TestOpen_BuildsFileLoggerWhenNoneGiven(t *testing.T) {
	dir := setTestEnv(t)
	t.Setenv("MARQUEE_LOG_FILE", filepath.Join(dir, "logs", "marquee.log"))

	svc, err := Open(filepath.Join(dir, "missing.toml"), true, nil)
	require.NoError(t, err)
	svc.Logger.Debug("hello")
	require.NoError(t, svc.Close())
	assert.FileExists(t, filepath.Join(dir, "logs", "marquee.log"))
}

func TestOpen_RejectsBadBaseURL(t *testing.T) {
	dir := setTestEnv(t)
	t.Setenv("MARQUEE_API_BASE_URL", "http://[::1")

	_, err := Open(filepath.Join(dir, "missing.toml"), false, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init kinopoisk client")
}
