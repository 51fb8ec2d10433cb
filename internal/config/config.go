package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures marquee's runtime settings.
type Config struct {
	APIBaseURL      string
	APIKey          string
	APITimeout      time.Duration
	CachePath       string
	CacheMaxAge     time.Duration
	FeaturedPages   int
	RefreshInterval time.Duration
	WideWidth       int
	LogFile         string
}

const (
	defaultConfigPath      = "~/.config/marquee/config.toml"
	defaultBaseURL         = "https://kinopoiskapiunofficial.tech"
	defaultCachePath       = "~/.local/share/marquee/cache.db"
	defaultLogFile         = "~/.local/share/marquee/marquee.log"
	defaultAPITimeout      = 10 * time.Second
	defaultCacheMaxAge     = 30 * 24 * time.Hour
	defaultFeaturedPages   = 2
	defaultRefreshInterval = 10 * time.Minute
	defaultWideWidth       = 120

	maxFeaturedPages = 5
	envPrefix        = "MARQUEE"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load reads the config file at path (or the default location), applies
// MARQUEE_* environment overrides, and falls back to defaults when the file is
// missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("api.base_url", defaultBaseURL)
	v.SetDefault("api.key", "")
	v.SetDefault("api.timeout", defaultAPITimeout)
	v.SetDefault("cache.path", defaultCachePath)
	v.SetDefault("cache.max_age", defaultCacheMaxAge)
	v.SetDefault("featured.pages", defaultFeaturedPages)
	v.SetDefault("featured.refresh_interval", defaultRefreshInterval)
	v.SetDefault("ui.wide_width", defaultWideWidth)
	v.SetDefault("log.file", defaultLogFile)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(resolved); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
	} else {
		v.SetConfigFile(resolved)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := Config{
		APIBaseURL:      strings.TrimSpace(v.GetString("api.base_url")),
		APIKey:          strings.TrimSpace(v.GetString("api.key")),
		APITimeout:      v.GetDuration("api.timeout"),
		CachePath:       strings.TrimSpace(v.GetString("cache.path")),
		CacheMaxAge:     v.GetDuration("cache.max_age"),
		FeaturedPages:   v.GetInt("featured.pages"),
		RefreshInterval: v.GetDuration("featured.refresh_interval"),
		WideWidth:       v.GetInt("ui.wide_width"),
		LogFile:         strings.TrimSpace(v.GetString("log.file")),
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultBaseURL
	}
	if c.APITimeout <= 0 {
		c.APITimeout = defaultAPITimeout
	}
	if c.CachePath == "" {
		c.CachePath = defaultCachePath
	}
	c.CachePath = mustExpand(c.CachePath)
	if c.CacheMaxAge <= 0 {
		c.CacheMaxAge = defaultCacheMaxAge
	}
	if c.FeaturedPages <= 0 {
		c.FeaturedPages = defaultFeaturedPages
	}
	if c.FeaturedPages > maxFeaturedPages {
		c.FeaturedPages = maxFeaturedPages
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = defaultRefreshInterval
	}
	if c.WideWidth <= 0 {
		c.WideWidth = defaultWideWidth
	}
	// "-" disables file logging.
	if c.LogFile == "-" {
		c.LogFile = ""
	} else {
		if c.LogFile == "" {
			c.LogFile = defaultLogFile
		}
		c.LogFile = mustExpand(c.LogFile)
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
