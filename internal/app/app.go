package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/marquee/internal/cache"
	"github.com/five82/marquee/internal/config"
	"github.com/five82/marquee/internal/detail"
	"github.com/five82/marquee/internal/events"
	"github.com/five82/marquee/internal/kinopoisk"
	"github.com/five82/marquee/internal/logging"
	"github.com/five82/marquee/internal/navigation"
	"github.com/five82/marquee/internal/prefs"
	"github.com/five82/marquee/internal/repository"
	"github.com/five82/marquee/internal/state"
	"github.com/five82/marquee/internal/ui"
)

// Options configure the marquee application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/marquee/prefs.toml
	Verbose    bool
}

// Services are the long-lived components shared by the TUI and the headless
// commands.
type Services struct {
	Config     config.Config
	Logger     *zap.Logger
	Cache      *cache.Cache
	Repository *repository.Repository
}

// Open loads the config and opens the cache and catalogue client. logger may
// be nil, in which case a file logger is built from the config.
func Open(configPath string, verbose bool, logger *zap.Logger) (*Services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if logger == nil {
		logger, err = logging.New(cfg.LogFile, verbose)
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	client, err := kinopoisk.NewClient(cfg.APIBaseURL, cfg.APIKey, cfg.APITimeout)
	if err != nil {
		_ = store.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("init kinopoisk client: %w", err)
	}
	if cfg.APIKey == "" {
		logger.Warn("no api key configured; requests will be rejected", zap.String("env", "MARQUEE_API_KEY"))
	}

	return &Services{
		Config:     cfg,
		Logger:     logger,
		Cache:      store,
		Repository: repository.New(client, store, logger),
	}, nil
}

// Close releases the cache and flushes the logger.
func (s *Services) Close() error {
	err := s.Cache.Close()
	_ = s.Logger.Sync()
	return err
}

// Run boots the marquee TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	svc, err := Open(opts.ConfigPath, opts.Verbose, nil)
	if err != nil {
		return err
	}
	defer svc.Close()
	logger := svc.Logger
	cfg := svc.Config

	if cfg.CacheMaxAge > 0 {
		if removed, err := svc.Cache.Prune(ctx, cfg.CacheMaxAge); err != nil {
			logger.Warn("cache prune failed", zap.Error(err))
		} else if removed > 0 {
			logger.Info("cache pruned", zap.Int64("removed", removed))
		}
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("prefs unreadable, using defaults", zap.Error(err))
	}

	agg := events.NewAggregator(logger)
	controller := detail.NewController(svc.Repository, agg, logger)
	defer controller.Close()

	coordinator := navigation.NewCoordinator(agg, logger)
	coordinator.OnSelect(controller.Load)

	store := &state.Store{}
	poller := NewPoller(store, svc.Repository, cfg.RefreshInterval, cfg.FeaturedPages, logger)
	updates := make(chan struct{}, 1)
	poller.OnUpdate(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	poller.Start(ctx)

	logger.Info("marquee starting",
		zap.String("api", cfg.APIBaseURL),
		zap.Int("pages", cfg.FeaturedPages),
		zap.Duration("refresh", cfg.RefreshInterval),
		zap.Int64("last_film", userPrefs.LastFilm))

	err = ui.Run(ui.Options{
		Context:     ctx,
		Store:       store,
		Refresher:   poller,
		Coordinator: coordinator,
		Detail:      controller,
		Events:      agg,
		Updates:     updates,
		Logger:      logger,
		WideWidth:   cfg.WideWidth,
		LogFile:     cfg.LogFile,
		ThemeName:   userPrefs.Theme,
		PrefsPath:   opts.PrefsPath,
		LastFilm:    userPrefs.LastFilm,
	})
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if err != nil {
		logger.Error("ui exited", zap.Error(err))
		return fmt.Errorf("run ui: %w", err)
	}
	logger.Info("marquee stopped")
	return nil
}
