package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/afero"
	"github.com/vmunix/reelscout/internal/catalog"
	"github.com/vmunix/reelscout/internal/config"
	"github.com/vmunix/reelscout/internal/events"
	"github.com/vmunix/reelscout/internal/metadata"
	"github.com/vmunix/reelscout/internal/pipeline"
	"github.com/vmunix/reelscout/internal/session"
	"github.com/vmunix/reelscout/internal/tmdb"
	"github.com/vmunix/reelscout/internal/watchlist"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	bus       *events.Bus
	resolver  *metadata.Resolver
	pipeline  *pipeline.Pipeline
	watchlist *watchlist.Store
	renderer  *session.Renderer

	closers []func() error
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig reads the --config file, or the discovered one.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return nil, fmt.Errorf("%w (run 'reelscout init' to create one)", err)
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// newLogger logs to stderr, or to a rotating file when log.file is set.
func newLogger(cfg config.LogConfig, stderr io.Writer) (*slog.Logger, io.Closer) {
	var (
		out    = stderr
		closer io.Closer
	)
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		out, closer = lj, lj
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}))
	return logger, closer
}

// openPersister returns the watchlist backend selected by cfg.
func openPersister(cfg config.StorageConfig) (watchlist.Persister, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return watchlist.NewMemoryPersister(), nil, nil
	case config.DriverSQLite:
		db, err := watchlist.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open watchlist db: %w", err)
		}
		return watchlist.NewSQLitePersister(db), db.Close, nil
	case config.DriverFile:
		return watchlist.NewFilePersister(afero.NewOsFs(), cfg.Path), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newApp(ctx context.Context, cfg *config.Config, stderr io.Writer) (*app, error) {
	a := &app{cfg: cfg}

	logger, logCloser := newLogger(cfg.Log, stderr)
	a.logger = logger
	if logCloser != nil {
		a.closers = append(a.closers, logCloser.Close)
	}

	a.bus = events.NewBus(logger.With("component", "bus"))
	a.closers = append(a.closers, a.bus.Close)

	searcher := catalog.NewClient(
		catalog.WithBaseURL(cfg.Catalog.URL),
		catalog.WithDevice(cfg.Catalog.Device),
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.Catalog.Timeout}),
		catalog.WithLogger(logger.With("component", "catalog")),
	)

	finder := tmdb.NewClient(cfg.TMDB.APIKey,
		tmdb.WithBaseURL(cfg.TMDB.URL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithCacheTTL(cfg.TMDB.CacheTTL),
		tmdb.WithRateLimit(rate.Limit(cfg.TMDB.RequestsPerSecond), cfg.TMDB.Burst),
		tmdb.WithHTTPClient(&http.Client{Timeout: cfg.TMDB.Timeout}),
	)

	a.resolver = metadata.NewResolver(finder,
		metadata.WithConcurrency(cfg.TMDB.Concurrency),
		metadata.WithLogger(logger.With("component", "metadata")),
	)

	a.pipeline = pipeline.New(searcher, a.resolver,
		pipeline.WithDebounce(cfg.Search.Debounce),
		pipeline.WithBus(a.bus),
		pipeline.WithLogger(logger.With("component", "pipeline")),
	)

	persister, closePersister, err := openPersister(cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closePersister != nil {
		a.closers = append(a.closers, closePersister)
	}

	a.watchlist = watchlist.Open(ctx, persister,
		watchlist.WithBus(a.bus),
		watchlist.WithLogger(logger.With("component", "watchlist")),
	)
	a.renderer = session.NewRenderer(cfg.TMDB.ImageURL, cfg.TMDB.PosterSize)

	logger.Debug("app ready", "storage", cfg.Storage.Driver, "watchlist", a.watchlist.Len(), "language", cfg.TMDB.Language)
	return a, nil
}

// setup loads the config and wires the app for a command.
func setup(ctx context.Context, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, stderr)
}

// Close stops the pipeline and releases resources in reverse order.
func (a *app) Close() {
	if a.pipeline != nil {
		a.pipeline.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.logger != nil {
			a.logger.Warn("shutdown", "error", err)
		}
	}
}
