// Package app provides the top-level application lifecycle for the propscout
// service. It wires together all dependencies (store, caches, blob storage,
// sources, pipeline, and HTTP server) and runs them until shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"propscout/internal/config"
	"propscout/internal/outreach"
	"propscout/internal/pipeline"
	"propscout/internal/server"
	"propscout/internal/server/handler"
	"propscout/internal/server/ws"
	"propscout/internal/service"
	"propscout/internal/source"
)

// shutdownTimeout bounds how long in-flight requests may take to drain.
const shutdownTimeout = 10 * time.Second

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the
// websocket hub and the HTTP server, and blocks until the context is
// cancelled. On return the caller should invoke Close.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	// Source adapters.
	adapters := a.buildAdapters()
	if len(adapters) == 0 {
		return fmt.Errorf("app: no listing sources enabled")
	}

	// Services.
	propertySvc := service.NewPropertyService(
		deps.PropertyStore, deps.CompsCache, a.cfg.Pipeline.CompsLimit, a.logger,
	)
	exportSvc := service.NewExportService(deps.PropertyStore, deps.BlobWriter, a.logger)
	outreachGen := outreach.NewGenerator(outreach.Config{
		BaseURL: a.cfg.OpenAI.BaseURL,
		APIKey:  a.cfg.OpenAI.ApiKey,
		Model:   a.cfg.OpenAI.Model,
	}, a.logger)

	// Aggregation pipeline.
	fetcher := pipeline.NewFetcher(adapters, a.logger)
	pipe := pipeline.NewPipeline(
		fetcher,
		deps.PropertyStore,
		propertySvc,
		deps.EventBus,
		a.cfg.Pipeline.MinZipDelay.Duration,
		a.cfg.Pipeline.MaxZipDelay.Duration,
		a.logger,
	)

	// HTTP surface.
	wsHub := ws.NewHub(deps.EventBus, a.logger)
	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.ApiKey,
		},
		server.Handlers{
			Health: handler.NewHealthHandler(a.logger),
			Properties: handler.NewPropertyHandler(
				pipe, propertySvc, outreachGen, exportSvc, a.logger,
			),
		},
		wsHub,
		deps.RateLimiter,
		a.logger,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := wsHub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildAdapters constructs a source adapter per enabled listing source. All
// adapters share one retrying HTTP client.
func (a *App) buildAdapters() []source.Adapter {
	client := source.NewClient(a.logger)
	srcs := a.cfg.Sources

	var adapters []source.Adapter
	if srcs.Zillow.Enabled {
		adapters = append(adapters, source.NewZillowAdapter(
			client, srcs.Zillow.BaseURL, srcs.Zillow.ApiKey, srcs.Zillow.ApiHost, a.logger,
		))
	}
	if srcs.Realtor.Enabled {
		adapters = append(adapters, source.NewRealtorAdapter(
			client, srcs.Realtor.BaseURL, srcs.Realtor.ApiKey, srcs.Realtor.ApiHost, a.logger,
		))
	}
	if srcs.Redfin.Enabled {
		adapters = append(adapters, source.NewRedfinAdapter(
			client, srcs.Redfin.BaseURL, a.logger,
		))
	}
	if srcs.Foreclosure.Enabled {
		adapters = append(adapters, source.NewForeclosureAdapter(
			client, srcs.Foreclosure.BaseURL, srcs.Foreclosure.ApiKey, a.logger,
		))
	}

	a.logger.Info("listing sources configured",
		slog.Int("adapters", len(adapters)),
	)
	return adapters
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
