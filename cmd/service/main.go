// Package main is the entry point for the quote widget service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quote-widget/internal/adapters/clients"
	"github.com/jsamuelsen/quote-widget/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-widget/internal/adapters/http"
	"github.com/jsamuelsen/quote-widget/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-widget/internal/app"
	"github.com/jsamuelsen/quote-widget/internal/platform/config"
	"github.com/jsamuelsen/quote-widget/internal/platform/logging"
	"github.com/jsamuelsen/quote-widget/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-widget/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("quote_service", cfg.Services.Quote.BaseURL+cfg.Services.Quote.Path),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	widgetMetrics, err := telemetry.NewWidgetMetrics(nil)
	if err != nil {
		return fmt.Errorf("registering widget metrics: %w", err)
	}

	// 5. Create HTTP client for the quote service
	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Quote.BaseURL,
		ServiceName: cfg.Services.Quote.Name,
		Timeout:     cfg.Client.Timeout,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	// 6. Create quote client adapter (ACL pattern)
	quoteClient := acl.NewQuoteClient(acl.QuoteClientConfig{
		Client: httpClient,
		Name:   cfg.Services.Quote.Name,
		Path:   cfg.Services.Quote.Path,
		Logger: logger,
	})

	// 7. Create the widget registry (application layer)
	registry := app.NewWidgetRegistry(app.WidgetRegistryConfig{
		Source:      quoteClient,
		Metrics:     widgetMetrics,
		IdleTimeout: cfg.Widget.IdleTimeout,
		MaxWidgets:  cfg.Widget.MaxWidgets,
		Logger:      logger,
	})
	defer registry.CloseAll()

	// 8. Register health checks
	healthRegistry := ports.NewHealthRegistry(cfg.Client.Timeout)

	for _, checker := range []ports.HealthChecker{quoteClient, registry} {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	// 9. Create handlers
	healthHandler := handlers.NewHealthHandler(handlers.HealthHandlerConfig{
		Registry:  healthRegistry,
		Widgets:   registry,
		BuildInfo: handlers.NewBuildInfo(Version, Commit, BuildTime),
	})
	widgetHandler := handlers.NewWidgetHandler(handlers.WidgetHandlerConfig{
		Registry:     registry,
		CookieName:   cfg.Widget.CookieName,
		CookieMaxAge: cfg.Widget.IdleTimeout,
		Title:        cfg.App.Name,
	})

	// 10. Create HTTP server and router
	server := http.New(&cfg.Server, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		ServiceName:   cfg.Telemetry.ServiceName,
		HealthHandler: healthHandler,
		WidgetHandler: widgetHandler,
		Timeout:       cfg.Server.RequestTimeout,
	})

	// 11. Serve and sweep idle widgets until a signal arrives or one fails
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx)
	})

	g.Go(func() error {
		return registry.RunSweeper(gctx, cfg.Widget.SweepInterval)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutdown complete", slog.Int("widgets_mounted", registry.Len()))

	return nil
}
