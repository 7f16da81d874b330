// Package main runs one quote widget in the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-widget/internal/adapters/clients"
	"github.com/jsamuelsen/quote-widget/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-widget/internal/app"
	"github.com/jsamuelsen/quote-widget/internal/platform/config"
	"github.com/jsamuelsen/quote-widget/internal/platform/logging"
	"github.com/jsamuelsen/quote-widget/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	profile string
	baseURL string
	logFile string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "quote-widget-tui",
		Short:         "Show random quotes in the terminal.",
		Long:          "Renders one quote widget. Press enter or space for a new quote, q to quit.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.profile, "profile", "p", envOr("APP_ENVIRONMENT", "local"), "configuration profile under configs/")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "override services.quote.base_url")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "./logs/tui.log", "log file path; the terminal is never logged to")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if opts.baseURL != "" {
		cfg.Services.Quote.BaseURL = opts.baseURL
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  "json",
		Service: cfg.App.Name + "-tui",
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    true,
			Path:       opts.logFile,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, nil)
	logging.SetDefault(logger)

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

	widget := app.NewQuoteWidget(app.QuoteWidgetConfig{
		Source: acl.NewQuoteClient(acl.QuoteClientConfig{
			Client: httpClient,
			Name:   cfg.Services.Quote.Name,
			Path:   cfg.Services.Quote.Path,
			Logger: logger,
		}),
		Logger: logger,
	})
	defer widget.Close()

	logger.Info("starting terminal widget", "quote_service", cfg.Services.Quote.BaseURL+cfg.Services.Quote.Path)

	model := tui.New(logging.WithContext(ctx, logger), widget)

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
