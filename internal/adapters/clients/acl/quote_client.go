// Package acl translates remote service payloads into domain types.
// Remote DTOs never leave this package.
package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jsamuelsen/quote-widget/internal/adapters/clients"
	"github.com/jsamuelsen/quote-widget/internal/domain"
	"github.com/jsamuelsen/quote-widget/internal/platform/config"
	"github.com/jsamuelsen/quote-widget/internal/platform/logging"
)

const (
	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 64 << 10

	// errorBodyPreview bounds how much of an error body is logged.
	errorBodyPreview = 512
)

// QuoteClientConfig contains configuration for the quote client.
type QuoteClientConfig struct {
	// Client is the HTTP client to use for requests.
	// Its BaseURL should point at the quote service.
	Client *clients.Client

	// Name identifies the service in errors and health checks.
	// Defaults to "quote-service".
	Name string

	// Path is the random quote resource. Defaults to config.DefaultQuotePath.
	Path string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// QuoteClient implements ports.QuoteSource against the DummyJSON quotes API.
type QuoteClient struct {
	client *clients.Client
	name   string
	path   string
	logger *slog.Logger
}

// NewQuoteClient creates a new quote client adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewQuoteClient(cfg QuoteClientConfig) *QuoteClient {
	if cfg.Client == nil {
		panic("QuoteClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Name
	if name == "" {
		name = "quote-service"
	}

	path := cfg.Path
	if path == "" {
		path = config.DefaultQuotePath
	}

	return &QuoteClient{
		client: cfg.Client,
		name:   name,
		path:   path,
		logger: logger.With(slog.String("component", "acl.QuoteClient")),
	}
}

// dummyQuote is the payload of GET /quotes/random.
type dummyQuote struct {
	ID     int    `json:"id"`
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// GetRandomQuote fetches a random quote from the remote service.
// Implements ports.QuoteSource.
func (c *QuoteClient) GetRandomQuote(ctx context.Context) (*domain.Quote, error) {
	c.logger.DebugContext(ctx, "fetching random quote", slog.String("path", c.path))

	resp, err := c.client.Get(ctx, c.path)
	if err != nil {
		return nil, c.dispatchError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logErrorBody(ctx, resp)

		return nil, domain.NewStatusError(c.name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		// The connection dropped mid-body; no usable response arrived.
		return nil, domain.NewUnavailableError(c.name, "reading body: "+err.Error())
	}

	quote, err := c.translate(body)
	if err != nil {
		return nil, err
	}

	c.logger.Log(ctx, logging.LevelTrace, "translated quote",
		slog.String("quote_id", quote.ID),
		slog.String("author", quote.Author))

	return quote, nil
}

// translate converts the remote payload to a domain Quote.
func (c *QuoteClient) translate(body []byte) (*domain.Quote, error) {
	var ext dummyQuote

	if err := json.Unmarshal(body, &ext); err != nil {
		return nil, domain.NewInvalidResponseError(c.name, "malformed JSON", err)
	}

	if strings.TrimSpace(ext.Quote) == "" {
		return nil, domain.NewInvalidResponseError(c.name, `missing "quote" field`, nil)
	}

	q := &domain.Quote{
		Content: ext.Quote,
		Author:  ext.Author,
	}

	if ext.ID != 0 {
		q.ID = strconv.Itoa(ext.ID)
	}

	return q, nil
}

func (c *QuoteClient) dispatchError(err error) error {
	if errors.Is(err, clients.ErrCircuitOpen) {
		return domain.NewUnavailableError(c.name, "circuit open")
	}

	return domain.NewUnavailableError(c.name, err.Error())
}

func (c *QuoteClient) logErrorBody(ctx context.Context, resp *http.Response) {
	preview, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyPreview))

	c.logger.WarnContext(ctx, "quote service returned error status",
		slog.Int("status_code", resp.StatusCode),
		slog.String("body", string(preview)),
	)
}

// Name returns the health check name for this client.
// Implements ports.HealthChecker.
func (c *QuoteClient) Name() string {
	return c.name
}

// Check reports whether the quote service answers with a usable quote.
// Implements ports.HealthChecker.
func (c *QuoteClient) Check(ctx context.Context) error {
	if _, err := c.GetRandomQuote(ctx); err != nil {
		return fmt.Errorf("quote service check: %w", err)
	}

	return nil
}
