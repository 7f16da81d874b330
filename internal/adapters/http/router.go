package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-widget/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-widget/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-widget/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds widget routes when RouterConfig.Timeout is zero.
const DefaultRequestTimeout = 15 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the base logger stored in every request context.
	Logger *slog.Logger

	// ServiceName names the otelgin server spans.
	ServiceName string

	// HealthHandler serves /-/ endpoints. Optional.
	HealthHandler *handlers.HealthHandler

	// WidgetHandler serves the page and /api/v1/widgets. Optional.
	WidgetHandler *handlers.WidgetHandler

	// Timeout bounds the page and widget API routes. Zero uses
	// DefaultRequestTimeout; negative disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Global middleware, first to last:
//  1. ContextLogger - base logger into the request context
//  2. Recovery - catch panics
//  3. Request ID and Correlation ID - extract or generate, enrich the logger
//  4. OpenTelemetry - server span, metrics, X-Trace-ID
//  5. Logging - request log lines, skipping /-/ probes
//
// Route groups:
//   - /-/: health, build info and metrics, no timeout
//   - / and /quote: the server-rendered widget page
//   - /api/v1/widgets: the widget JSON API
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine.Use(
		middleware.ContextLogger(logger),
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging("/favicon.ico"))

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutes(engine.Group("/-"))
	}

	if cfg.WidgetHandler == nil {
		return
	}

	engine.SetHTMLTemplate(handlers.WidgetTemplate())

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}

	page := engine.Group("")
	apiV1 := engine.Group("/api/v1")

	if timeout > 0 {
		page.Use(middleware.Timeout(timeout))
		apiV1.Use(middleware.Timeout(timeout))
	}

	cfg.WidgetHandler.RegisterPageRoutes(page)
	cfg.WidgetHandler.RegisterWidgetRoutes(apiV1)
}
