// Package handlers provides the HTTP handlers of the quote widget service:
// the widget page, the widget JSON API and the /-/ operational endpoints.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quote-widget/internal/ports"
)

// BuildInfo contains build-time information injected with ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo creates a BuildInfo with the Go version automatically set.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// WidgetCounter reports how many widgets are mounted.
type WidgetCounter interface {
	Len() int
}

// HealthHandlerConfig contains configuration for the health handler.
type HealthHandlerConfig struct {
	// Registry aggregates dependency checks. Required.
	Registry ports.HealthRegistry

	// Widgets is reported in readiness responses. Optional.
	Widgets WidgetCounter

	BuildInfo BuildInfo
}

// HealthHandler handles the /-/ endpoints.
type HealthHandler struct {
	registry  ports.HealthRegistry
	widgets   WidgetCounter
	buildInfo BuildInfo
}

// NewHealthHandler creates a new health handler.
// Panics if Registry is nil.
func NewHealthHandler(cfg HealthHandlerConfig) *HealthHandler {
	if cfg.Registry == nil {
		panic("HealthHandler: Registry is required")
	}

	return &HealthHandler{
		registry:  cfg.Registry,
		widgets:   cfg.Widgets,
		buildInfo: cfg.BuildInfo,
	}
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness handles GET /-/live
// Always 200 while the process runs. Dependencies are not consulted.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

type readinessResponse struct {
	Status         string                        `json:"status"`
	Checks         map[string]*ports.CheckResult `json:"checks,omitempty"`
	MountedWidgets *int                          `json:"mountedWidgets,omitempty"`
}

// Readiness handles GET /-/ready
// 200 when every registered check passes, 503 otherwise. The quote upstream
// and the widget registry are the registered checks.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	resp := readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	}

	if h.widgets != nil {
		n := h.widgets.Len()
		resp.MountedWidgets = &n
	}

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

// BuildInfoHandler handles GET /-/build
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// MetricsHandler returns the Prometheus scrape handler. Wrap it with gin.WrapH.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RegisterHealthRoutes registers live, ready, build and metrics under rg.
func (h *HealthHandler) RegisterHealthRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Liveness)
	rg.GET("/ready", h.Readiness)
	rg.GET("/build", h.BuildInfoHandler)
	rg.GET("/metrics", gin.WrapH(MetricsHandler()))
}
