package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-widget/internal/domain"
	"github.com/jsamuelsen/quote-widget/internal/ports"
)

// WidgetRegistryConfig contains configuration for a WidgetRegistry.
type WidgetRegistryConfig struct {
	// Source is shared by every mounted widget. Required.
	Source ports.QuoteSource

	// Metrics records mounts and fetch outcomes. Optional.
	Metrics ports.WidgetMetrics

	// IdleTimeout is how long a widget may go without a quote request before
	// Sweep unmounts it. Zero disables sweeping.
	IdleTimeout time.Duration

	// MaxWidgets caps concurrently mounted widgets. Zero means no cap.
	MaxWidgets int

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// WidgetRegistry owns the widget instances mounted by server-side sessions.
type WidgetRegistry struct {
	cfg    WidgetRegistryConfig
	logger *slog.Logger

	mu      sync.RWMutex
	widgets map[string]*QuoteWidget
	closed  bool
}

// NewWidgetRegistry creates an empty registry.
// Panics if Source is nil.
func NewWidgetRegistry(cfg WidgetRegistryConfig) *WidgetRegistry {
	if cfg.Source == nil {
		panic("WidgetRegistry: Source is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &WidgetRegistry{
		cfg:     cfg,
		logger:  cfg.Logger.With(slog.String("component", "app.WidgetRegistry")),
		widgets: make(map[string]*QuoteWidget),
	}
}

// Mount creates a widget with empty text and returns its id.
// Returns domain.ErrUnavailable when the registry is full or shut down.
func (r *WidgetRegistry) Mount() (string, *QuoteWidget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", nil, domain.NewUnavailableError("widget-registry", "shutting down")
	}

	if r.cfg.MaxWidgets > 0 && len(r.widgets) >= r.cfg.MaxWidgets {
		r.logger.Warn("widget limit reached", slog.Int("max_widgets", r.cfg.MaxWidgets))

		return "", nil, domain.NewUnavailableError("widget-registry", "widget limit reached")
	}

	id := uuid.NewString()
	w := NewQuoteWidget(QuoteWidgetConfig{
		Source:  r.cfg.Source,
		Metrics: r.cfg.Metrics,
		Logger:  r.cfg.Logger.With(slog.String("widget_id", id)),
		Clock:   r.cfg.Clock,
	})
	r.widgets[id] = w

	r.setMountedLocked()
	r.logger.Debug("widget mounted", slog.String("widget_id", id))

	return id, w, nil
}

// Get returns the widget mounted under id.
func (r *WidgetRegistry) Get(id string) (*QuoteWidget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.widgets[id]
	if !ok {
		return nil, domain.NewNotFoundError("widget", id)
	}

	return w, nil
}

// Unmount closes the widget mounted under id and forgets it.
func (r *WidgetRegistry) Unmount(id string) error {
	r.mu.Lock()

	w, ok := r.widgets[id]
	if !ok {
		r.mu.Unlock()
		return domain.NewNotFoundError("widget", id)
	}

	delete(r.widgets, id)
	r.setMountedLocked()
	r.mu.Unlock()

	w.Close()
	r.logger.Debug("widget unmounted", slog.String("widget_id", id))

	return nil
}

// Sweep unmounts widgets idle for longer than IdleTimeout as of now, skipping
// widgets with fetches in flight. Returns the number unmounted.
func (r *WidgetRegistry) Sweep(now time.Time) int {
	if r.cfg.IdleTimeout <= 0 {
		return 0
	}

	var stale []*QuoteWidget

	r.mu.Lock()
	for id, w := range r.widgets {
		if w.InFlight() > 0 || now.Sub(w.LastActive()) <= r.cfg.IdleTimeout {
			continue
		}

		delete(r.widgets, id)
		stale = append(stale, w)
	}

	if len(stale) > 0 {
		r.setMountedLocked()
	}
	r.mu.Unlock()

	for _, w := range stale {
		w.Close()
	}

	if len(stale) > 0 {
		r.logger.Info("swept idle widgets",
			slog.Int("count", len(stale)),
			slog.Int("remaining", r.Len()),
		)
	}

	return len(stale)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *WidgetRegistry) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep(r.cfg.Clock())
		}
	}
}

// Len returns the number of mounted widgets.
func (r *WidgetRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.widgets)
}

// CloseAll unmounts every widget and rejects further mounts.
func (r *WidgetRegistry) CloseAll() {
	r.mu.Lock()
	widgets := r.widgets
	r.widgets = make(map[string]*QuoteWidget)
	r.closed = true
	r.setMountedLocked()
	r.mu.Unlock()

	for _, w := range widgets {
		w.Close()
	}

	r.logger.Info("closed all widgets", slog.Int("count", len(widgets)))
}

// Name implements ports.HealthChecker.
func (r *WidgetRegistry) Name() string {
	return "widget-registry"
}

// Check reports the registry unhealthy once it is full or shut down.
// Implements ports.HealthChecker.
func (r *WidgetRegistry) Check(_ context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return domain.NewUnavailableError("widget-registry", "shutting down")
	}

	if r.cfg.MaxWidgets > 0 && len(r.widgets) >= r.cfg.MaxWidgets {
		return domain.NewUnavailableError("widget-registry", "widget limit reached")
	}

	return nil
}

// setMountedLocked must be called with r.mu held.
func (r *WidgetRegistry) setMountedLocked() {
	if r.cfg.Metrics != nil {
		r.cfg.Metrics.SetMounted(len(r.widgets))
	}
}
