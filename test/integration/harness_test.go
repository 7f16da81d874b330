//go:build integration

package integration

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-widget/internal/adapters/clients"
	"github.com/jsamuelsen/quote-widget/internal/adapters/clients/acl"
	httpadapter "github.com/jsamuelsen/quote-widget/internal/adapters/http"
	"github.com/jsamuelsen/quote-widget/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-widget/internal/app"
	"github.com/jsamuelsen/quote-widget/internal/platform/config"
	"github.com/jsamuelsen/quote-widget/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// upstreamBehaviour is how the fake quote service answers one request.
// A stalled answer sends status and body, then holds the response open.
type upstreamBehaviour struct {
	status int
	body   string
	delay  time.Duration
	drop   bool
	stall  bool
}

// fakeUpstream is a quote service whose answers tests can change between
// requests.
type fakeUpstream struct {
	mu        sync.Mutex
	behaviour upstreamBehaviour
	calls     int
	server    *httptest.Server
}

func newFakeUpstream() *fakeUpstream {
	f := &fakeUpstream{behaviour: upstreamBehaviour{status: http.StatusOK, body: `{"id":1,"quote":"Default quote"}`}}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))

	return f
}

func (f *fakeUpstream) set(b upstreamBehaviour) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.behaviour = b
}

func (f *fakeUpstream) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func (f *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	b := f.behaviour
	f.calls++
	f.mu.Unlock()

	if b.drop {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				_ = conn.Close()
				return
			}
		}
	}

	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.status)
	_, _ = io.WriteString(w, b.body)

	if b.stall {
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}

		<-r.Context().Done()
	}
}

// service is the full quote widget stack served over a real listener.
type service struct {
	upstream *fakeUpstream
	registry *app.WidgetRegistry
	server   *httptest.Server
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startService wires client, ACL, registry, handlers and router the way the
// service binary does, against a fake upstream.
func startService(circuit config.CircuitBreakerConfig) (*service, error) {
	upstream := newFakeUpstream()

	client, err := clients.New(&clients.Config{
		ServiceName: "quote-service",
		BaseURL:     upstream.server.URL,
		Timeout:     2 * time.Second,
		Circuit:     circuit,
		Logger:      discardLogger(),
	})
	if err != nil {
		upstream.server.Close()
		return nil, err
	}

	source := acl.NewQuoteClient(acl.QuoteClientConfig{Client: client, Logger: discardLogger()})
	registry := app.NewWidgetRegistry(app.WidgetRegistryConfig{Source: source, Logger: discardLogger()})

	health := ports.NewHealthRegistry(time.Second)
	_ = health.Register(source)
	_ = health.Register(registry)

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:        discardLogger(),
		ServiceName:   "quote-widget-integration",
		HealthHandler: handlers.NewHealthHandler(handlers.HealthHandlerConfig{Registry: health, Widgets: registry}),
		WidgetHandler: handlers.NewWidgetHandler(handlers.WidgetHandlerConfig{Registry: registry}),
	})

	return &service{
		upstream: upstream,
		registry: registry,
		server:   httptest.NewServer(engine),
	}, nil
}

func defaultCircuit() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{MaxFailures: 100, Timeout: time.Second, HalfOpenLimit: 1}
}

func mustStartService(t *testing.T, circuit config.CircuitBreakerConfig) *service {
	t.Helper()

	s, err := startService(circuit)
	if err != nil {
		t.Fatalf("start service: %v", err)
	}

	t.Cleanup(s.Close)

	return s
}

func (s *service) URL() string {
	return s.server.URL
}

func (s *service) Close() {
	s.server.Close()
	s.registry.CloseAll()
	s.upstream.server.Close()
}
