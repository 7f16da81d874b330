package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WidgetMetrics exposes widget activity as Prometheus metrics on /-/metrics.
// It implements ports.WidgetMetrics.
type WidgetMetrics struct {
	fetches *prometheus.CounterVec
	mounted prometheus.Gauge
}

// NewWidgetMetrics creates and registers widget metrics on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewWidgetMetrics(reg prometheus.Registerer) (*WidgetMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &WidgetMetrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_widget_fetch_total",
			Help: "Quote fetches by outcome: success, discarded, or the failure kind.",
		}, []string{"outcome"}),
		mounted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quote_widget_mounted",
			Help: "Number of currently mounted widget instances.",
		}),
	}

	for _, c := range []prometheus.Collector{m.fetches, m.mounted} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordFetch counts one resolved fetch.
func (m *WidgetMetrics) RecordFetch(outcome string) {
	m.fetches.WithLabelValues(outcome).Inc()
}

// SetMounted records the current number of mounted widgets.
func (m *WidgetMetrics) SetMounted(n int) {
	m.mounted.Set(float64(n))
}
