// Package telemetry exports signal bus activity as Prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements signal.Observer. Each instance owns its registry so
// tests and multiple buses never collide on registration.
type Metrics struct {
	registry   *prometheus.Registry
	dispatched *prometheus.CounterVec
	handled    *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	fanout     prometheus.Histogram
	handlers   *prometheus.GaugeVec
}

// NewMetrics creates the bus metrics on a fresh registry, together with
// the standard Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		dispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cursing",
			Subsystem: "bus",
			Name:      "events_dispatched_total",
			Help:      "Events delivered to at least one handler.",
		}, []string{"event"}),
		handled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cursing",
			Subsystem: "bus",
			Name:      "handler_calls_total",
			Help:      "Handler invocations, by event name.",
		}, []string{"event"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cursing",
			Subsystem: "bus",
			Name:      "events_dropped_total",
			Help:      "Events that reached no handler, by reason.",
		}, []string{"event", "reason"}),
		fanout: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cursing",
			Subsystem: "bus",
			Name:      "dispatch_fanout",
			Help:      "Handlers called per dispatched event.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13},
		}),
		handlers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "cursing",
			Subsystem: "bus",
			Name:      "handlers",
			Help:      "Registered handlers, by event name.",
		}, []string{"event"}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Dispatched(name string, delivered int) {
	if delivered == 0 {
		m.dropped.WithLabelValues(name, "expired").Inc()
		return
	}
	m.dispatched.WithLabelValues(name).Inc()
	m.handled.WithLabelValues(name).Add(float64(delivered))
	m.fanout.Observe(float64(delivered))
}

func (m *Metrics) Dropped(name, reason string) {
	m.dropped.WithLabelValues(name, reason).Inc()
}

func (m *Metrics) Registered(name string, handlers int) {
	m.handlers.WithLabelValues(name).Set(float64(handlers))
}
