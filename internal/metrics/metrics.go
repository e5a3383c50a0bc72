package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector fenrir exposes. It is
// deliberately outside internal/engine -- the core has no notion of
// observability, only InboundSource/OutboundSink.
type Metrics struct {
	registry *prometheus.Registry

	OrdersReceived  *prometheus.CounterVec
	TradesEmitted   *prometheus.CounterVec
	SymbolsRejected prometheus.Counter
	MatchedQuantity prometheus.Histogram
}

// New builds a Metrics with every collector registered against a fresh
// registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		OrdersReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fenrir",
			Name:      "orders_received_total",
			Help:      "Orders accepted at the HTTP ingress, by symbol.",
		}, []string{"symbol"}),
		TradesEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fenrir",
			Name:      "trades_emitted_total",
			Help:      "Trade events emitted by the matching engine, by symbol.",
		}, []string{"symbol"}),
		SymbolsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fenrir",
			Name:      "symbols_rejected_total",
			Help:      "Orders rejected for an unknown symbol.",
		}),
		MatchedQuantity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fenrir",
			Name:      "matched_quantity",
			Help:      "Quantity matched per trade event.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	registry.MustRegister(m.OrdersReceived, m.TradesEmitted, m.SymbolsRejected, m.MatchedQuantity)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
