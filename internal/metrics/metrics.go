// Package metrics exposes the host's operational counters as Prometheus
// collectors: orders received, accepted, rejected, and cancelled, trades
// executed, resting order depth, and per-operation latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the host registers and updates while
// serving order traffic.
type Metrics struct {
	OrdersReceived   *prometheus.CounterVec
	OrdersAccepted   *prometheus.CounterVec
	OrdersRejected   *prometheus.CounterVec
	OrdersCancelled  *prometheus.CounterVec
	TradesExecuted   *prometheus.CounterVec
	OrdersResting    *prometheus.GaugeVec
	OperationLatency *prometheus.HistogramVec
}

// New registers a fresh Metrics set against reg and returns it.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderbook",
			Name:      "orders_received_total",
			Help:      "Orders submitted to the host, by symbol and side.",
		}, []string{"symbol", "side"}),
		OrdersAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderbook",
			Name:      "orders_accepted_total",
			Help:      "Orders that entered the book (rested, partially filled, or fully filled), by symbol and side.",
		}, []string{"symbol", "side"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderbook",
			Name:      "orders_rejected_total",
			Help:      "Orders rejected at or before admission, by symbol and reason.",
		}, []string{"symbol", "reason"}),
		OrdersCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderbook",
			Name:      "orders_cancelled_total",
			Help:      "Orders removed via explicit cancellation, by symbol and side.",
		}, []string{"symbol", "side"}),
		TradesExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderbook",
			Name:      "trades_executed_total",
			Help:      "Trades produced by the matching loop, by symbol.",
		}, []string{"symbol"}),
		OrdersResting: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "orderbook",
			Name:      "orders_resting",
			Help:      "Orders currently resting in the book, by symbol and side.",
		}, []string{"symbol", "side"}),
		OperationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orderbook",
			Name:      "operation_latency_seconds",
			Help:      "Latency of book operations, by operation name.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.OrdersReceived,
		m.OrdersAccepted,
		m.OrdersRejected,
		m.OrdersCancelled,
		m.TradesExecuted,
		m.OrdersResting,
		m.OperationLatency,
	)

	return m
}

// Observe records how long the named operation took against the latency
// histogram.
func (m *Metrics) Observe(operation string, started time.Time) {
	m.OperationLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
