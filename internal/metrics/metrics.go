// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the server's collectors around one registry.
type Metrics struct {
	Registry *prometheus.Registry

	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec
	Breakdowns  prometheus.Counter
	BillTotal   prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rachadinha",
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rachadinha",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		Breakdowns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rachadinha",
			Name:      "breakdowns_computed_total",
			Help:      "Bill breakdowns computed.",
		}),
		BillTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rachadinha",
			Name:      "bill_total",
			Help:      "Total bill amount of computed breakdowns.",
			Buckets:   []float64{25, 50, 100, 200, 400, 800, 1600},
		}),
	}

	m.Registry.MustRegister(
		m.RPCRequests,
		m.RPCDuration,
		m.Breakdowns,
		m.BillTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveBreakdown records one computed breakdown. Safe on a nil receiver.
func (m *Metrics) ObserveBreakdown(totalBill float64) {
	if m == nil {
		return
	}
	m.Breakdowns.Inc()
	m.BillTotal.Observe(totalBill)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
