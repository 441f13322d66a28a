// Package metrics provides Prometheus metrics for the character viewer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	fetchesTotal  *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	itemsLoaded   prometheus.Gauge
	loadsRejected *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_catalog_fetches_total",
				Help: "Catalog page fetches by outcome",
			},
			[]string{"status"},
		),
		fetchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "viewer_catalog_fetch_duration_seconds",
				Help:    "Catalog page fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		itemsLoaded: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "viewer_items_loaded",
				Help: "Number of characters accumulated in the current session",
			},
		),
		loadsRejected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_loads_rejected_total",
				Help: "Load-more requests rejected by the controller guard",
			},
			[]string{"reason"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "viewer_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
	}
}

// ObserveFetch records one page fetch. A nil receiver is a no-op.
func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.fetchesTotal.WithLabelValues(status).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

func (m *Metrics) SetItemsLoaded(n int) {
	if m == nil {
		return
	}
	m.itemsLoaded.Set(float64(n))
}

func (m *Metrics) LoadRejected(reason string) {
	if m == nil {
		return
	}
	m.loadsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
