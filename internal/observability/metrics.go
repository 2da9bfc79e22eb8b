// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"RealizedBands/internal/collector"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	// Feed metrics
	FeedFetches       *prometheus.CounterVec
	FeedFetchDuration *prometheus.HistogramVec

	// Aggregation metrics
	Aggregations        *prometheus.CounterVec
	AggregationDuration prometheus.Histogram
	RecordCount         prometheus.Gauge
	LastSuccess         prometheus.Gauge

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Notification metrics
	NotificationsSent *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "realized_bands"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FeedFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetches_total",
			Help:      "Upstream fetches by feed and outcome",
		}, []string{"feed", "outcome"}),
		FeedFetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"feed"}),

		Aggregations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "runs_total",
			Help:      "Aggregation runs by result",
		}, []string{"result"}),
		AggregationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "duration_seconds",
			Help:      "Aggregation wall time including fetches",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		RecordCount: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "records",
			Help:      "Records in the last successful dataset",
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful aggregation",
		}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by result",
		}, []string{"result"}),

		NotificationsSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "messages_total",
			Help:      "Telegram messages by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveFetch implements collector.FetchObserver.
func (m *Metrics) ObserveFetch(feed string, err error, took time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = string(collector.KindOf(err))
	}
	m.FeedFetches.WithLabelValues(feed, outcome).Inc()
	m.FeedFetchDuration.WithLabelValues(feed).Observe(took.Seconds())
}

// ObserveAggregation records one aggregation run.
func (m *Metrics) ObserveAggregation(result string, records int, took time.Duration) {
	m.Aggregations.WithLabelValues(result).Inc()
	m.AggregationDuration.Observe(took.Seconds())
	if result == "ok" {
		m.RecordCount.Set(float64(records))
		m.LastSuccess.SetToCurrentTime()
	}
}

// ObserveCache records a cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// ObserveNotification records a Telegram send outcome.
func (m *Metrics) ObserveNotification(err error) {
	if err != nil {
		m.NotificationsSent.WithLabelValues("error").Inc()
		return
	}
	m.NotificationsSent.WithLabelValues("ok").Inc()
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
