// Package metrics collects and exposes Prometheus metrics for the
// content serving path.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records counters for the fetch decision path. A nil *Collector
// is safe to call, so tests can pass nil instead of a registry.
type Collector struct {
	fetchesServed    *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	producerFailures *prometheus.CounterVec
	producerLatency  prometheus.Histogram
	lockStoreErrors  prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focusai_fetches_served_total",
			Help: "Content fetches served, by kind and response source.",
		}, []string{"kind", "source"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focusai_content_cache_hits_total",
			Help: "Content cache hits, by kind.",
		}, []string{"kind"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focusai_content_cache_misses_total",
			Help: "Content cache misses that triggered a live fetch, by kind.",
		}, []string{"kind"}),
		producerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focusai_producer_failures_total",
			Help: "Batch producer failures, by pipeline step.",
		}, []string{"op"}),
		producerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "focusai_producer_latency_seconds",
			Help:    "Batch producer call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		lockStoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focusai_lock_store_errors_total",
			Help: "Daily lock store read/write failures.",
		}),
	}

	reg.MustRegister(
		c.fetchesServed,
		c.cacheHits,
		c.cacheMisses,
		c.producerFailures,
		c.producerLatency,
		c.lockStoreErrors,
	)

	return c
}

// RecordFetchServed records one served fetch with its response source.
func (c *Collector) RecordFetchServed(kind, source string) {
	if c == nil {
		return
	}
	c.fetchesServed.WithLabelValues(kind, source).Inc()
}

// RecordCacheHit records a content cache hit.
func (c *Collector) RecordCacheHit(kind string) {
	if c == nil {
		return
	}
	c.cacheHits.WithLabelValues(kind).Inc()
}

// RecordCacheMiss records a content cache miss.
func (c *Collector) RecordCacheMiss(kind string) {
	if c == nil {
		return
	}
	c.cacheMisses.WithLabelValues(kind).Inc()
}

// RecordProducerFailure records a producer failure for a pipeline step.
func (c *Collector) RecordProducerFailure(op string) {
	if c == nil {
		return
	}
	c.producerFailures.WithLabelValues(op).Inc()
}

// RecordProducerLatency records one producer call duration.
func (c *Collector) RecordProducerLatency(d time.Duration) {
	if c == nil {
		return
	}
	c.producerLatency.Observe(d.Seconds())
}

// RecordLockStoreError records a lock store I/O failure.
func (c *Collector) RecordLockStoreError() {
	if c == nil {
		return
	}
	c.lockStoreErrors.Inc()
}

// Handler returns the scrape endpoint for the given gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
