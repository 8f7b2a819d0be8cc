// Package prom implements the observability hook interfaces with Prometheus
// collectors.
//
// Collectors are registered on the [prometheus.Registerer] passed to [New], so
// tests can use a private registry while the server uses the default one and
// exposes it through promhttp.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/feedwatch/sourcegrid/pkg/observability"
)

const namespace = "sourcegrid"

// Metrics records pipeline, cache, and backend HTTP events.
type Metrics struct {
	fetches       *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchedItems  prometheus.Histogram
	packs         prometheus.Counter
	packDuration  prometheus.Histogram
	packColumns   prometheus.Gauge
	packRows      prometheus.Histogram
	renders       *prometheus.CounterVec
	renderErrors  prometheus.Counter
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	cacheSetBytes *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpResponses *prometheus.CounterVec
	httpErrors    *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	inFlightFetch prometheus.Gauge
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// New creates the collectors and registers them on reg.
// It panics if any collector is already registered, like promauto.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Number of backend list fetches started, by endpoint",
		}, []string{"endpoint"}),
		fetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Number of backend list fetches that failed, by endpoint",
		}, []string{"endpoint"}),
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of backend list fetches",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		}, []string{"endpoint"}),
		fetchedItems: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetched_items",
			Help:      "Number of items returned per fetch",
			Buckets:   prometheus.LinearBuckets(0, 25, 10),
		}),
		packs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packs_total",
			Help:      "Number of tile row packs performed",
		}),
		packDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pack_duration_seconds",
			Help:      "Duration of tile row packs",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs to ~160ms
		}),
		packColumns: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pack_columns",
			Help:      "Column count used by the most recent pack",
		}),
		packRows: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pack_rows",
			Help:      "Number of rows produced per pack",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
		}),
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Number of rendered artifacts, by format",
		}, []string{"format"}),
		renderErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "Number of render passes that failed",
		}),
		cacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits, by key type",
		}, []string{"type"}),
		cacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses, by key type",
		}, []string{"type"}),
		cacheSetBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_set_bytes_total",
			Help:      "Bytes written to the cache, by key type",
		}, []string{"type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Requests sent to the aggregation backend",
		}, []string{"method", "host"}),
		httpResponses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_responses_total",
			Help:      "Responses received from the aggregation backend, by status code",
		}, []string{"method", "host", "code"}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Backend requests that failed without a response",
		}, []string{"method", "host"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of backend requests",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"method", "host"}),
		inFlightFetch: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetches_in_flight",
			Help:      "Backend list fetches currently running",
		}),
	}
}

// Install registers m as the global pipeline, cache, and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnFetchStart(_ context.Context, endpoint string) {
	m.fetches.WithLabelValues(endpoint).Inc()
	m.inFlightFetch.Inc()
}

func (m *Metrics) OnFetchComplete(_ context.Context, endpoint string, items int, d time.Duration, err error) {
	m.inFlightFetch.Dec()
	m.fetchDuration.WithLabelValues(endpoint).Observe(d.Seconds())
	if err != nil {
		m.fetchErrors.WithLabelValues(endpoint).Inc()
		return
	}
	m.fetchedItems.Observe(float64(items))
}

func (m *Metrics) OnPackStart(_ context.Context, _, columns int) {
	m.packColumns.Set(float64(columns))
}

func (m *Metrics) OnPackComplete(_ context.Context, _, rows int, d time.Duration) {
	m.packs.Inc()
	m.packDuration.Observe(d.Seconds())
	m.packRows.Observe(float64(rows))
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, err error) {
	if err != nil {
		m.renderErrors.Inc()
		return
	}
	for _, f := range formats {
		m.renders.WithLabelValues(f).Inc()
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheHits.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheMisses.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheSetBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest counts backend requests by method and host. Paths are not used
// as labels since they embed source and feed IDs.
func (m *Metrics) OnRequest(_ context.Context, method, host, _ string) {
	m.httpRequests.WithLabelValues(method, host).Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, host, _ string, status int, d time.Duration) {
	m.httpResponses.WithLabelValues(method, host, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.httpErrors.WithLabelValues(method, host).Inc()
}
