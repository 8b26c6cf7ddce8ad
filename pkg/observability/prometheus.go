package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "thermogrid"

// PrometheusHooks implements every hook interface by recording into a
// private Prometheus registry. A CLI process is short-lived, so the registry
// is exported with [PrometheusHooks.WriteTextfile] for a node_exporter
// textfile collector rather than served over HTTP.
type PrometheusHooks struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec // labels: stage={fetch,mount,render}, outcome={success,error}
	records       prometheus.Gauge
	marks         prometheus.Gauge
	cacheOps      *prometheus.CounterVec // labels: key_type, result={hit,miss,set}
	cacheBytes    *prometheus.CounterVec // labels: key_type
	httpRequests  *prometheus.CounterVec // labels: host, status
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheusHooks creates hooks backed by a fresh registry.
func NewPrometheusHooks() *PrometheusHooks {
	h := &PrometheusHooks{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage", "outcome"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Number of monthly records in the last loaded dataset.",
		}),
		marks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chart_marks",
			Help:      "Number of cells in the last mounted chart.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Outgoing HTTP requests by host and status.",
		}, []string{"host", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Outgoing HTTP request duration.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"host"}),
	}

	h.registry.MustRegister(
		h.stageDuration,
		h.records,
		h.marks,
		h.cacheOps,
		h.cacheBytes,
		h.httpRequests,
		h.httpDuration,
	)
	return h
}

// Registry exposes the underlying registry, mainly for tests.
func (h *PrometheusHooks) Registry() *prometheus.Registry { return h.registry }

// WriteTextfile atomically writes all metrics in the text exposition format.
func (h *PrometheusHooks) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, h.registry)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (h *PrometheusHooks) OnFetchStart(context.Context, string) {}

func (h *PrometheusHooks) OnFetchComplete(_ context.Context, _ string, records int, d time.Duration, err error) {
	h.stageDuration.WithLabelValues("fetch", outcome(err)).Observe(d.Seconds())
	if err == nil {
		h.records.Set(float64(records))
	}
}

func (h *PrometheusHooks) OnMountStart(context.Context, int) {}

func (h *PrometheusHooks) OnMountComplete(_ context.Context, marks int, d time.Duration, err error) {
	h.stageDuration.WithLabelValues("mount", outcome(err)).Observe(d.Seconds())
	if err == nil {
		h.marks.Set(float64(marks))
	}
}

func (h *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	h.stageDuration.WithLabelValues("render", outcome(err)).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(host, statusLabel(status)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpRequests.WithLabelValues(host, "error").Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
