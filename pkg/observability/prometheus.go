package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/tagcloud/pkg/cloud"
)

const namespace = "tagcloud"

// Prometheus implements PipelineHooks, CacheHooks and HTTPHooks with
// Prometheus collectors.
type Prometheus struct {
	registry *prometheus.Registry

	LoadsTotal       *prometheus.CounterVec
	LoadedTags       prometheus.Histogram
	LayoutsTotal     *prometheus.CounterVec
	LayoutDuration   prometheus.Histogram
	LayoutTags       prometheus.Histogram
	OverlappingPairs prometheus.Histogram
	OutOfBounds      prometheus.Histogram
	DegradedTags     prometheus.Counter
	RendersTotal     *prometheus.CounterVec
	RenderDuration   *prometheus.HistogramVec
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheWriteBytes  *prometheus.CounterVec

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)

// NewPrometheus creates the collectors and registers them on reg.
// A nil reg uses a fresh registry that also carries the Go runtime and
// process collectors; [Prometheus.Handler] serves whichever was used.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m := &Prometheus{
		registry: reg,
		LoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Tag loads by source and status.",
			},
			[]string{"source", "status"},
		),
		LoadedTags: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "loaded_tags",
				Help:      "Distinct tags per successful load.",
				Buckets:   tagBuckets,
			},
		),
		LayoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "layouts_total",
				Help:      "Layout computations by status (clean, degraded, error).",
			},
			[]string{"status"},
		),
		LayoutDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_duration_seconds",
				Help:      "Layout computation latency in seconds.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		LayoutTags: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_tags",
				Help:      "Tags placed per layout.",
				Buckets:   tagBuckets,
			},
		),
		OverlappingPairs: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_overlapping_pairs",
				Help:      "Overlapping tag pairs per layout.",
				Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
			},
		),
		OutOfBounds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_out_of_bounds",
				Help:      "Tags extending past the bounding radius per layout.",
				Buckets:   []float64{0, 1, 5, 10, 50, 100},
			},
		),
		DegradedTags: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "degraded_tags_total",
				Help:      "Tags placed by the fallback policy after exhausting retries.",
			},
		),
		RendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Renders by format set and status.",
			},
			[]string{"formats", "status"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Render latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"formats"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Cache hits by key type.",
			},
			[]string{"key_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Cache misses by key type.",
			},
			[]string{"key_type"},
		),
		CacheWriteBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_write_bytes_total",
				Help:      "Bytes written to the cache by key type.",
			},
			[]string{"key_type"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "HTTP requests currently being processed.",
			},
		),
	}

	reg.MustRegister(
		m.LoadsTotal,
		m.LoadedTags,
		m.LayoutsTotal,
		m.LayoutDuration,
		m.LayoutTags,
		m.OverlappingPairs,
		m.OutOfBounds,
		m.DegradedTags,
		m.RendersTotal,
		m.RenderDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheWriteBytes,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
	)
	return m
}

var tagBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000}

// Register installs m as the pipeline, cache and HTTP hooks.
func (m *Prometheus) Register() {
	SetPipelineHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
}

// Handler returns an HTTP handler that serves the registry for scraping.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Prometheus) OnLoadStart(context.Context, string) {}

func (m *Prometheus) OnLoadComplete(_ context.Context, source string, tagCount int, _ time.Duration, err error) {
	if err != nil {
		m.LoadsTotal.WithLabelValues(source, "error").Inc()
		return
	}
	m.LoadsTotal.WithLabelValues(source, "ok").Inc()
	m.LoadedTags.Observe(float64(tagCount))
}

func (m *Prometheus) OnLayoutStart(context.Context, int, float64) {}

func (m *Prometheus) OnLayoutComplete(_ context.Context, stats cloud.Stats, duration time.Duration, err error) {
	m.LayoutDuration.Observe(duration.Seconds())
	if err != nil {
		m.LayoutsTotal.WithLabelValues("error").Inc()
		return
	}
	status := "clean"
	if !stats.Clean() {
		status = "degraded"
	}
	m.LayoutsTotal.WithLabelValues(status).Inc()
	m.LayoutTags.Observe(float64(stats.Placed))
	m.OverlappingPairs.Observe(float64(stats.OverlappingPairs))
	m.OutOfBounds.Observe(float64(stats.OutOfBounds))
	m.DegradedTags.Add(float64(stats.Degraded))
}

func (m *Prometheus) OnRenderStart(context.Context, []string) {}

func (m *Prometheus) OnRenderComplete(_ context.Context, formats []string, duration time.Duration, err error) {
	label := strings.Join(formats, ",")
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RendersTotal.WithLabelValues(label, status).Inc()
	m.RenderDuration.WithLabelValues(label).Observe(duration.Seconds())
}

func (m *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	m.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

func (m *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

func (m *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheWriteBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Prometheus) OnRequest(context.Context, string, string) {
	m.HTTPRequestsInFlight.Inc()
}

func (m *Prometheus) OnResponse(_ context.Context, method, route string, status int, duration time.Duration) {
	m.HTTPRequestsInFlight.Dec()
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
