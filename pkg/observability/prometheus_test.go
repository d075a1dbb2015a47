package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/tagcloud/pkg/cloud"
)

func TestPrometheusLayoutStatus(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnLayoutComplete(ctx, cloud.Stats{Placed: 10}, time.Millisecond, nil)
	m.OnLayoutComplete(ctx, cloud.Stats{Placed: 500, OverlappingPairs: 12, Degraded: 4}, time.Millisecond, nil)
	m.OnLayoutComplete(ctx, cloud.Stats{Placed: 20, OutOfBounds: 1, Degraded: 1}, time.Millisecond, nil)
	m.OnLayoutComplete(ctx, cloud.Stats{}, time.Millisecond, errors.New("boom"))

	tests := []struct {
		status string
		want   float64
	}{
		{"clean", 1},
		{"degraded", 2},
		{"error", 1},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := testutil.ToFloat64(m.LayoutsTotal.WithLabelValues(tt.status)); got != tt.want {
				t.Errorf("layouts_total{status=%q} = %v, want %v", tt.status, got, tt.want)
			}
		})
	}

	if got := testutil.ToFloat64(m.DegradedTags); got != 5 {
		t.Errorf("degraded_tags_total = %v, want 5", got)
	}
}

func TestPrometheusLoadAndRender(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnLoadComplete(ctx, "posts", 12, time.Millisecond, nil)
	m.OnLoadComplete(ctx, "tags", 0, time.Millisecond, errors.New("missing"))
	m.OnRenderComplete(ctx, []string{"svg", "png"}, time.Millisecond, nil)

	if got := testutil.ToFloat64(m.LoadsTotal.WithLabelValues("posts", "ok")); got != 1 {
		t.Errorf("loads_total{posts,ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LoadsTotal.WithLabelValues("tags", "error")); got != 1 {
		t.Errorf("loads_total{tags,error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RendersTotal.WithLabelValues("svg,png", "ok")); got != 1 {
		t.Errorf("renders_total{svg,png,ok} = %v, want 1", got)
	}
}

func TestPrometheusCacheAndHTTP(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnCacheHit(ctx, "layout")
	m.OnCacheHit(ctx, "layout")
	m.OnCacheMiss(ctx, "artifact")
	m.OnCacheSet(ctx, "artifact", 2048)

	m.OnRequest(ctx, "POST", "/v1/layout")
	if got := testutil.ToFloat64(m.HTTPRequestsInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	m.OnResponse(ctx, "POST", "/v1/layout", 200, 5*time.Millisecond)

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"hits", m.CacheHitsTotal.WithLabelValues("layout"), 2},
		{"misses", m.CacheMissesTotal.WithLabelValues("artifact"), 1},
		{"bytes", m.CacheWriteBytes.WithLabelValues("artifact"), 2048},
		{"requests", m.HTTPRequestsTotal.WithLabelValues("POST", "/v1/layout", "200"), 1},
		{"in flight", m.HTTPRequestsInFlight, 0},
	}
	for _, tt := range checks {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPrometheusHandler(t *testing.T) {
	m := NewPrometheus(nil)
	m.OnLayoutComplete(context.Background(), cloud.Stats{Placed: 3}, time.Millisecond, nil)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	for _, want := range []string{
		`tagcloud_layouts_total{status="clean"} 1`,
		"tagcloud_layout_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("scrape output missing %q", want)
		}
	}
}

func TestPrometheusRegister(t *testing.T) {
	defer Reset()
	m := NewPrometheus(prometheus.NewRegistry())
	m.Register()

	if Pipeline() != PipelineHooks(m) {
		t.Error("Register should install pipeline hooks")
	}
	if Cache() != CacheHooks(m) {
		t.Error("Register should install cache hooks")
	}
	if HTTP() != HTTPHooks(m) {
		t.Error("Register should install HTTP hooks")
	}
}
