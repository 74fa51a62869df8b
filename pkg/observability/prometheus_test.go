package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheus_Stages(t *testing.T) {
	ctx := context.Background()
	m := NewPrometheus(prometheus.NewRegistry())

	m.OnImportComplete(ctx, "csv", 4, time.Millisecond, nil)
	m.OnOptimizeComplete(ctx, 4, 4, time.Millisecond, nil)
	m.OnOptimizeComplete(ctx, 3, 0, time.Millisecond, errors.New("incomplete"))
	m.OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, nil)

	tests := []struct {
		stage, status string
		want          float64
	}{
		{"import", "ok", 1},
		{"optimize", "ok", 1},
		{"optimize", "error", 1},
		{"render", "ok", 1},
		{"render", "error", 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(m.StageTotal.WithLabelValues(tt.stage, tt.status))
		if got != tt.want {
			t.Errorf("stage_total{%s,%s} = %v, want %v", tt.stage, tt.status, got, tt.want)
		}
	}
	if n := testutil.CollectAndCount(m.TourCities); n != 1 {
		t.Errorf("tour_cities series = %d, want 1", n)
	}
}

func TestPrometheus_Cache(t *testing.T) {
	ctx := context.Background()
	m := NewPrometheus(prometheus.NewRegistry())

	m.OnCacheMiss(ctx, "tour")
	m.OnCacheSet(ctx, "tour", 512)
	m.OnCacheHit(ctx, "tour")
	m.OnCacheHit(ctx, "tour")

	if got := testutil.ToFloat64(m.CacheEvents.WithLabelValues("tour", "hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheEvents.WithLabelValues("tour", "miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheEvents.WithLabelValues("tour", "set")); got != 1 {
		t.Errorf("sets = %v, want 1", got)
	}
}

func TestPrometheus_HTTP(t *testing.T) {
	ctx := context.Background()
	m := NewPrometheus(prometheus.NewRegistry())

	m.OnRequest(ctx, "POST", "/v1/solve")
	if got := testutil.ToFloat64(m.RequestsInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	m.OnResponse(ctx, "POST", "/v1/solve", 422, 10*time.Millisecond)
	if got := testutil.ToFloat64(m.RequestsInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/v1/solve", "422")); got != 1 {
		t.Errorf("requests_total = %v, want 1", got)
	}
}

func TestPrometheus_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg)
	m.OnCacheHit(context.Background(), "tour")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "citytour_cache_events_total" {
			found = true
		}
	}
	if !found {
		t.Error("citytour_cache_events_total not registered")
	}
}
