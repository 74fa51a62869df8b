package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "citytour"

// Prometheus records hook events as Prometheus collectors. It implements
// [PipelineHooks], [CacheHooks] and [HTTPHooks].
type Prometheus struct {
	StageTotal    *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	TourCities    prometheus.Histogram
	TourPasses    prometheus.Histogram

	CacheEvents    *prometheus.CounterVec
	CacheSizeBytes *prometheus.HistogramVec

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
}

// NewPrometheus creates and registers the collectors on reg. Passing a fresh
// registry per test avoids duplicate registration panics.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		StageTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_total",
				Help:      "Pipeline stages run, by stage and status",
			},
			[]string{"stage", "status"},
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"stage"},
		),
		TourCities: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tour_cities",
				Help:      "Number of cities in optimized matrices",
				Buckets:   []float64{2, 5, 10, 25, 50, 100, 250, 500},
			},
		),
		TourPasses: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tour_passes",
				Help:      "Reduction passes per optimization",
				Buckets:   []float64{2, 5, 10, 25, 50, 100, 250, 500},
			},
		),
		CacheEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "events_total",
				Help:      "Cache lookups and writes, by key type and result",
			},
			[]string{"key_type", "result"},
		),
		CacheSizeBytes: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "entry_size_bytes",
				Help:      "Size of entries written to the cache",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
			},
			[]string{"key_type"},
		),
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "API requests, by method, route and status code",
			},
			[]string{"method", "route", "code"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Requests currently being served",
			},
		),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) stage(name string, d time.Duration, err error) {
	p.StageTotal.WithLabelValues(name, status(err)).Inc()
	p.StageDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (p *Prometheus) OnImportStart(context.Context, string) {}

func (p *Prometheus) OnImportComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	p.stage("import", d, err)
}

func (p *Prometheus) OnOptimizeStart(context.Context, int) {}

func (p *Prometheus) OnOptimizeComplete(_ context.Context, cities, passes int, d time.Duration, err error) {
	p.stage("optimize", d, err)
	if err == nil {
		p.TourCities.Observe(float64(cities))
		p.TourPasses.Observe(float64(passes))
	}
}

func (p *Prometheus) OnRenderStart(context.Context, []string) {}

func (p *Prometheus) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	p.stage("render", d, err)
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.CacheEvents.WithLabelValues(keyType, "set").Inc()
	p.CacheSizeBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {
	p.RequestsInFlight.Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.RequestsInFlight.Dec()
	p.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
