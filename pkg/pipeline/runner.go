package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/citytour/pkg/cache"
	"github.com/matzehuels/citytour/pkg/core/route"
	"github.com/matzehuels/citytour/pkg/core/tour"
	"github.com/matzehuels/citytour/pkg/errors"
	cio "github.com/matzehuels/citytour/pkg/io"
	"github.com/matzehuels/citytour/pkg/observability"
	"github.com/matzehuels/citytour/pkg/render/nodelink"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the expiry of stored tours and artifacts. Zero keeps
	// cache.TTLTour and cache.TTLArtifact.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → optimize → render pipeline with caching.
// Rendering is skipped when opts.Formats is empty.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Load
	loadStart := time.Now()
	m, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Matrix = m
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.CityCount = m.CityCount()
	result.Stats.EdgeCount = m.Len()

	logger.Info("loaded matrix",
		"cities", result.Stats.CityCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Optimize
	optStart := time.Now()
	res, hit, err := r.SolveWithCacheInfo(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	result.Tour = res
	result.MatrixHash = matrixHash(m)
	result.Stats.OptimizeTime = time.Since(optStart)
	result.CacheInfo.TourHit = hit

	logger.Info("optimized tour",
		"start", res.Start,
		"cost", res.TotalCost,
		"passes", res.Passes,
		"cached", hit,
		"duration", result.Stats.OptimizeTime)

	// Stage 3: Render
	if len(opts.Formats) == 0 {
		return result, nil
	}
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, m, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the cost matrix named by opts with a fresh city registry.
func (r *Runner) Load(ctx context.Context, opts Options) (*route.Matrix, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnImportStart(ctx, string(opts.format))
	start := time.Now()

	m, err := load(opts)
	if err == nil && m.CityCount() > MaxCities {
		err = errors.New(errors.ErrCodeTooLarge, "matrix has %d cities (max %d)", m.CityCount(), MaxCities)
	}
	cities := 0
	if m != nil {
		cities = m.CityCount()
	}
	hooks.OnImportComplete(ctx, string(opts.format), cities, time.Since(start), err)
	if err != nil {
		return nil, classify(err, errors.ErrCodeInvalidMatrix)
	}
	return m, nil
}

func load(opts Options) (*route.Matrix, error) {
	reg := route.NewRegistry()
	if len(opts.Data) > 0 {
		return cio.Read(bytes.NewReader(opts.Data), opts.format, reg, opts.ImportOptions())
	}
	switch opts.format {
	case cio.FormatXLSX:
		return cio.ImportXLSX(opts.MatrixPath, reg, opts.ImportOptions().XLSX)
	case cio.FormatJSON:
		return cio.ImportJSON(opts.MatrixPath, reg)
	default:
		return cio.ImportCSV(opts.MatrixPath, reg, opts.ImportOptions().CSV)
	}
}

// SolveWithCacheInfo optimizes m with caching and returns cache hit info.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, m *route.Matrix, opts Options) (*tour.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	start, err := resolveStart(m, opts.Start)
	if err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.TourKey(matrixHash(m), opts.TourKeyOpts(start))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			res, err := cio.ReadResultJSON(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "tour")
				return res, true, nil // Cache hit
			}
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "tour")
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnOptimizeStart(ctx, m.CityCount())
	began := time.Now()
	opt := tour.Optimizer{Observer: &logObserver{logger: opts.Logger}}
	res, err := opt.Optimize(m, start, opts.mode)
	passes := 0
	if res != nil {
		passes = res.Passes
	}
	hooks.OnOptimizeComplete(ctx, m.CityCount(), passes, time.Since(began), err)
	if err != nil {
		return nil, false, Classify(err)
	}

	var buf bytes.Buffer
	if err := cio.WriteResultJSON(res, &buf); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, buf.Bytes(), r.ttl(cache.TTLTour)); err != nil {
			opts.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "tour", buf.Len())
		}
	}

	return res, false, nil // Cache miss
}

// Solve is a convenience wrapper that calls SolveWithCacheInfo and discards the cache hit info.
func (r *Runner) Solve(ctx context.Context, m *route.Matrix, opts Options) (*tour.Result, error) {
	res, _, err := r.SolveWithCacheInfo(ctx, m, opts)
	return res, err
}

// RenderWithCacheInfo draws res in every format of opts.Formats with caching
// and returns cache hit info. m is only drawn when opts.ShowMatrix is set.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *tour.Result, m *route.Matrix, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	var tourData bytes.Buffer
	if err := cio.WriteResultJSON(res, &tourData); err != nil {
		return nil, false, fmt.Errorf("serialize tour for cache key: %w", err)
	}
	tourHash := cache.Hash(tourData.Bytes())
	if opts.ShowMatrix {
		tourHash = cache.Hash([]byte(tourHash + matrixHash(m)))
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(tourHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := Render(ctx, res, m, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(tourHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact)); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Render draws res in every format of opts.Formats without caching.
func Render(ctx context.Context, res *tour.Result, m *route.Matrix, opts Options) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := render(res, m, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func render(res *tour.Result, m *route.Matrix, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(res, opts.NodelinkOptions(m))
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := nodelink.Render(dot, format)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// resolveStart finds the start city by name. An empty name selects the city
// with the lowest id, which is the first city the source listed.
func resolveStart(m *route.Matrix, name string) (route.City, error) {
	cities := m.Cities()
	if len(cities) == 0 {
		return route.City{}, errors.Wrap(errors.ErrCodeInvalidRoute, route.ErrInvalidRoute, "matrix has no cities")
	}
	if name == "" {
		return cities[0], nil
	}
	for _, c := range cities {
		if c.Name == name {
			return c, nil
		}
	}
	return route.City{}, errors.Wrap(errors.ErrCodeCityNotFound, route.ErrInvalidRoute, "start city %q is not part of the route", name)
}

// matrixHash returns the content hash of m's JSON encoding. City ids come
// from a fresh registry per load, so equal sources hash equally.
func matrixHash(m *route.Matrix) string {
	var buf bytes.Buffer
	if err := cio.WriteJSON(m, &buf); err != nil {
		return ""
	}
	return cache.Hash(buf.Bytes())
}
