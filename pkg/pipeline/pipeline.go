// Package pipeline provides the solve pipeline shared by the CLI and the API.
//
// This package implements the complete load → optimize → render pipeline so
// that every entry point caches, logs and reports errors the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a cost matrix from a CSV, Excel or JSON source
//  2. Optimize: Run the reduction heuristic from the chosen start city
//  3. Render: Draw the tour in the requested formats (optional)
//
// Tours and rendered artifacts are cached by content hash, so solving the
// same matrix twice returns the stored tour.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    MatrixPath: "routes.csv",
//	    Start:      "Paris",
//	    Formats:    []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Tour.TotalCost)
//
// Errors returned by the runner carry a [errors.Code] that the API maps to an
// HTTP status.
//
// [errors.Code]: github.com/matzehuels/citytour/pkg/errors.Code
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/citytour/pkg/cache"
	"github.com/matzehuels/citytour/pkg/core/route"
	"github.com/matzehuels/citytour/pkg/core/tour"
	"github.com/matzehuels/citytour/pkg/errors"
	cio "github.com/matzehuels/citytour/pkg/io"
	"github.com/matzehuels/citytour/pkg/render/nodelink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMode is the matrix mode when none is given.
	DefaultMode = route.Symmetric

	// DefaultDelimiter separates cells in delimited matrix files.
	DefaultDelimiter = ";"

	// MaxCities bounds the size of a matrix accepted by the pipeline.
	MaxCities = 2000
)

// Format constants for rendered outputs.
const (
	FormatDOT = nodelink.FormatDOT
	FormatSVG = nodelink.FormatSVG
	FormatPNG = nodelink.FormatPNG
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one of MatrixPath and Data is used; Data wins
	// when both are set.
	MatrixPath string `json:"-"`
	Data       []byte `json:"-"`
	Format     string `json:"format,omitempty"` // csv, xlsx or json; detected from MatrixPath when empty
	Delimiter  string `json:"delimiter,omitempty"`
	Sheet      string `json:"sheet,omitempty"`

	// Optimize options
	Start   string `json:"start,omitempty"` // defaults to the first city of the matrix
	Mode    string `json:"mode,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	HideCosts  bool     `json:"hide_costs,omitempty"`
	ShowMatrix bool     `json:"show_matrix,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	mode      route.Mode
	delimiter rune
	format    cio.Format

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// Matrix is the loaded cost matrix, before normalization.
	Matrix *route.Matrix

	// MatrixHash is the content hash of Matrix.
	MatrixHash string

	// Tour is the optimized tour.
	Tour *tour.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CityCount    int
	EdgeCount    int
	LoadTime     time.Duration
	OptimizeTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TourHit   bool // Whether the tour came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a render format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all render formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if len(o.Data) == 0 {
		if err := errors.ValidatePath(o.MatrixPath); err != nil {
			return err
		}
	}

	switch {
	case o.Format != "":
		f, err := cio.ParseFormat(o.Format)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "matrix format")
		}
		o.format = f
	case len(o.Data) > 0:
		o.format = cio.FormatCSV
	default:
		f, err := cio.DetectFormat(o.MatrixPath)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "matrix format")
		}
		o.format = f
	}

	if o.Delimiter == "" {
		o.Delimiter = DefaultDelimiter
	}
	d, err := errors.ValidateDelimiter(o.Delimiter)
	if err != nil {
		return err
	}
	o.delimiter = d

	if o.Mode == "" {
		o.Mode = DefaultMode.String()
	}
	mode, err := route.ParseMode(o.Mode)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "mode")
	}
	o.mode = mode

	o.Start = strings.TrimSpace(o.Start)
	if o.Start != "" {
		if err := errors.ValidateCityName(o.Start); err != nil {
			return err
		}
	}

	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Formats = slices.Compact(slices.Sorted(slices.Values(o.Formats)))

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// RouteMode returns the parsed mode. Only valid after ValidateAndSetDefaults.
func (o *Options) RouteMode() route.Mode { return o.mode }

// ImportOptions returns the reader options for the matrix source.
func (o *Options) ImportOptions() cio.Options {
	return cio.Options{
		CSV:  cio.CSVOptions{Delimiter: o.delimiter},
		XLSX: cio.XLSXOptions{Sheet: o.Sheet},
	}
}

// TourKeyOpts returns cache key options for the optimize stage.
func (o *Options) TourKeyOpts(start route.City) cache.TourKeyOpts {
	return cache.TourKeyOpts{
		Start: start.Name,
		Mode:  o.mode.String(),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		HideCosts:  o.HideCosts,
		ShowMatrix: o.ShowMatrix,
	}
}

// NodelinkOptions returns the diagram options for m.
func (o *Options) NodelinkOptions(m *route.Matrix) nodelink.Options {
	opts := nodelink.Options{HideCosts: o.HideCosts}
	if o.ShowMatrix {
		opts.Matrix = m
	}
	return opts
}
