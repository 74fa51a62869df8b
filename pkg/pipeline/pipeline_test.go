package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/citytour/pkg/cache"
	"github.com/matzehuels/citytour/pkg/core/route"
	"github.com/matzehuels/citytour/pkg/errors"
	cio "github.com/matzehuels/citytour/pkg/io"
)

const sampleCSV = `;Paris;Lyon;Nice
Paris;0;465;930
Lyon;470;;470
Nice;935;475;
`

func writeMatrix(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"dot", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptions_ValidateAndSetDefaults(t *testing.T) {
	opts := Options{MatrixPath: "routes.xlsx", Formats: []string{"svg", "dot", "svg"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}

	if opts.Mode != "symmetric" || opts.RouteMode() != route.Symmetric {
		t.Errorf("Mode = %q, want symmetric", opts.Mode)
	}
	if opts.Delimiter != ";" {
		t.Errorf("Delimiter = %q, want ;", opts.Delimiter)
	}
	if opts.format != cio.FormatXLSX {
		t.Errorf("format = %q, want xlsx", opts.format)
	}
	if !slices.Equal(opts.Formats, []string{"dot", "svg"}) {
		t.Errorf("Formats = %v, want [dot svg]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second ValidateAndSetDefaults() error: %v", err)
	}
}

func TestOptions_ValidateAndSetDefaults_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no source", Options{}, errors.ErrCodeInvalidPath},
		{"unknown extension", Options{MatrixPath: "routes.ods"}, errors.ErrCodeInvalidFormat},
		{"unknown format", Options{Data: []byte("x"), Format: "yaml"}, errors.ErrCodeInvalidFormat},
		{"bad mode", Options{MatrixPath: "r.csv", Mode: "circular"}, errors.ErrCodeInvalidInput},
		{"bad delimiter", Options{MatrixPath: "r.csv", Delimiter: ";;"}, errors.ErrCodeInvalidInput},
		{"bad start", Options{MatrixPath: "r.csv", Start: "A->B"}, errors.ErrCodeInvalidInput},
		{"bad render format", Options{MatrixPath: "r.csv", Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("ValidateAndSetDefaults() succeeded, want error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (%v)", got, tt.code, err)
			}
		})
	}
}

func TestRunner_Execute(t *testing.T) {
	path := writeMatrix(t, "routes.csv", sampleCSV)
	runner := NewRunner(nil, nil, nil)

	res, err := runner.Execute(context.Background(), Options{MatrixPath: path, Start: "Paris"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID not set")
	}
	if res.MatrixHash == "" {
		t.Error("MatrixHash not set")
	}
	if res.Stats.CityCount != 3 || res.Stats.EdgeCount != 7 {
		t.Errorf("Stats = %+v, want 3 cities, 7 edges", res.Stats)
	}
	if got := res.Tour.TotalCost; got != 1865 {
		t.Errorf("TotalCost = %d, want 1865", got)
	}
	if got := res.Tour.Start.Name; got != "Paris" {
		t.Errorf("Start = %s, want Paris", got)
	}
	if !res.Tour.IsClosed() {
		t.Error("tour is not closed")
	}
	if res.Artifacts != nil {
		t.Errorf("Artifacts = %v, want none without formats", res.Artifacts)
	}
}

func TestRunner_Execute_DefaultStart(t *testing.T) {
	path := writeMatrix(t, "routes.csv", sampleCSV)
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{MatrixPath: path})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got := res.Tour.Start.Name; got != "Paris" {
		t.Errorf("default start = %s, want the first listed city Paris", got)
	}
}

func TestRunner_Execute_Cache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := writeMatrix(t, "routes.csv", sampleCSV)
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()

	first, err := runner.Execute(ctx, Options{MatrixPath: path, Start: "Lyon"})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.TourHit {
		t.Error("first run hit the cache")
	}

	second, err := runner.Execute(ctx, Options{MatrixPath: path, Start: "Lyon"})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.TourHit {
		t.Error("second run missed the cache")
	}
	if second.Tour.TotalCost != first.Tour.TotalCost || !slices.Equal(second.Tour.Cities, first.Tour.Cities) {
		t.Errorf("cached tour %v differs from %v", second.Tour.Cities, first.Tour.Cities)
	}
	if second.RunID == first.RunID {
		t.Error("RunID reused across runs")
	}

	refreshed, err := runner.Execute(ctx, Options{MatrixPath: path, Start: "Lyon", Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.TourHit {
		t.Error("Refresh run hit the cache")
	}

	other, err := runner.Execute(ctx, Options{MatrixPath: path, Start: "Nice"})
	if err != nil {
		t.Fatal(err)
	}
	if other.CacheInfo.TourHit {
		t.Error("different start city hit the cache")
	}
}

func TestRunner_Execute_Render(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := writeMatrix(t, "routes.csv", sampleCSV)
	runner := NewRunner(c, nil, nil)
	opts := Options{MatrixPath: path, Start: "Paris", Formats: []string{FormatDOT}}

	res, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	dot := string(res.Artifacts[FormatDOT])
	if !strings.Contains(dot, "digraph tour") || !strings.Contains(dot, `"Paris"`) {
		t.Errorf("unexpected DOT artifact:\n%s", dot)
	}
	if res.CacheInfo.RenderHit {
		t.Error("first render hit the cache")
	}

	again, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.RenderHit {
		t.Error("second render missed the cache")
	}
	if string(again.Artifacts[FormatDOT]) != dot {
		t.Error("cached artifact differs")
	}
}

func TestRunner_Execute_Data(t *testing.T) {
	data := `{"edges": [
		{"from": "A", "to": "B", "cost": 4},
		{"from": "B", "to": "A", "cost": 7}
	]}`
	for _, start := range []string{"A", "B"} {
		t.Run(start, func(t *testing.T) {
			res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
				Data:   []byte(data),
				Format: "json",
				Start:  start,
				Mode:   "asymmetric",
			})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if res.Tour.TotalCost != 11 {
				t.Errorf("TotalCost = %d, want 11", res.Tour.TotalCost)
			}
		})
	}
}

func TestRunner_Execute_Errors(t *testing.T) {
	incomplete := `{"edges": [
		{"from": "A", "to": "B", "cost": 1},
		{"from": "A", "to": "C", "cost": 2},
		{"from": "B", "to": "A", "cost": 3},
		{"from": "B", "to": "C", "cost": 4}
	]}`

	tests := []struct {
		name string
		opts Options
		code errors.Code
		is   error
	}{
		{
			name: "missing file",
			opts: Options{MatrixPath: filepath.Join(t.TempDir(), "missing.csv")},
			code: errors.ErrCodeFileNotFound,
			is:   os.ErrNotExist,
		},
		{
			name: "bad cost",
			opts: Options{Data: []byte(";A;B\nA;;x\n")},
			code: errors.ErrCodeInvalidMatrix,
			is:   cio.ErrInvalidCost,
		},
		{
			name: "malformed json",
			opts: Options{Data: []byte("{"), Format: "json"},
			code: errors.ErrCodeInvalidMatrix,
		},
		{
			name: "unknown start",
			opts: Options{Data: []byte(sampleCSV), Start: "Berlin"},
			code: errors.ErrCodeCityNotFound,
			is:   route.ErrInvalidRoute,
		},
		{
			name: "no edges",
			opts: Options{Data: []byte(";A;B\n")},
			code: errors.ErrCodeInvalidRoute,
			is:   route.ErrInvalidRoute,
		},
		{
			name: "incomplete",
			opts: Options{Data: []byte(incomplete), Format: "json", Start: "A", Mode: "asymmetric"},
			code: errors.ErrCodeIncompleteRoute,
			is:   route.ErrIncompleteRoute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, nil, nil).Execute(context.Background(), tt.opts)
			if err == nil {
				t.Fatal("Execute() succeeded, want error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (%v)", got, tt.code, err)
			}
			if tt.is != nil && !stderrors.Is(err, tt.is) {
				t.Errorf("error %v does not wrap %v", err, tt.is)
			}
		})
	}
}

func TestRunner_Execute_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, nil).Execute(ctx, Options{Data: []byte(sampleCSV)})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestClassify(t *testing.T) {
	coded := errors.New(errors.ErrCodeTooLarge, "big")
	tests := []struct {
		err  error
		want errors.Code
	}{
		{fmt.Errorf("pass 3: %w", route.ErrInconsistentRoute), errors.ErrCodeInconsistentRoute},
		{fmt.Errorf("assemble: %w", route.ErrIncompleteRoute), errors.ErrCodeIncompleteRoute},
		{route.ErrInvalidRoute, errors.ErrCodeInvalidRoute},
		{fmt.Errorf("x: %w", route.ErrNegativeCost), errors.ErrCodeInvalidMatrix},
		{cio.ErrUnknownFormat, errors.ErrCodeInvalidFormat},
		{coded, errors.ErrCodeTooLarge},
		{stderrors.New("boom"), errors.ErrCodeInternal},
	}
	for _, tt := range tests {
		if got := errors.GetCode(Classify(tt.err)); got != tt.want {
			t.Errorf("Classify(%v) code = %v, want %v", tt.err, got, tt.want)
		}
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) != nil")
	}
	if err := Classify(context.Canceled); err != context.Canceled {
		t.Errorf("Classify(Canceled) = %v, want unchanged", err)
	}
}
