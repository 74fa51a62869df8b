package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/citytour/pkg/core/route"
)

// Options configures [Import]. Each field applies to its format only.
type Options struct {
	CSV  CSVOptions
	XLSX XLSXOptions
}

// Format names a matrix file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// DetectFormat infers the format from the extension of path. ".txt" and
// ".tsv" files are read as delimited text.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// ParseFormat converts a format name such as "csv" or "xlsx" to a [Format].
// Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Import reads the matrix file at path with the reader matching its
// extension.
func Import(path string, reg *route.Registry, opts Options) (*route.Matrix, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLSX:
		return ImportXLSX(path, reg, opts.XLSX)
	case FormatJSON:
		return ImportJSON(path, reg)
	default:
		return ImportCSV(path, reg, opts.CSV)
	}
}

// Read decodes a matrix of the given format from r.
func Read(r io.Reader, format Format, reg *route.Registry, opts Options) (*route.Matrix, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r, reg, opts.CSV)
	case FormatXLSX:
		return ReadXLSX(r, reg, opts.XLSX)
	case FormatJSON:
		return ReadJSON(r, reg)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ReadJSON decodes a JSON edge list from r.
//
// Cities listed in "cities" are registered first, in order. Each edge must
// name both cities and carry a non-negative cost; an edge listed twice is an
// error. ReadJSON does not close r.
func ReadJSON(r io.Reader, reg *route.Registry) (*route.Matrix, error) {
	var data matrix
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	for _, name := range data.Cities {
		reg.CreateOrGet(name)
	}
	m := route.NewMatrix()
	for i, e := range data.Edges {
		if strings.TrimSpace(e.From) == "" || strings.TrimSpace(e.To) == "" {
			return nil, fmt.Errorf("edge %d: from and to are required", i)
		}
		if err := m.Add(reg.CreateOrGet(e.From), reg.CreateOrGet(e.To), e.Cost); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return m, nil
}

// ImportJSON reads the JSON edge list at path.
func ImportJSON(path string, reg *route.Registry) (*route.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, reg)
}
