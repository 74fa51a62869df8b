package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/citytour/pkg/core/route"
)

// DefaultDelimiter separates cells when [CSVOptions.Delimiter] is unset.
const DefaultDelimiter = ';'

// CSVOptions configures [ReadCSV].
type CSVOptions struct {
	// Delimiter separates cells. Zero means [DefaultDelimiter].
	Delimiter rune
}

// ReadCSV decodes a delimited matrix grid from r.
//
// Rows may have different lengths; missing trailing cells are treated as
// blank. ReadCSV does not close r.
func ReadCSV(r io.Reader, reg *route.Registry, opts CSVOptions) (*route.Matrix, error) {
	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	if cr.Comma == 0 {
		cr.Comma = DefaultDelimiter
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	return parseGrid(rows, reg)
}

// ImportCSV reads the delimited matrix file at path.
func ImportCSV(path string, reg *route.Registry, opts CSVOptions) (*route.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ReadCSV(f, reg, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
