package io

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/citytour/pkg/core/route"
	"github.com/matzehuels/citytour/pkg/core/tour"
)

// XLSXOptions configures [ReadXLSX].
type XLSXOptions struct {
	// Sheet is the worksheet holding the matrix. Empty means the first sheet.
	Sheet string
}

// ReadXLSX decodes a matrix grid from an Excel workbook. Cells are read as
// their displayed text, so numbers formatted with decimals are rejected.
// ReadXLSX does not close r.
func ReadXLSX(r io.Reader, reg *route.Registry, opts XLSXOptions) (*route.Matrix, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	m, err := parseGrid(rows, reg)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	return m, nil
}

// ImportXLSX reads the matrix workbook at path.
func ImportXLSX(path string, reg *route.Registry, opts XLSXOptions) (*route.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ReadXLSX(f, reg, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

const resultSheet = "Tour"

// WriteResultXLSX writes res as a workbook with one "Tour" sheet: a row per
// leg followed by the totals and bounds.
func WriteResultXLSX(res *tour.Result, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultSheet); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(resultSheet, "A1", &[]any{"Leg", "From", "To", "Cost"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(resultSheet, "A1", "D1", headerStyle); err != nil {
		return err
	}

	row := 2
	for i, e := range res.Edges {
		if err := f.SetSheetRow(resultSheet, cellAddr("A", row), &[]any{i + 1, e.From.String(), e.To.String(), e.Cost}); err != nil {
			return err
		}
		row++
	}
	row++

	summary := [][]any{
		{"Total cost", res.TotalCost},
		{"Lower bound", res.LowerBound},
	}
	if res.HasUpperBound {
		summary = append(summary, []any{"Upper bound", res.UpperBound})
	}
	summary = append(summary, []any{"Mode", res.Mode.String()}, []any{"Passes", res.Passes})
	for _, s := range summary {
		if err := f.SetSheetRow(resultSheet, cellAddr("A", row), &s); err != nil {
			return err
		}
		row++
	}
	_ = f.SetColWidth(resultSheet, "B", "C", 18)

	return f.Write(w)
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
