package io

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/citytour/pkg/core/route"
)

var (
	// ErrNoHeader is returned when a grid has no header row or the header
	// lists no destination.
	ErrNoHeader = errors.New("matrix header must list at least one destination")

	// ErrInvalidCost is returned when a non-blank cell is not an integer.
	ErrInvalidCost = errors.New("invalid cost")

	// ErrUnknownFormat is returned by [Import] for unsupported extensions.
	ErrUnknownFormat = errors.New("unknown matrix format")
)

// parseGrid builds a matrix from a header row and data rows as described in
// the package documentation. Row and column numbers in errors are 1-based.
func parseGrid(rows [][]string, reg *route.Registry) (*route.Matrix, error) {
	if len(rows) == 0 || len(rows[0]) < 2 {
		return nil, ErrNoHeader
	}

	header := rows[0]
	dests := make([]route.City, len(header))
	for j := 1; j < len(header); j++ {
		name := strings.TrimSpace(header[j])
		if name == "" {
			return nil, fmt.Errorf("header column %d: empty city name", j+1)
		}
		dests[j] = reg.CreateOrGet(name)
	}

	m := route.NewMatrix()
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		origin := strings.TrimSpace(row[0])
		if origin == "" {
			return nil, fmt.Errorf("row %d: empty city name", line)
		}
		from := reg.CreateOrGet(origin)

		for j := 1; j < len(row); j++ {
			cell := strings.TrimSpace(row[j])
			if cell == "" {
				continue
			}
			if j >= len(header) {
				return nil, fmt.Errorf("row %d, column %d: value %q has no destination in the header", line, j+1, cell)
			}
			cost, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d: %w %q", line, j+1, ErrInvalidCost, cell)
			}
			if err := m.Add(from, dests[j], cost); err != nil {
				return nil, fmt.Errorf("row %d, column %d: %w", line, j+1, err)
			}
		}
	}
	return m, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
