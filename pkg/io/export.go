package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/citytour/pkg/core/route"
	"github.com/matzehuels/citytour/pkg/core/tour"
)

type matrix struct {
	Cities []string `json:"cities,omitempty"`
	Edges  []edge   `json:"edges"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Cost int64  `json:"cost"`
}

// WriteJSON encodes m as a JSON edge list. Cities are listed in id order so
// that [ReadJSON] with a fresh registry reproduces the same ids.
func WriteJSON(m *route.Matrix, w io.Writer) error {
	out := matrix{Edges: make([]edge, 0, m.Len())}
	for _, c := range m.Cities() {
		out.Cities = append(out.Cities, c.String())
	}
	for _, e := range m.Edges() {
		out.Edges = append(out.Edges, edge{From: e.From.String(), To: e.To.String(), Cost: e.Cost})
	}
	return encode(w, out)
}

// ExportJSON writes m to a JSON file at path.
func ExportJSON(m *route.Matrix, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteJSON(m, w) })
}

// WriteResultJSON encodes res as indented JSON.
func WriteResultJSON(res *tour.Result, w io.Writer) error {
	return encode(w, res)
}

// ReadResultJSON decodes a result written by [WriteResultJSON].
func ReadResultJSON(r io.Reader) (*tour.Result, error) {
	var res tour.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &res, nil
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
