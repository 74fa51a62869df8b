package nodelink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/citytour/pkg/core/route"
	"github.com/matzehuels/citytour/pkg/core/tour"
)

// Output formats understood by [Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ErrUnsupportedFormat is returned by [Render] for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Options configures tour diagram rendering.
type Options struct {
	// HideCosts omits the cost labels on legs.
	HideCosts bool

	// Matrix, when set, adds its edges that are not part of the tour as
	// faint dotted arrows.
	Matrix *route.Matrix
}

// ToDOT converts a tour to Graphviz DOT format. Cities are laid out on a
// circle with the start city highlighted, legs are numbered in visiting
// order.
func ToDOT(res *tour.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph tour {\n")
	buf.WriteString("  layout=circo;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("\n")

	for _, c := range res.Cities {
		attrs := []string{fmt.Sprintf("label=%q", c.String())}
		if c.Equal(res.Start) {
			attrs = append(attrs, "fillcolor=gold", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(c), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	onTour := make(map[route.Key]bool, len(res.Edges))
	for i, e := range res.Edges {
		onTour[e.Key()] = true
		label := strconv.Itoa(i + 1)
		if !opts.HideCosts {
			label = fmt.Sprintf("%d: %d", i+1, e.Cost)
		}
		fmt.Fprintf(&buf, "  %s -> %s [label=%q, penwidth=2];\n", nodeID(e.From), nodeID(e.To), label)
	}

	if opts.Matrix != nil {
		for _, e := range opts.Matrix.Edges() {
			if onTour[e.Key()] || e.IsDiagonal() {
				continue
			}
			fmt.Fprintf(&buf, "  %s -> %s [style=dotted, color=grey70, arrowsize=0.5];\n", nodeID(e.From), nodeID(e.To))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(c route.City) string { return "c" + strconv.Itoa(c.ID) }

// Render produces the diagram in the given format.
func Render(dot, format string) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(dot)
	case FormatPNG:
		return RenderPNG(dot)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	svg, err := renderGraphviz(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderGraphviz(dot, graphviz.PNG)
}

func renderGraphviz(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
