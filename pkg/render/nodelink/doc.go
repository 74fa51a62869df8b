// Package nodelink renders optimized tours as node-link diagrams.
//
// # Overview
//
// Cities become nodes placed on a circle and the legs of the tour become
// numbered arrows, so the visiting order can be read off the picture. The
// start city is highlighted.
//
// # Usage
//
// Convert a result to DOT format, then render:
//
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := nodelink.RenderPNG(dot)
//
// [Render] dispatches on a format name ("dot", "svg", "png").
//
// # Options
//
//   - HideCosts: drop the cost from leg labels
//   - Matrix: draw the remaining matrix edges as faint dotted arrows
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and PNG
// rendering; no Graphviz installation is required.
package nodelink
