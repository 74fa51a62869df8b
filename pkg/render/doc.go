// Package render groups the visual outputs of citytour.
//
// The [nodelink] subpackage draws an optimized tour as a Graphviz diagram:
//
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// Tabular outputs (JSON and Excel workbooks) live in [pkg/io].
//
// [nodelink]: github.com/matzehuels/citytour/pkg/render/nodelink
// [pkg/io]: github.com/matzehuels/citytour/pkg/io
package render
