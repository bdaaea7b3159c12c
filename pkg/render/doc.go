// Package render converts rendered view snapshots between output formats.
//
// The [nodelink] subpackage draws a view scene as SVG via Graphviz. This
// package converts that SVG to PDF or PNG with the external rsvg-convert
// tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(scene, opts), opts)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/netview/pkg/render/nodelink
package render
