// Package nodelink renders view scenes as static node-link diagrams.
//
// # Overview
//
// A [view.Scene] already carries everything a drawing needs: node
// positions, sizes and colors after the selection cascade, the active edge
// set, and the tier's style parameters. This package turns that snapshot into
// Graphviz DOT with every node pinned at its scene position, then renders it
// in-process.
//
// # Usage
//
//	dot := nodelink.ToDOT(ctrl.Scene(), nodelink.Options{Labels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Options{})
//
// For PDF or PNG output, convert the SVG with [render.ToPDF] or [render.ToPNG].
//
// # Sizing
//
// Node and edge sizes are mapped linearly from the scene's size range onto
// the tier's [MinNodeSize, MaxNodeSize] and the selection-dependent
// [MinEdgeSize, MaxEdgeSize] bands, the way an interactive renderer scales
// them. Labels are drawn for nodes whose mapped size reaches the tier's
// label threshold.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] with the neato engine,
// which honors pinned (pos="x,y!") coordinates.
package nodelink
