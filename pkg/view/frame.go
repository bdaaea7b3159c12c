package view

import (
	"math"

	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/view/camera"
)

// Bounds is an axis-aligned box in graph coordinates.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// BoundsOf returns the box enclosing nodes. An empty slice yields the zero box.
func BoundsOf(nodes []*graph.Node) Bounds {
	if len(nodes) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, n := range nodes {
		b.MinX = math.Min(b.MinX, n.X)
		b.MinY = math.Min(b.MinY, n.Y)
		b.MaxX = math.Max(b.MaxX, n.X)
		b.MaxY = math.Max(b.MaxY, n.Y)
	}
	return b
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the box.
func (b Bounds) Center() (x, y float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

// Contains reports whether (x, y) lies inside the box, edges included.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Home returns the camera transform that fits the box.
func (b Bounds) Home() camera.Transform {
	x, y := b.Center()
	return camera.Transform{X: x, Y: y, Ratio: 1}
}

// Viewport maps camera transforms onto graph coordinates. At ratio 1 the
// viewport shows the whole frame; smaller ratios zoom in. Aspect is the
// viewport's width over its height.
type Viewport struct {
	Frame  Bounds
	Aspect float64
}

// minExtent keeps single-node and collinear frames from collapsing to a
// zero-area viewport.
const minExtent = 1.0

// Visible returns the graph-space box shown under t. The angle is ignored.
func (v Viewport) Visible(t camera.Transform) Bounds {
	w := math.Max(v.Frame.Width(), minExtent)
	h := math.Max(v.Frame.Height(), minExtent)
	if a := v.Aspect; a > 0 {
		// widen the short side so the frame fits in either orientation
		if w/h < a {
			w = h * a
		} else {
			h = w / a
		}
	}
	hw, hh := w/2*t.Ratio, h/2*t.Ratio
	return Bounds{MinX: t.X - hw, MinY: t.Y - hh, MaxX: t.X + hw, MaxY: t.Y + hh}
}

// ViewportIndex is a [SpatialIndex] that scans node positions on every
// query. Positions are read live, so radially revealed nodes are counted
// where they are drawn.
type ViewportIndex struct {
	graph    GraphProvider
	viewport Viewport
}

// NewViewportIndex creates an index over g whose frame is g's bounding box.
func NewViewportIndex(g GraphProvider, aspect float64) *ViewportIndex {
	return &ViewportIndex{
		graph:    g,
		viewport: Viewport{Frame: BoundsOf(g.Nodes()), Aspect: aspect},
	}
}

// SetAspect updates the viewport shape, e.g. after a terminal resize.
func (x *ViewportIndex) SetAspect(aspect float64) { x.viewport.Aspect = aspect }

// Viewport returns the mapping the index counts against.
func (x *ViewportIndex) Viewport() Viewport { return x.viewport }

// VisibleCount returns the number of nodes inside the viewport under t.
func (x *ViewportIndex) VisibleCount(t camera.Transform) int {
	box := x.viewport.Visible(t)
	n := 0
	for _, node := range x.graph.Nodes() {
		if box.Contains(node.X, node.Y) {
			n++
		}
	}
	return n
}

var _ SpatialIndex = (*ViewportIndex)(nil)
