package view

import (
	"math"

	"github.com/matzehuels/netview/pkg/graph"
)

// Radial placement around a selected node. The angular position advances by
// radialStep per revealed edge; every radialPeriod-aligned step the ring
// grows by radialGrowth.
const (
	radialStartRadius = 9
	radialGrowth      = 2
	radialStep        = 10
	radialPeriod      = 36
)

// HiddenEdges manages suppressed edges: the node index built at load, the
// edges currently revealed, and the nodes displaced to show them.
type HiddenEdges struct {
	graph    GraphProvider
	accent   string
	index    map[string][]*graph.Edge
	revealed []*graph.Edge
	// displaced holds the pre-reveal position of every moved node.
	displaced map[string]graph.Position
}

// NewHiddenEdges indexes every suppressed edge of g under both endpoints.
// Suppressed edges are taken out of the active set.
func NewHiddenEdges(g GraphProvider, accent string) *HiddenEdges {
	h := &HiddenEdges{
		graph:     g,
		accent:    accent,
		index:     make(map[string][]*graph.Edge),
		displaced: make(map[string]graph.Position),
	}
	for _, e := range g.AllEdges() {
		if !e.Suppressed {
			continue
		}
		g.RemoveEdge(e.ID)
		h.index[e.Source] = append(h.index[e.Source], e)
		if e.Target != e.Source {
			h.index[e.Target] = append(h.index[e.Target], e)
		}
	}
	return h
}

// Suppressed returns the indexed suppressed edges incident to nodeID.
func (h *HiddenEdges) Suppressed(nodeID string) []*graph.Edge {
	return h.index[nodeID]
}

// SuppressedCount returns the number of distinct indexed edges.
func (h *HiddenEdges) SuppressedCount() int {
	seen := make(map[string]bool)
	for _, edges := range h.index {
		for _, e := range edges {
			seen[e.ID] = true
		}
	}
	return len(seen)
}

// Revealed returns the edges inserted by the last Reveal.
func (h *HiddenEdges) Revealed() []*graph.Edge { return h.revealed }

// Displaced returns a copy of the displaced-node registry.
func (h *HiddenEdges) Displaced() map[string]graph.Position {
	out := make(map[string]graph.Position, len(h.displaced))
	for id, p := range h.displaced {
		out[id] = p
	}
	return out
}

// Reveal inserts the suppressed edges of nodeID into the active set and
// arranges their far endpoints on rings around it, coloring them with the
// accent. It returns the number of edges considered; zero means no-op.
//
// Callers must Collapse before revealing for a different node.
func (h *HiddenEdges) Reveal(nodeID string) int {
	center := h.graph.Node(nodeID)
	if center == nil {
		return 0
	}
	edges := h.index[nodeID]
	if len(edges) == 0 {
		return 0
	}

	count, rings := 0, 0
	for _, e := range edges {
		if h.graph.InsertEdge(e.ID) {
			h.revealed = append(h.revealed, e)
		}

		other := e.Other(nodeID)
		if other == nodeID {
			continue
		}
		n := h.graph.Node(other)
		if n == nil {
			continue
		}
		if _, saved := h.displaced[other]; !saved {
			h.displaced[other] = graph.Position{X: n.X, Y: n.Y}
		}

		radius := float64(rings*radialGrowth + radialStartRadius)
		dx, dy := project(float64(count+rings*radialGrowth), radius)
		n.X = center.X + dx
		n.Y = center.Y + dy
		n.Color = h.accent

		count += radialStep
		if count%radialPeriod == 0 {
			rings++
		}
	}
	return len(edges)
}

// Collapse removes every revealed edge from the active set and moves every
// displaced node back. It returns the number of edges removed and nodes
// restored. Collapsing with nothing revealed is a no-op.
func (h *HiddenEdges) Collapse() (edges, restored int) {
	for _, e := range h.revealed {
		if h.graph.RemoveEdge(e.ID) {
			edges++
		}
	}
	h.revealed = nil

	for id, p := range h.displaced {
		if n := h.graph.Node(id); n != nil {
			n.X, n.Y = p.X, p.Y
			restored++
		}
	}
	clear(h.displaced)
	return edges, restored
}

// project maps an angular position in degrees (0 pointing up) and a radius
// to an offset.
func project(deg, radius float64) (float64, float64) {
	angle := (deg - 90) / 180 * math.Pi
	return radius * math.Cos(angle), radius * math.Sin(angle)
}
