package view

import (
	"context"

	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/observability"
)

// Highlight cascade sizes.
const (
	outgoingEdgeSize = 10
	neighborEdgeSize = 2
	linkEdgeSize     = 0.5
	linkNodeSize     = 0.1
)

// Reset restores every node to its original color and size and every
// registered edge to its default color, width and type. It leaves node
// positions and the active edge set alone; see [HiddenEdges.Collapse].
func (c *Controller) Reset() {
	c.reset()
	c.refresh()
}

func (c *Controller) reset() {
	g := c.state.Graph
	for _, n := range g.Nodes() {
		n.Color = n.OriginalColor
		n.Size = n.OriginalSize
	}
	for _, e := range g.AllEdges() {
		e.Color = e.DefaultColor
		e.Size = graph.DefaultEdgeWidth
		e.Type = graph.EdgeTypeArrow
	}
}

// ClickNode selects a node: it clears any previous selection, runs the
// highlight cascade over the node's neighborhood, reveals its suppressed
// edges and reports the selection. Unknown IDs are a no-op.
func (c *Controller) ClickNode(ctx context.Context, id string) {
	g := c.state.Graph
	node := g.Node(id)
	if node == nil {
		c.logger.Debug("click on unknown node", "node", id)
		return
	}

	c.collapse(ctx)
	c.reset()
	c.state.Selected = id

	if c.isLinkArtifact(node) {
		c.state.Settings.applySelection(restingEdgeSettings)
		c.refresh()
		c.notify([]string{id})
		return
	}

	c.state.Settings.applySelection(selectedEdgeSettings)
	p := c.opts.Palette
	cls := c.opts.Classifier

	for _, e := range g.AdjacentEdges(id) {
		if e.Source == id {
			e.Color, e.Size = p.Highlight, outgoingEdgeSize
			continue
		}
		src := g.Node(e.Source)
		switch {
		case src == nil:
		case cls.IsLink(src):
			e.Color, e.Size = p.Muted, linkEdgeSize
		case cls.Type(src) != cls.DeEmphasized:
			e.Color, e.Size = p.Highlight, neighborEdgeSize
		default:
			e.Color, e.Size = p.Soft, neighborEdgeSize
		}
	}

	neighbors := g.AdjacentNodes(id)
	for _, n := range neighbors {
		switch {
		case cls.Type(n) == cls.DeEmphasized:
			n.Color = p.Soft
		case cls.IsLink(n):
			for _, far := range g.AdjacentNodes(n.ID) {
				far.Color = p.Muted
			}
			for _, e := range g.AdjacentEdges(n.ID) {
				e.Color = p.Muted
				e.Type = graph.EdgeTypeFast
			}
			n.Size = linkNodeSize
			n.Color = p.Muted
		default:
			n.Color = p.Highlight
		}
	}
	node.Color = p.Highlight

	if revealed := c.state.Hidden.Reveal(id); revealed > 0 {
		observability.View().OnReveal(ctx, id, revealed)
		if _, err := c.state.Camera.PanTo(node.X, node.Y, c.opts.RecenterRatio); err != nil {
			c.logger.Warn("recenter after reveal", "node", id, "err", err)
		}
	}
	observability.View().OnSelect(ctx, id, len(neighbors))

	c.refresh()
	c.notify([]string{id})
}

// DoubleClickBackground clears the selection: it collapses revealed edges,
// restores displaced nodes, resets all styling and restores the resting
// edge settings. Calling it repeatedly is harmless.
func (c *Controller) DoubleClickBackground(ctx context.Context) {
	c.state.Settings.applySelection(restingEdgeSettings)
	c.collapse(ctx)
	c.reset()
	c.state.Selected = ""
	observability.View().OnDeselect(ctx)
	c.refresh()
}

func (c *Controller) collapse(ctx context.Context) {
	edges, restored := c.state.Hidden.Collapse()
	if edges > 0 || restored > 0 {
		observability.View().OnCollapse(ctx, edges, restored)
	}
}

// isLinkArtifact reports whether node is an unclassified node whose only
// incident edge leads to a link node. Selecting it defers to the host
// instead of expanding graph context.
func (c *Controller) isLinkArtifact(node *graph.Node) bool {
	cls := c.opts.Classifier
	if cls.Type(node) != "" {
		return false
	}
	edges := c.state.Graph.AdjacentEdges(node.ID)
	if len(edges) != 1 {
		return false
	}
	other := c.state.Graph.Node(edges[0].Other(node.ID))
	return other != nil && other.ID != node.ID && cls.IsLink(other)
}
