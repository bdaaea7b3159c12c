package view

import (
	"context"
	"time"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/observability"
)

// pathEdgeSize makes path edges dominate every other edge.
const pathEdgeSize = 1000

// Result is the outcome of a dispatched command. Err is non-nil when the
// command was a no-op; it never signals a broken view.
type Result struct {
	Command Command
	// Path is the node sequence found by findPath.
	Path []string
	Err  error
}

// Dispatch decodes name and args against the controller's command table and
// executes the result. Malformed arguments and unknown names leave the view
// untouched.
func (c *Controller) Dispatch(ctx context.Context, name string, args []any) Result {
	cmd, err := Decode(c.table, name, args)
	if err != nil {
		c.logger.Warn("invalid command arguments", "command", name, "err", err)
		observability.View().OnCommand(ctx, name, 0, err)
		return Result{Command: Unknown{Command: name}, Err: err}
	}
	return c.Execute(ctx, cmd)
}

// Execute runs a decoded command.
func (c *Controller) Execute(ctx context.Context, cmd Command) Result {
	start := time.Now()
	res := Result{Command: cmd}

	switch cmd := cmd.(type) {
	case Fit:
		c.state.Camera.Fit()
	case ZoomIn:
		_, res.Err = c.state.Camera.ZoomIn(orDefault(cmd.Factor, c.opts.ZoomFactor))
	case ZoomOut:
		_, res.Err = c.state.Camera.ZoomOut(orDefault(cmd.Factor, c.opts.ZoomFactor))
	case ZoomToNode:
		res.Err = c.zoomToNode(cmd)
	case FindPath:
		res.Path, res.Err = c.FindPath(cmd.From, cmd.To)
	case Select:
		res.Err = c.selectNodes(cmd.NodeIDs)
	case Unknown:
		c.logger.Warn("command is not available", "command", cmd.Command)
		res.Err = errors.New(errors.ErrCodeUnknownCommand, "command %q is not available", cmd.Command)
	default:
		res.Err = errors.New(errors.ErrCodeUnknownCommand, "command %T is not available", cmd)
	}

	observability.View().OnCommand(ctx, cmd.Name(), time.Since(start), res.Err)
	return res
}

// FindPath highlights the shortest path between from and to and returns its
// node IDs. When either node is missing, no path exists or a hop has no
// active edge, nothing changes and an error with code MISSING_NODE,
// EMPTY_PATH or MISSING_EDGE is returned.
func (c *Controller) FindPath(from, to string) ([]string, error) {
	g := c.state.Graph
	for _, id := range []string{from, to} {
		if g.Node(id) == nil {
			return nil, errors.New(errors.ErrCodeMissingNode, "node %q not found", id)
		}
	}
	path := g.ShortestPath(from, to)
	if len(path) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyPath, "no path from %q to %q", from, to)
	}

	edges, err := pathEdges(g, path)
	if err != nil {
		return nil, err
	}

	p := c.opts.Palette
	ids := make([]string, len(path))
	for i, n := range path {
		n.Color = p.Path
		ids[i] = n.ID
	}
	for _, e := range edges {
		e.Color = p.Path
		e.Size = pathEdgeSize
	}
	c.refresh()
	return ids, nil
}

// pathEdges returns the active edge joining each consecutive pair.
func pathEdges(g GraphProvider, path []*graph.Node) ([]*graph.Edge, error) {
	edges := make([]*graph.Edge, 0, max(len(path)-1, 0))
	for i := 0; i+1 < len(path); i++ {
		e := g.Edge(path[i].ID, path[i+1].ID)
		if e == nil {
			return nil, errors.New(errors.ErrCodeMissingEdge, "no edge between %q and %q", path[i].ID, path[i+1].ID)
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func (c *Controller) zoomToNode(cmd ZoomToNode) error {
	n := c.state.Graph.Node(cmd.NodeID)
	if n == nil {
		return errors.New(errors.ErrCodeMissingNode, "node %q not found", cmd.NodeID)
	}
	_, err := c.state.Camera.PanTo(n.X, n.Y, orDefault(cmd.Ratio, c.opts.ZoomToNodeRatio))
	return err
}

// selectNodes grays every node and highlights the known ones among ids.
func (c *Controller) selectNodes(ids []string) error {
	g := c.state.Graph
	targets := g.Nodes(ids...)
	if len(targets) == 0 {
		return errors.New(errors.ErrCodeMissingNode, "none of %v found", ids)
	}
	p := c.opts.Palette
	for _, n := range g.Nodes() {
		n.Color = p.Default
	}
	for _, n := range targets {
		n.Color = p.Highlight
	}
	c.refresh()
	return nil
}

// CommandWatcher triggers commands when the host supplies a new command
// object. Re-observing the same object does nothing.
type CommandWatcher struct {
	ctrl *Controller
	last *HostCommand
}

// NewCommandWatcher creates a watcher dispatching to ctrl.
func NewCommandWatcher(ctrl *Controller) *CommandWatcher {
	return &CommandWatcher{ctrl: ctrl}
}

// Observe dispatches cmd if it differs by identity from the last observed
// command. The boolean reports whether a dispatch happened.
func (w *CommandWatcher) Observe(ctx context.Context, cmd *HostCommand) (Result, bool) {
	if cmd == nil || cmd == w.last {
		return Result{}, false
	}
	w.last = cmd
	return w.ctrl.Dispatch(ctx, cmd.Command, cmd.Args()), true
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
