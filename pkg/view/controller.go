package view

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/observability"
	"github.com/matzehuels/netview/pkg/view/camera"
)

// Defaults for [Options].
const (
	DefaultLargeGraphThreshold = 1000
	DefaultRecenterRatio       = 0.02
	DefaultZoomToNodeRatio     = 0.05
)

// StyleResolver maps node attributes to an initial color.
type StyleResolver interface {
	ResolveInitialColor(attrs graph.Attributes) string
}

// Classifier reads the domain attributes the highlight cascade depends on.
type Classifier struct {
	// LabelKey is the attribute whose prefix marks link nodes.
	LabelKey string `toml:"label_attribute"`
	// LinkPrefix is the label prefix of link nodes.
	LinkPrefix string `toml:"link_label_prefix"`
	// TypeKey is the node type attribute.
	TypeKey string `toml:"type_attribute"`
	// DeEmphasized is the node type that gets the soft highlight.
	DeEmphasized string `toml:"de_emphasized_type"`
}

// DefaultClassifier returns the stock attribute names.
func DefaultClassifier() Classifier {
	return Classifier{
		LabelKey:     graph.KeyLabel,
		LinkPrefix:   "Hidden",
		TypeKey:      "NodeType",
		DeEmphasized: "Gene",
	}
}

// IsLink reports whether n is a link node.
func (c Classifier) IsLink(n *graph.Node) bool {
	return c.LinkPrefix != "" && strings.HasPrefix(n.Attrs.String(c.LabelKey), c.LinkPrefix)
}

// Type returns the domain type of n.
func (c Classifier) Type(n *graph.Node) string {
	return n.Attrs.String(c.TypeKey)
}

// Options configures a [Controller]. Zero fields take defaults.
type Options struct {
	LargeGraphThreshold int
	Tiers               TierTable
	Palette             Palette
	Classifier          Classifier
	RecenterRatio       float64
	ZoomFactor          float64
	ZoomToNodeRatio     float64

	// Legacy restricts the command table to the camera-only set.
	Legacy bool

	Resolver StyleResolver
	Index    SpatialIndex
	Renderer Renderer
	Listener SelectionListener
	Clock    camera.Clock
	Logger   *log.Logger
}

func (o Options) withDefaults() Options {
	if o.LargeGraphThreshold <= 0 {
		o.LargeGraphThreshold = DefaultLargeGraphThreshold
	}
	if o.Tiers == (TierTable{}) {
		o.Tiers = DefaultTierTable()
	}
	if o.Palette == (Palette{}) {
		o.Palette = DefaultPalette()
	}
	if o.Classifier == (Classifier{}) {
		o.Classifier = DefaultClassifier()
	}
	if o.RecenterRatio <= 0 {
		o.RecenterRatio = DefaultRecenterRatio
	}
	if o.ZoomFactor <= 1 {
		o.ZoomFactor = camera.DefaultZoomFactor
	}
	if o.ZoomToNodeRatio <= 0 {
		o.ZoomToNodeRatio = DefaultZoomToNodeRatio
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// ViewState is the mutable state shared by every view component.
type ViewState struct {
	Graph    GraphProvider
	Camera   *camera.Camera
	Frame    Bounds
	Hidden   *HiddenEdges
	Settings Settings
	Tier     Tier
	Backend  string
	Selected string
}

// LoadReport summarizes a load.
type LoadReport struct {
	Nodes      int
	Suppressed int
	Orphans    []graph.Orphan
	Tier       Tier
	Backend    string
	Monitored  bool
}

// Controller owns a ViewState and applies view events and host commands to
// it. It is not safe for concurrent use; hosts call it from one goroutine.
type Controller struct {
	opts    Options
	state   ViewState
	table   Table
	monitor *DensityMonitor
	logger  *log.Logger
}

// New loads g into a fresh view. orphans are the edges the graph builder
// could not register; they are reported and logged, never drawn.
func New(g GraphProvider, orphans []graph.Orphan, opts Options) (*Controller, LoadReport) {
	opts = opts.withDefaults()
	c := &Controller{
		opts:   opts,
		logger: opts.Logger,
		table:  GraphTable,
	}
	if opts.Legacy {
		c.table = LegacyTable
	}
	report := c.load(g)
	report.Orphans = orphans
	for _, o := range orphans {
		c.logger.Warn("edge references unknown node", "edge", o.EdgeID, "source", o.Source, "target", o.Target, "suppressed", o.Suppressed)
	}
	observability.View().OnLoad(context.Background(), report.Nodes, report.Suppressed, len(orphans))
	return c, report
}

func (c *Controller) load(g GraphProvider) LoadReport {
	p := c.opts.Palette
	for _, n := range g.Nodes() {
		color := p.Default
		if c.opts.Resolver != nil {
			if resolved := c.opts.Resolver.ResolveInitialColor(n.Attrs); resolved != "" {
				color = resolved
			}
		}
		if strings.EqualFold(color, p.White) {
			color = p.WhiteAs
		}
		n.Color, n.OriginalColor = color, color
		if n.OriginalSize == 0 {
			n.OriginalSize = n.Size
		}
	}
	for _, e := range g.AllEdges() {
		e.DefaultColor = p.Default
		if e.Suppressed {
			e.DefaultColor = p.Suppressed
		}
		e.Color = e.DefaultColor
		e.Size = graph.DefaultEdgeWidth
		e.Type = graph.EdgeTypeArrow
	}

	frame := BoundsOf(g.Nodes())
	cam := camera.New(c.opts.Clock)
	cam.SetHome(frame.Home())
	c.state = ViewState{
		Graph:    g,
		Camera:   cam,
		Frame:    frame,
		Hidden:   NewHiddenEdges(g, p.Revealed),
		Tier:     TierCompact,
		Backend:  BackendCanvas,
		Settings: restingEdgeSettings,
	}

	total := g.NodeCount()
	large := total >= c.opts.LargeGraphThreshold
	if large {
		c.state.Tier = TierSparse
		c.state.Backend = BackendWebGL
		if c.opts.Index != nil {
			c.monitor = NewDensityMonitor(c.opts.Index, total, TierSparse, c.switchTier)
			cam.OnSettled(func(camera.Transform) { c.CameraCoordinatesUpdated() })
		} else {
			c.logger.Warn("large graph without spatial index, density monitor disabled", "nodes", total)
		}
	}
	c.state.Settings.StyleParams = c.opts.Tiers.Params(c.state.Tier)

	return LoadReport{
		Nodes:      total,
		Suppressed: c.state.Hidden.SuppressedCount(),
		Tier:       c.state.Tier,
		Backend:    c.state.Backend,
		Monitored:  c.monitor != nil,
	}
}

// State returns the view state. Callers must not mutate it.
func (c *Controller) State() *ViewState { return &c.state }

// Camera returns the view camera.
func (c *Controller) Camera() *camera.Camera { return c.state.Camera }

// Selected returns the selected node ID, or "".
func (c *Controller) Selected() string { return c.state.Selected }

// Tier returns the active rendering tier.
func (c *Controller) Tier() Tier { return c.state.Tier }

// Scene returns a snapshot for rendering.
func (c *Controller) Scene() Scene {
	s := c.state
	return buildScene(s.Graph, s.Camera.Transform(), s.Frame, s.Settings, s.Tier, s.Backend, s.Selected)
}

// Step advances the camera transition in flight and redraws if it moved.
// Hosts call it from their frame or tick loop.
func (c *Controller) Step() bool {
	if !c.state.Camera.Step() {
		return false
	}
	c.refresh()
	return true
}

// Settle jumps the camera transition in flight to its target. Hosts
// without a frame loop call it before reading the scene.
func (c *Controller) Settle() bool {
	if !c.state.Camera.Settle() {
		return false
	}
	c.refresh()
	return true
}

// Animating reports whether a camera transition is in flight.
func (c *Controller) Animating() bool { return c.state.Camera.Animating() }

// CameraCoordinatesUpdated re-evaluates the rendering tier. It is wired to
// camera settle events for large graphs and is a no-op otherwise.
func (c *Controller) CameraCoordinatesUpdated() {
	if c.monitor == nil {
		return
	}
	c.monitor.Update(c.state.Camera.Transform())
}

func (c *Controller) switchTier(from, to Tier, visible int) {
	c.state.Tier = to
	c.state.Settings.StyleParams = c.opts.Tiers.Params(to)
	observability.View().OnTierChange(context.Background(), from.String(), to.String(), visible)
	c.refresh()
}

// SetTierTable replaces the tier styles and re-applies the active one.
func (c *Controller) SetTierTable(tt TierTable) {
	c.opts.Tiers = tt
	c.state.Settings.StyleParams = tt.Params(c.state.Tier)
	c.refresh()
}

// Restore jumps the camera to t and re-selects nodeID if it is non-empty.
// A zero-ratio t leaves the camera at home. Used to resume a saved session.
func (c *Controller) Restore(ctx context.Context, t camera.Transform, nodeID string) {
	if nodeID != "" {
		c.ClickNode(ctx, nodeID)
	}
	if t.Ratio > 0 {
		c.state.Camera.Animate(t, 0)
	}
	c.Step()
}

func (c *Controller) refresh() {
	if c.opts.Renderer != nil {
		c.opts.Renderer.Refresh(c.Scene())
	}
}

func (c *Controller) notify(ids []string) {
	if c.opts.Listener == nil {
		return
	}
	byID := make(map[string]graph.Node, len(ids))
	for _, id := range ids {
		if n := c.state.Graph.Node(id); n != nil {
			byID[id] = *n
		}
	}
	c.opts.Listener.OnSelectNodes(ids, byID)
}
