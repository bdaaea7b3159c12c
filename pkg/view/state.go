package view

import (
	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/view/camera"
)

// =============================================================================
// External Collaborators
// =============================================================================

// GraphProvider is the graph storage and query surface the view mutates.
// Lookups return nil for unknown IDs. [graph.Network] implements it.
type GraphProvider interface {
	Node(id string) *graph.Node
	Nodes(ids ...string) []*graph.Node
	NodeCount() int

	// Edge returns the active edge joining two nodes in either direction.
	Edge(source, target string) *graph.Edge
	// Edges returns the active edges.
	Edges() []*graph.Edge
	// AllEdges returns every edge including inactive suppressed ones.
	AllEdges() []*graph.Edge

	AdjacentNodes(id string) []*graph.Node
	AdjacentEdges(id string) []*graph.Edge
	ShortestPath(start, goal string) []*graph.Node

	InsertEdge(edgeID string) bool
	RemoveEdge(edgeID string) bool
}

// SpatialIndex estimates how many nodes are inside the viewport for a
// camera transform. Renderers own it; the view only queries it.
type SpatialIndex interface {
	VisibleCount(t camera.Transform) int
}

// Renderer draws scenes. Refresh is called after every mutation with a fresh
// snapshot; implementations must not retain references into the view.
type Renderer interface {
	Refresh(scene Scene)
}

// SelectionListener receives completed selections. byID holds value copies
// of the selected nodes.
type SelectionListener interface {
	OnSelectNodes(ids []string, byID map[string]graph.Node)
}

// SelectionFunc adapts a function to [SelectionListener].
type SelectionFunc func(ids []string, byID map[string]graph.Node)

// OnSelectNodes implements SelectionListener.
func (f SelectionFunc) OnSelectNodes(ids []string, byID map[string]graph.Node) {
	f(ids, byID)
}

// =============================================================================
// Palette and Settings
// =============================================================================

// Palette holds every color the view assigns.
type Palette struct {
	Default    string `toml:"default" json:"default"`         // resting edge color
	Highlight  string `toml:"highlight" json:"highlight"`     // selected node, strong neighbors
	Soft       string `toml:"soft" json:"soft"`               // de-emphasized neighbors
	Muted      string `toml:"muted" json:"muted"`             // link nodes and their cascade
	Revealed   string `toml:"revealed" json:"revealed"`       // displaced endpoints of revealed edges
	Suppressed string `toml:"suppressed" json:"suppressed"`   // resting color of suppressed edges
	Path       string `toml:"path" json:"path"`               // findPath overlay
	White      string `toml:"white" json:"white"`             // resolver output that gets normalized
	WhiteAs    string `toml:"white_as" json:"white_as"`       // replacement for White
}

// DefaultPalette returns the stock colors.
func DefaultPalette() Palette {
	return Palette{
		Default:    "#808080",
		Highlight:  "#FF0000",
		Soft:       "#FFAAAA",
		Muted:      "#000000",
		Revealed:   "#FF7700",
		Suppressed: "#FFAA00",
		Path:       "#FF0000",
		White:      "#FFFFFF",
		WhiteAs:    "#AAAAAA",
	}
}

// Label color modes.
const (
	LabelColorDefault = "default"
	LabelColorNode    = "node"
)

// Settings are the renderer parameters owned by the view: the active tier's
// style plus the selection-dependent edge and label settings.
type Settings struct {
	StyleParams
	LabelColor  string  `json:"labelColor"`
	MinEdgeSize float64 `json:"minEdgeSize"`
	MaxEdgeSize float64 `json:"maxEdgeSize"`
}

// Selection-dependent settings toggled by select and deselect.
var (
	selectedEdgeSettings = Settings{LabelColor: LabelColorNode, MinEdgeSize: 0.1, MaxEdgeSize: 1}
	restingEdgeSettings  = Settings{LabelColor: LabelColorDefault, MinEdgeSize: 0.001, MaxEdgeSize: 0.3}
)

func (s *Settings) applySelection(from Settings) {
	s.LabelColor = from.LabelColor
	s.MinEdgeSize = from.MinEdgeSize
	s.MaxEdgeSize = from.MaxEdgeSize
}

// Backend hints for hosts that choose a drawing backend by graph size.
const (
	BackendCanvas = "canvas"
	BackendWebGL  = "webgl"
)

// =============================================================================
// Scene - Renderer Snapshot
// =============================================================================

// Scene is an immutable snapshot of the view handed to renderers.
type Scene struct {
	Nodes    []SceneNode      `json:"nodes"`
	Edges    []SceneEdge      `json:"edges"`
	Camera   camera.Transform `json:"camera"`
	Frame    Bounds           `json:"frame"`
	Settings Settings         `json:"settings"`
	Tier     Tier             `json:"tier"`
	Backend  string           `json:"backend"`
	Selected string           `json:"selected,omitempty"`
}

// SceneNode is a node as drawn.
type SceneNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
}

// SceneEdge is an active edge as drawn.
type SceneEdge struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
	Type   string  `json:"type"`
}

// Node returns the scene node with the given ID.
func (s Scene) Node(id string) (SceneNode, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return SceneNode{}, false
}

func buildScene(g GraphProvider, cam camera.Transform, frame Bounds, settings Settings, tier Tier, backend, selected string) Scene {
	nodes := g.Nodes()
	edges := g.Edges()
	s := Scene{
		Nodes:    make([]SceneNode, len(nodes)),
		Edges:    make([]SceneEdge, len(edges)),
		Camera:   cam,
		Frame:    frame,
		Settings: settings,
		Tier:     tier,
		Backend:  backend,
		Selected: selected,
	}
	for i, n := range nodes {
		s.Nodes[i] = SceneNode{ID: n.ID, Label: n.Label, X: n.X, Y: n.Y, Size: n.Size, Color: n.Color}
	}
	for i, e := range edges {
		s.Edges[i] = SceneEdge{ID: e.ID, Source: e.Source, Target: e.Target, Size: e.Size, Color: e.Color, Type: e.Type}
	}
	return s
}
