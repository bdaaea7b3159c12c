package graph

import (
	"strconv"
	"strings"
)

// =============================================================================
// Constants
// =============================================================================

// Recognized element data keys.
const (
	KeyID     = "id"
	KeySource = "source"
	KeyTarget = "target"
	KeyLabel  = "Label"
	KeySize   = "Size"
	KeyRoot   = "isRoot"
)

// RootLabel is the display label for nodes flagged with isRoot.
const RootLabel = "ROOT"

// Edge render types.
const (
	EdgeTypeArrow = "arrow"
	EdgeTypeFast  = "fast"
)

// DefaultEdgeWidth is the display size of an edge at rest.
const DefaultEdgeWidth = 0.01

// =============================================================================
// Document - Network Serialization
// =============================================================================

// Document is the serialization format for networks.
// It is read from JSON files and stored as-is in MongoDB collections.
type Document struct {
	Name     string   `json:"name,omitempty" bson:"name,omitempty"`
	Elements Elements `json:"elements" bson:"elements"`
}

// Elements groups node and edge elements.
type Elements struct {
	Nodes []NodeElement `json:"nodes" bson:"nodes"`
	Edges []EdgeElement `json:"edges" bson:"edges"`
}

// NodeElement is a serialized node: domain payload plus layout position.
type NodeElement struct {
	Data     Attributes `json:"data" bson:"data"`
	Position Position   `json:"position" bson:"position"`
}

// EdgeElement is a serialized edge. Data must carry id, source and target.
type EdgeElement struct {
	Data Attributes `json:"data" bson:"data"`
}

// Position is a 2D point in graph space.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// =============================================================================
// Attributes - Domain Payload
// =============================================================================

// Attributes is the read-only domain payload of a node or edge.
// Values come from JSON or BSON decoding, so accessors are lenient about
// numeric and boolean representations.
type Attributes map[string]any

// String returns the value for key as a string, or "" if absent.
func (a Attributes) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int, int32, int64:
		return strconv.FormatInt(toInt64(v), 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Float returns the value for key as a float64 and whether it was numeric.
func (a Attributes) Float(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int, int32, int64:
		return float64(toInt64(v)), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool returns the value for key as a bool. Strings "true"/"1" count as true.
func (a Attributes) Bool(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	}
	return 0
}

// =============================================================================
// Node and Edge - View-Facing Elements
// =============================================================================

// Node is a positioned vertex. Position, size and color are mutated by the
// view engine; Attrs is never modified after build.
type Node struct {
	ID    string
	Label string
	X     float64
	Y     float64
	Size  float64
	Color string
	Attrs Attributes

	// OriginalColor is captured once at load and restored on every reset.
	OriginalColor string
	// OriginalSize is captured once at load and restored on every reset.
	OriginalSize float64
}

// Edge connects two nodes. Suppressed is fixed at build time.
type Edge struct {
	ID         string
	Source     string
	Target     string
	Size       float64
	Color      string
	Type       string
	Suppressed bool
	Attrs      Attributes

	// DefaultColor is the load-time color restored on every reset.
	DefaultColor string
}

// Other returns the endpoint of e that is not id.
// For a self-loop it returns id.
func (e *Edge) Other(id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// Touches reports whether id is one of the edge's endpoints.
func (e *Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}
