package graph

import (
	"fmt"
)

// DefaultNodeSize is used when a node element carries no numeric Size.
const DefaultNodeSize = 1.0

// BuildOptions configures [FromDocument].
type BuildOptions struct {
	// Suppressed classifies an edge as hidden by default. Nil means no edge
	// is suppressed.
	Suppressed func(Attributes) bool

	// LabelKey names the node attribute used as display label. Defaults to
	// [KeyLabel]; nodes without it are labeled by ID.
	LabelKey string
}

// Orphan describes an edge dropped at build time because an endpoint is
// not a known node.
type Orphan struct {
	EdgeID     string
	Source     string
	Target     string
	Suppressed bool
}

// BuildReport collects data-integrity findings from [FromDocument].
type BuildReport struct {
	Orphans []Orphan
}

// FromDocument builds a Network from a Document.
//
// Node IDs must be unique and non-empty; violations are returned as errors.
// Edges whose endpoints are unknown are not registered and are listed in the
// report instead, so callers can surface them as warnings. Edges without an
// ID receive one derived from their position in the document.
func FromDocument(doc Document, opts BuildOptions) (*Network, BuildReport, error) {
	labelKey := opts.LabelKey
	if labelKey == "" {
		labelKey = KeyLabel
	}

	var report BuildReport
	net := New()

	for i, el := range doc.Elements.Nodes {
		attrs := el.Data
		if attrs == nil {
			attrs = Attributes{}
		}
		id := attrs.String(KeyID)
		node := &Node{
			ID:    id,
			Label: nodeLabel(attrs, id, labelKey),
			X:     el.Position.X,
			Y:     el.Position.Y,
			Size:  DefaultNodeSize,
			Attrs: attrs,
		}
		if size, ok := attrs.Float(KeySize); ok && size > 0 {
			node.Size = size
		}
		node.OriginalSize = node.Size
		if err := net.AddNode(node); err != nil {
			return nil, report, fmt.Errorf("node %d (%q): %w", i, id, err)
		}
	}

	for i, el := range doc.Elements.Edges {
		attrs := el.Data
		if attrs == nil {
			attrs = Attributes{}
		}
		id := attrs.String(KeyID)
		if id == "" {
			id = fmt.Sprintf("e%d", i)
		}
		edge := &Edge{
			ID:     id,
			Source: attrs.String(KeySource),
			Target: attrs.String(KeyTarget),
			Size:   DefaultEdgeWidth,
			Type:   EdgeTypeArrow,
			Attrs:  attrs,
		}
		if opts.Suppressed != nil {
			edge.Suppressed = opts.Suppressed(attrs)
		}
		if net.Node(edge.Source) == nil || net.Node(edge.Target) == nil {
			report.Orphans = append(report.Orphans, Orphan{
				EdgeID:     id,
				Source:     edge.Source,
				Target:     edge.Target,
				Suppressed: edge.Suppressed,
			})
			continue
		}
		if err := net.AddEdge(edge); err != nil {
			return nil, report, fmt.Errorf("edge %d (%q): %w", i, id, err)
		}
	}

	return net, report, nil
}

// TagEquals returns a suppression predicate that hides every edge whose tag
// attribute does not equal value.
func TagEquals(tag, value string) func(Attributes) bool {
	return func(a Attributes) bool {
		return a.String(tag) != value
	}
}

func nodeLabel(attrs Attributes, id, labelKey string) string {
	if attrs.Bool(KeyRoot) {
		return RootLabel
	}
	if l := attrs.String(labelKey); l != "" {
		return l
	}
	return id
}
