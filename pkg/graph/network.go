package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Network.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Network.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidEdgeID is returned by [Network.AddEdge] when the edge ID is empty.
	ErrInvalidEdgeID = errors.New("edge ID must not be empty")

	// ErrDuplicateEdgeID is returned by [Network.AddEdge] when an edge with the
	// same ID already exists.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownSourceNode is returned by [Network.AddEdge] when the source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Network.AddEdge] when the target
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Network is the in-memory graph provider. Nodes and edges are registered once
// at build time; the active edge set changes as suppressed edges are revealed
// and collapsed.
//
// The zero value is not usable; create instances with [New].
type Network struct {
	nodes     map[string]*Node
	nodeOrder []string

	edges     map[string]*Edge
	edgeOrder []string

	active map[string]bool
	// adjacency lists of active edge IDs, keyed by node ID
	adj map[string][]string
}

// New creates an empty Network.
func New() *Network {
	return &Network{
		nodes:  make(map[string]*Node),
		edges:  make(map[string]*Edge),
		active: make(map[string]bool),
		adj:    make(map[string][]string),
	}
}

// AddNode registers a node. Returns [ErrInvalidNodeID] or [ErrDuplicateNodeID].
func (n *Network) AddNode(node *Node) error {
	if node.ID == "" {
		return ErrInvalidNodeID
	}
	if _, ok := n.nodes[node.ID]; ok {
		return ErrDuplicateNodeID
	}
	if node.Attrs == nil {
		node.Attrs = Attributes{}
	}
	n.nodes[node.ID] = node
	n.nodeOrder = append(n.nodeOrder, node.ID)
	return nil
}

// AddEdge registers an edge. Non-suppressed edges join the active set
// immediately; suppressed edges stay inactive until [Network.InsertEdge].
func (n *Network) AddEdge(e *Edge) error {
	if e.ID == "" {
		return ErrInvalidEdgeID
	}
	if _, ok := n.edges[e.ID]; ok {
		return ErrDuplicateEdgeID
	}
	if _, ok := n.nodes[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := n.nodes[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Attrs == nil {
		e.Attrs = Attributes{}
	}
	n.edges[e.ID] = e
	n.edgeOrder = append(n.edgeOrder, e.ID)
	if !e.Suppressed {
		n.activate(e)
	}
	return nil
}

// Node returns the node with the given ID, or nil.
func (n *Network) Node(id string) *Node {
	return n.nodes[id]
}

// Nodes returns nodes in insertion order. With ids, only those IDs are
// returned; unknown IDs are skipped.
func (n *Network) Nodes(ids ...string) []*Node {
	if len(ids) == 0 {
		out := make([]*Node, 0, len(n.nodeOrder))
		for _, id := range n.nodeOrder {
			out = append(out, n.nodes[id])
		}
		return out
	}
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if node := n.nodes[id]; node != nil {
			out = append(out, node)
		}
	}
	return out
}

// NodeCount returns the number of registered nodes.
func (n *Network) NodeCount() int { return len(n.nodeOrder) }

// EdgeByID returns the registered edge with the given ID, active or not.
func (n *Network) EdgeByID(id string) *Edge {
	return n.edges[id]
}

// Edge returns the active edge joining a and b in either direction, or nil.
func (n *Network) Edge(a, b string) *Edge {
	for _, eid := range n.adj[a] {
		e := n.edges[eid]
		if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
			return e
		}
	}
	return nil
}

// Edges returns the active edges in registration order.
func (n *Network) Edges() []*Edge {
	out := make([]*Edge, 0, len(n.active))
	for _, id := range n.edgeOrder {
		if n.active[id] {
			out = append(out, n.edges[id])
		}
	}
	return out
}

// AllEdges returns every registered edge, active or not, in registration order.
func (n *Network) AllEdges() []*Edge {
	out := make([]*Edge, 0, len(n.edgeOrder))
	for _, id := range n.edgeOrder {
		out = append(out, n.edges[id])
	}
	return out
}

// AdjacentEdges returns the active edges touching id.
func (n *Network) AdjacentEdges(id string) []*Edge {
	ids := n.adj[id]
	out := make([]*Edge, 0, len(ids))
	for _, eid := range ids {
		out = append(out, n.edges[eid])
	}
	return out
}

// AdjacentNodes returns the distinct nodes joined to id by an active edge,
// in adjacency order.
func (n *Network) AdjacentNodes(id string) []*Node {
	seen := make(map[string]bool)
	var out []*Node
	for _, eid := range n.adj[id] {
		other := n.edges[eid].Other(id)
		if other == id || seen[other] {
			continue
		}
		seen[other] = true
		out = append(out, n.nodes[other])
	}
	return out
}

// IsActive reports whether the edge is currently part of the active set.
func (n *Network) IsActive(edgeID string) bool {
	return n.active[edgeID]
}

// InsertEdge makes a registered edge active. Inserting an unknown or already
// active edge is a no-op; the return value reports whether the set changed.
func (n *Network) InsertEdge(edgeID string) bool {
	e, ok := n.edges[edgeID]
	if !ok || n.active[edgeID] {
		return false
	}
	n.activate(e)
	return true
}

// RemoveEdge takes an edge out of the active set without unregistering it.
// Removing an unknown or inactive edge is a no-op.
func (n *Network) RemoveEdge(edgeID string) bool {
	e, ok := n.edges[edgeID]
	if !ok || !n.active[edgeID] {
		return false
	}
	delete(n.active, edgeID)
	drop := func(id string) bool { return id == edgeID }
	n.adj[e.Source] = slices.DeleteFunc(n.adj[e.Source], drop)
	if e.Target != e.Source {
		n.adj[e.Target] = slices.DeleteFunc(n.adj[e.Target], drop)
	}
	return true
}

func (n *Network) activate(e *Edge) {
	n.active[e.ID] = true
	n.adj[e.Source] = append(n.adj[e.Source], e.ID)
	if e.Target != e.Source {
		n.adj[e.Target] = append(n.adj[e.Target], e.ID)
	}
}
