package graph

import (
	"container/heap"
	"math"
)

// ShortestPath returns the node sequence of a shortest route from start to
// goal over the active edges, treating them as undirected. Edge cost is the
// Euclidean distance between endpoints; the same distance to goal is the A*
// heuristic, which keeps it admissible.
//
// Returns nil when either node is unknown or no route exists. A start equal
// to goal yields a single-node path.
func (n *Network) ShortestPath(start, goal string) []*Node {
	s, g := n.nodes[start], n.nodes[goal]
	if s == nil || g == nil {
		return nil
	}
	if start == goal {
		return []*Node{s}
	}

	cost := map[string]float64{start: 0}
	prev := make(map[string]string)
	closed := make(map[string]bool)

	open := &frontier{}
	heap.Push(open, &frontierItem{id: start, f: distance(s, g)})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*frontierItem)
		if closed[cur.id] {
			continue
		}
		if cur.id == goal {
			return n.walkBack(prev, start, goal)
		}
		closed[cur.id] = true

		from := n.nodes[cur.id]
		for _, eid := range n.adj[cur.id] {
			next := n.edges[eid].Other(cur.id)
			if closed[next] {
				continue
			}
			to := n.nodes[next]
			c := cost[cur.id] + distance(from, to)
			if old, seen := cost[next]; seen && c >= old {
				continue
			}
			cost[next] = c
			prev[next] = cur.id
			heap.Push(open, &frontierItem{id: next, f: c + distance(to, g)})
		}
	}
	return nil
}

func (n *Network) walkBack(prev map[string]string, start, goal string) []*Node {
	var rev []*Node
	for id := goal; ; id = prev[id] {
		rev = append(rev, n.nodes[id])
		if id == start {
			break
		}
	}
	out := make([]*Node, len(rev))
	for i, node := range rev {
		out[len(rev)-1-i] = node
	}
	return out
}

func distance(a, b *Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

type frontierItem struct {
	id string
	f  float64
}

// frontier is a min-heap on f.
type frontier []*frontierItem

func (f frontier) Len() int           { return len(f) }
func (f frontier) Less(i, j int) bool { return f[i].f < f[j].f }
func (f frontier) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)        { *f = append(*f, x.(*frontierItem)) }
func (f *frontier) Pop() any {
	old := *f
	item := old[len(old)-1]
	*f = old[:len(old)-1]
	return item
}
