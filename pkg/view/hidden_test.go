package view

import (
	"math"
	"testing"

	"github.com/matzehuels/netview/pkg/graph"
)

func TestHiddenEdgesIndex(t *testing.T) {
	net := fixture(t)
	h := NewHiddenEdges(net, "#FF7700")

	if got := len(h.Suppressed("A")); got != 2 {
		t.Errorf("A suppressed = %d, want 2", got)
	}
	if got := len(h.Suppressed("H")); got != 1 {
		t.Errorf("H suppressed = %d, want 1", got)
	}
	if got := h.SuppressedCount(); got != 2 {
		t.Errorf("SuppressedCount = %d, want 2", got)
	}
	if h.Reveal("B") != 0 {
		t.Error("node without suppressed edges should be a no-op")
	}
	if h.Reveal("missing") != 0 {
		t.Error("unknown node should be a no-op")
	}
}

// Reveal then Collapse puts every displaced node back exactly.
func TestRevealCollapseRoundTrip(t *testing.T) {
	net := graph.New()
	_ = net.AddNode(&graph.Node{ID: "hub", X: 3.25, Y: -7.5})
	for i := range 40 {
		id := string(rune('a'+i%26)) + string(rune('0'+i/26))
		_ = net.AddNode(&graph.Node{ID: id, X: float64(i) * 1.1, Y: float64(i) * -0.3})
		_ = net.AddEdge(&graph.Edge{ID: "e" + id, Source: "hub", Target: id, Suppressed: true})
	}
	before := positions(net)
	h := NewHiddenEdges(net, "#FF7700")

	if got := h.Reveal("hub"); got != 40 {
		t.Fatalf("Reveal = %d, want 40", got)
	}
	if got := len(net.Edges()); got != 40 {
		t.Errorf("active edges = %d, want 40", got)
	}
	if got := len(h.Displaced()); got != 40 {
		t.Errorf("displaced = %d, want 40", got)
	}

	hub := net.Node("hub")
	for i, e := range h.Suppressed("hub") {
		n := net.Node(e.Target)
		r := math.Hypot(n.X-hub.X, n.Y-hub.Y)
		rings := ringsBefore(i)
		if want := float64(radialStartRadius + rings*radialGrowth); !near(r, want) {
			t.Errorf("edge %d: radius %v, want %v", i, r, want)
		}
	}

	edges, restored := h.Collapse()
	if edges != 40 || restored != 40 {
		t.Errorf("Collapse = %d, %d; want 40, 40", edges, restored)
	}
	for id, p := range positions(net) {
		if p != before[id] {
			t.Errorf("node %s at %+v, want %+v", id, p, before[id])
		}
	}
	if len(h.Displaced()) != 0 || len(h.Revealed()) != 0 || len(net.Edges()) != 0 {
		t.Error("collapse must drain the registry and the active set")
	}
	if e, r := h.Collapse(); e != 0 || r != 0 {
		t.Error("second collapse should be a no-op")
	}
}

func TestRevealSavesPositionOnce(t *testing.T) {
	net := graph.New()
	_ = net.AddNode(&graph.Node{ID: "a"})
	_ = net.AddNode(&graph.Node{ID: "b", X: 50, Y: 50})
	_ = net.AddEdge(&graph.Edge{ID: "ab1", Source: "a", Target: "b", Suppressed: true})
	_ = net.AddEdge(&graph.Edge{ID: "ab2", Source: "b", Target: "a", Suppressed: true})

	h := NewHiddenEdges(net, "#FF7700")
	h.Reveal("a")
	if p := h.Displaced()["b"]; p.X != 50 || p.Y != 50 {
		t.Errorf("saved position = %+v, want (50,50)", p)
	}
	if c := net.Node("b").Color; c != "#FF7700" {
		t.Errorf("revealed color = %s", c)
	}
	h.Collapse()
	if b := net.Node("b"); b.X != 50 || b.Y != 50 {
		t.Errorf("b = (%v,%v), want (50,50)", b.X, b.Y)
	}
}

func positions(net *graph.Network) map[string]graph.Position {
	out := make(map[string]graph.Position)
	for _, n := range net.Nodes() {
		out[n.ID] = graph.Position{X: n.X, Y: n.Y}
	}
	return out
}

// ringsBefore replays the ring counter for the i-th revealed edge.
func ringsBefore(i int) int {
	count, rings := 0, 0
	for range i {
		count += radialStep
		if count%radialPeriod == 0 {
			rings++
		}
	}
	return rings
}
