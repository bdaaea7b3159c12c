package view

import (
	"testing"
	"time"

	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/view/camera"
)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time          { return c.now }
func (c *manualClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeIndex struct{ visible int }

func (f *fakeIndex) VisibleCount(camera.Transform) int { return f.visible }

type recordingRenderer struct{ refreshes int }

func (r *recordingRenderer) Refresh(Scene) { r.refreshes++ }

type recordingListener struct{ calls [][]string }

func (l *recordingListener) OnSelectNodes(ids []string, byID map[string]graph.Node) {
	l.calls = append(l.calls, ids)
}

// attrColor resolves the "color" attribute, leaving the rest to the palette.
type attrColor struct{}

func (attrColor) ResolveInitialColor(a graph.Attributes) string { return a.String("color") }

// fixture builds:
//
//	G(Gene) -> A <- C(Pathway)      A -> B(Gene)
//	L(link) -> A, L -> D, X -> L    X is unclassified
//	A -- H, H2 -> A                 suppressed
//	I                               isolated
func fixture(t *testing.T) *graph.Network {
	t.Helper()
	net := graph.New()
	nodes := []*graph.Node{
		{ID: "A", X: 0, Y: 0, Attrs: graph.Attributes{"NodeType": "Pathway", "color": "#FFFFFF"}},
		{ID: "B", X: 10, Y: 0, Attrs: graph.Attributes{"NodeType": "Gene", "color": "#00FF00"}},
		{ID: "C", X: 20, Y: 0, Attrs: graph.Attributes{"NodeType": "Pathway", "color": "#0000FF"}},
		{ID: "G", X: -10, Y: 0, Attrs: graph.Attributes{"NodeType": "Gene", "color": "#00FF00"}},
		{ID: "L", X: 0, Y: 10, Attrs: graph.Attributes{"NodeType": "Link", "Label": "Hidden_1"}},
		{ID: "D", X: 0, Y: 20, Attrs: graph.Attributes{"NodeType": "Pathway", "color": "#0000FF"}},
		{ID: "X", X: 5, Y: 5, Attrs: graph.Attributes{}},
		{ID: "H", X: 100, Y: 100, Attrs: graph.Attributes{"NodeType": "Pathway", "color": "#123456"}},
		{ID: "H2", X: -100, Y: 50, Attrs: graph.Attributes{"NodeType": "Pathway", "color": "#123456"}},
		{ID: "I", X: 200, Y: 200, Attrs: graph.Attributes{"NodeType": "Pathway", "color": "#654321"}},
	}
	for _, n := range nodes {
		n.Size = 1
		if err := net.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	edges := []*graph.Edge{
		{ID: "ab", Source: "A", Target: "B"},
		{ID: "ca", Source: "C", Target: "A"},
		{ID: "ga", Source: "G", Target: "A"},
		{ID: "la", Source: "L", Target: "A"},
		{ID: "ld", Source: "L", Target: "D"},
		{ID: "xl", Source: "X", Target: "L"},
		{ID: "ah", Source: "A", Target: "H", Suppressed: true},
		{ID: "h2a", Source: "H2", Target: "A", Suppressed: true},
	}
	for _, e := range edges {
		if err := net.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return net
}

type harness struct {
	ctrl     *Controller
	net      *graph.Network
	clock    *manualClock
	renderer *recordingRenderer
	listener *recordingListener
	index    *fakeIndex
}

func newHarness(t *testing.T, net *graph.Network, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{
		net:      net,
		clock:    &manualClock{now: time.Unix(0, 0)},
		renderer: &recordingRenderer{},
		listener: &recordingListener{},
		index:    &fakeIndex{},
	}
	opts := Options{
		Resolver: attrColor{},
		Index:    h.index,
		Renderer: h.renderer,
		Listener: h.listener,
		Clock:    h.clock,
	}
	if mutate != nil {
		mutate(&opts)
	}
	h.ctrl, _ = New(net, nil, opts)
	return h
}

// settle runs the camera transition in flight to completion.
func (h *harness) settle() {
	h.clock.advance(time.Second)
	h.ctrl.Step()
}
