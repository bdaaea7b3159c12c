package view

import (
	"testing"

	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/view/camera"
)

func TestBoundsOf(t *testing.T) {
	b := BoundsOf(fixture(t).Nodes())
	want := Bounds{MinX: -100, MinY: 0, MaxX: 200, MaxY: 200}
	if b != want {
		t.Fatalf("bounds = %+v, want %+v", b, want)
	}
	if x, y := b.Center(); x != 50 || y != 100 {
		t.Errorf("center = (%v, %v)", x, y)
	}
	if got := b.Home(); got != (camera.Transform{X: 50, Y: 100, Ratio: 1}) {
		t.Errorf("home = %+v", got)
	}
	if BoundsOf(nil) != (Bounds{}) {
		t.Error("empty bounds should be zero")
	}
}

func TestViewportVisible(t *testing.T) {
	frame := Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50}
	tests := []struct {
		name   string
		aspect float64
		t      camera.Transform
		want   Bounds
	}{
		{"Home", 0, camera.Transform{X: 50, Y: 25, Ratio: 1}, frame},
		{"ZoomedIn", 0, camera.Transform{X: 50, Y: 25, Ratio: 0.5}, Bounds{MinX: 25, MinY: 12.5, MaxX: 75, MaxY: 37.5}},
		{"Square", 1, camera.Transform{X: 50, Y: 25, Ratio: 1}, Bounds{MinX: 0, MinY: -25, MaxX: 100, MaxY: 75}},
		{"Wide", 4, camera.Transform{X: 50, Y: 25, Ratio: 1}, Bounds{MinX: -50, MinY: 0, MaxX: 150, MaxY: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Viewport{Frame: frame, Aspect: tt.aspect}
			if got := v.Visible(tt.t); got != tt.want {
				t.Errorf("visible = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestViewportIndex(t *testing.T) {
	net := fixture(t)
	idx := NewViewportIndex(net, 0)
	home := idx.Viewport().Frame.Home()
	if got := idx.VisibleCount(home); got != net.NodeCount() {
		t.Errorf("home count = %d, want %d", got, net.NodeCount())
	}

	// x in [7.5, 22.5], y in [-5, 5]
	if got := idx.VisibleCount(camera.Transform{X: 15, Y: 0, Ratio: 0.05}); got != 2 {
		t.Errorf("zoomed count = %d, want 2 (B, C)", got)
	}

	single := graph.New()
	if err := single.AddNode(&graph.Node{ID: "only", X: 3, Y: 3}); err != nil {
		t.Fatal(err)
	}
	if got := NewViewportIndex(single, 1).VisibleCount(camera.Transform{X: 3, Y: 3, Ratio: 1}); got != 1 {
		t.Errorf("single node count = %d", got)
	}
}
