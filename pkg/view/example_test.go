package view_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/view"
)

func Example() {
	net := graph.New()
	_ = net.AddNode(&graph.Node{ID: "A", X: 0, Y: 0, Size: 1})
	_ = net.AddNode(&graph.Node{ID: "B", X: 40, Y: 40, Size: 1})
	_ = net.AddNode(&graph.Node{ID: "C", X: 80, Y: 0, Size: 1})
	_ = net.AddEdge(&graph.Edge{ID: "ab", Source: "A", Target: "B", Suppressed: true})
	_ = net.AddEdge(&graph.Edge{ID: "bc", Source: "B", Target: "C"})

	ctrl, report := view.New(net, nil, view.Options{})
	fmt.Println("tier:", report.Tier, "suppressed:", report.Suppressed)

	ctx := context.Background()
	ctrl.ClickNode(ctx, "A")
	b, _ := ctrl.Scene().Node("B")
	fmt.Printf("B revealed at (%.0f, %.0f)\n", b.X, b.Y)

	ctrl.DoubleClickBackground(ctx)
	b, _ = ctrl.Scene().Node("B")
	fmt.Printf("B restored to (%.0f, %.0f)\n", b.X, b.Y)

	res := ctrl.Dispatch(ctx, "teleport", nil)
	fmt.Println(res.Err)
	// Output:
	// tier: compact suppressed: 1
	// B revealed at (0, -9)
	// B restored to (40, 40)
	// UNKNOWN_COMMAND: command "teleport" is not available
}
