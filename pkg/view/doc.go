// Package view implements the interaction and view-state engine for
// node-link network views.
//
// A [Controller] owns one [ViewState]: the camera, the per-node and per-edge
// styling held on the graph, the suppressed-edge registry and the rendering
// settings. Hosts feed it renderer events and commands; renderers read
// [Scene] snapshots.
//
// # Events
//
//   - [Controller.ClickNode]: reset, highlight cascade, reveal suppressed edges
//   - [Controller.DoubleClickBackground]: collapse and reset
//   - [Controller.CameraCoordinatesUpdated]: density-driven tier switch
//
// # Commands
//
// Host commands are decoded by [Decode] into a closed set of types ([Fit],
// [ZoomIn], [ZoomOut], [ZoomToNode], [FindPath], [Select]). Names outside the
// active table decode to [Unknown], which is logged and ignored:
//
//	res := ctrl.Dispatch(ctx, "findPath", []any{"A", "C"})
//	if res.Err != nil && errors.IsNoop(res.Err) {
//	    // nothing changed
//	}
//
// [CommandWatcher] adds the host protocol rule that a command object runs
// once, when it is first observed.
//
// # Reversibility
//
// Every mutation has an exact inverse. Reset restores colors, sizes and edge
// types captured at load; [HiddenEdges.Collapse] removes revealed edges and
// moves displaced nodes back. Selecting a node always collapses and resets
// first, so highlights never accumulate across selections.
//
// # Tiers
//
// Graphs below the large-graph threshold stay in [TierCompact]. Larger graphs
// start in [TierSparse] and attach a [DensityMonitor] to camera settle events.
//
// # Concurrency
//
// Controller is single-threaded. The terminal viewer calls it from the
// bubbletea update loop; the HTTP server funnels every request through one
// event-loop goroutine.
package view
