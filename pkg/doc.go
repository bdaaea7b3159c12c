// Package pkg provides the core libraries for netview network exploration.
//
// # Overview
//
// netview loads a node-link network, styles it, and keeps an interactive
// view of it: selecting a node highlights its neighborhood and reveals the
// edges hidden behind it, the camera animates between framings, and hosts
// drive the view with named commands. The pkg directory is organized into
// three areas:
//
//  1. Domain: [graph] (network model and shortest paths), [view] (the view
//     engine and its [camera]), [style] (color resolution)
//  2. Infrastructure: [cache], [session], [source], [events],
//     [observability], [config], [errors]
//  3. Orchestration: [pipeline] (load and snapshot), [render] (output
//     formats)
//
// # Data Flow
//
//	File or MongoDB document
//	         ↓
//	source.Source → graph.Document
//	         ↓
//	graph.FromDocument → graph.Network
//	         ↓
//	view.New → view.Controller ⇄ host events and commands
//	         ↓
//	view.Scene → terminal, websocket clients, nodelink snapshots
//
// [graph]: github.com/matzehuels/netview/pkg/graph
// [view]: github.com/matzehuels/netview/pkg/view
// [camera]: github.com/matzehuels/netview/pkg/view/camera
// [style]: github.com/matzehuels/netview/pkg/style
// [cache]: github.com/matzehuels/netview/pkg/cache
// [session]: github.com/matzehuels/netview/pkg/session
// [source]: github.com/matzehuels/netview/pkg/source
// [events]: github.com/matzehuels/netview/pkg/events
// [observability]: github.com/matzehuels/netview/pkg/observability
// [config]: github.com/matzehuels/netview/pkg/config
// [errors]: github.com/matzehuels/netview/pkg/errors
// [pipeline]: github.com/matzehuels/netview/pkg/pipeline
// [render]: github.com/matzehuels/netview/pkg/render
package pkg
