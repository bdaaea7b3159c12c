// Package pipeline loads networks into views and renders snapshots.
//
// Every host runs the same steps: resolve a network reference to a
// [source.Source], fetch the document, build the in-memory graph, and hand
// it to a [view.Controller] configured from [config.Config]. [Runner]
// performs those steps once so the CLI viewer, the snapshot command and the
// HTTP server cannot drift apart.
//
//	r := pipeline.NewRunner(cfg, c, logger)
//	res, err := r.Load(ctx, pipeline.Options{Ref: "pathways.json"})
//	res.Controller.ClickNode(ctx, "TP53")
//	svg, err := r.Snapshot(ctx, res.Controller.Scene(), "svg")
package pipeline

import (
	"time"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/render"
	"github.com/matzehuels/netview/pkg/view"
	"github.com/matzehuels/netview/pkg/view/camera"
)

// Options selects a network and the host-side collaborators of its view.
type Options struct {
	// Ref is a file path or "mongo:<name>".
	Ref string

	// Host collaborators, passed through to view.Options.
	Renderer view.Renderer
	Index    view.SpatialIndex
	Listener view.SelectionListener
	Clock    camera.Clock

	// Aspect is the host viewport's width over height. When Index is nil
	// and Aspect > 0 the runner indexes the network with a
	// [view.ViewportIndex] of that shape.
	Aspect float64

	// Legacy restricts the view to the camera-only command table.
	Legacy bool
}

// Validate checks that a reference is present.
func (o Options) Validate() error {
	if o.Ref == "" {
		return errors.New(errors.ErrCodeInvalidArgument, "network reference is required")
	}
	return nil
}

// Result is a loaded network and its view.
type Result struct {
	Document   graph.Document
	Network    *graph.Network
	Controller *view.Controller
	Index      *view.ViewportIndex
	Report     view.LoadReport
	Stats      Stats
}

// Stats records pipeline timings and sizes.
type Stats struct {
	FetchTime time.Duration
	BuildTime time.Duration
	Nodes     int
	Edges     int
}

// ValidateFormat checks a snapshot format name.
func ValidateFormat(format string) error {
	for _, f := range render.Formats {
		if f == format {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidArgument, "invalid format %q (want one of %v)", format, render.Formats)
}
