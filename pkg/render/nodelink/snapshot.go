package nodelink

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/netview/pkg/cache"
	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/render"
	"github.com/matzehuels/netview/pkg/view"
)

// Snapshotter renders scenes to a file format, caching the output by scene
// content and options.
type Snapshotter struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	TTL     time.Duration
	Options Options
}

// NewSnapshotter returns a Snapshotter. A nil cache disables caching.
func NewSnapshotter(c cache.Cache, ttl time.Duration, opts Options) *Snapshotter {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Snapshotter{
		Cache:   cache.Instrument(c, "snapshot"),
		Keyer:   cache.NewDefaultKeyer(),
		TTL:     ttl,
		Options: opts,
	}
}

// Render returns the scene as format: svg, png, pdf or dot.
func (s *Snapshotter) Render(ctx context.Context, scene view.Scene, format string) ([]byte, error) {
	if !slices.Contains(render.Formats, format) {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "unknown format %q (want one of %v)", format, render.Formats)
	}

	hash, err := cache.HashJSON(scene)
	if err != nil {
		return nil, err
	}
	key := s.Keyer.SnapshotKey(hash, cache.SnapshotKeyOpts{
		Format: format,
		Engine: s.Options.engine(),
		Scale:  s.Options.Width,
		Labels: s.Options.Labels,
	})
	if data, ok, err := s.Cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	data, err := s.render(ctx, scene, format)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, data, s.TTL); err != nil {
		return nil, fmt.Errorf("cache snapshot: %w", err)
	}
	return data, nil
}

func (s *Snapshotter) render(ctx context.Context, scene view.Scene, format string) ([]byte, error) {
	dot := ToDOT(scene, s.Options)
	if format == "dot" {
		return []byte(dot), nil
	}
	svg, err := RenderSVG(ctx, dot, s.Options)
	if err != nil {
		return nil, err
	}
	switch format {
	case "png":
		return render.ToPNG(svg, 2.0)
	case "pdf":
		return render.ToPDF(svg)
	default:
		return svg, nil
	}
}
