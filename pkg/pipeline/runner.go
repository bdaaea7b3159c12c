package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netview/pkg/cache"
	"github.com/matzehuels/netview/pkg/config"
	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/render/nodelink"
	"github.com/matzehuels/netview/pkg/source"
	"github.com/matzehuels/netview/pkg/view"
)

// Runner executes the load and snapshot pipeline.
//
// A Runner holds no per-network state; one Runner can load many networks.
type Runner struct {
	Config    *config.Config
	Cache     cache.Cache
	Files     source.Source
	Mongo     source.Source
	Keyer     cache.Keyer
	Snapshots *nodelink.Snapshotter
	Logger    *log.Logger

	mongo source.Source // unwrapped, so UseCache can rewrap it
}

// NewRunner creates a runner reading files from the working directory.
// A nil cache disables caching; Mongo references fail until [Runner.Mongo]
// is set.
func NewRunner(cfg *config.Config, c cache.Cache, logger *log.Logger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		Config: cfg,
		Files:  source.FileSource{},
		Keyer:  cache.NewDefaultKeyer(),
		Logger: logger,
	}
	r.UseCache(c)
	return r
}

// UseMongo routes "mongo:" references to src, caching fetched documents.
func (r *Runner) UseMongo(src source.Source) {
	r.mongo = src
	r.Mongo = source.NewCached(src, cache.Instrument(r.Cache, "network"), r.Keyer, cache.TTLNetwork, r.Logger)
}

// UseCache replaces the cache behind snapshots and Mongo documents.
func (r *Runner) UseCache(c cache.Cache) {
	r.Cache = c
	r.Snapshots = nodelink.NewSnapshotter(c, cache.TTLSnapshot, nodelink.Options{Labels: true})
	r.Snapshots.Keyer = r.Keyer
	if r.mongo != nil {
		r.UseMongo(r.mongo)
	}
}

// Scope prefixes every cache key with namespace, so runners serving
// different networks can share one cache backend.
func (r *Runner) Scope(namespace string) {
	r.Keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), namespace+":")
	r.UseCache(r.Cache)
}

func (r *Runner) sourceFor(ref source.Ref) (source.Source, error) {
	switch ref.Kind {
	case source.KindMongo:
		if r.Mongo == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo is not configured (set server.mongo_uri)")
		}
		return r.Mongo, nil
	default:
		return r.Files, nil
	}
}

// Fetch resolves ref and returns its document.
func (r *Runner) Fetch(ctx context.Context, ref string) (graph.Document, error) {
	parsed := source.ParseRef(ref)
	src, err := r.sourceFor(parsed)
	if err != nil {
		return graph.Document{}, err
	}
	return src.Load(ctx, parsed.Name)
}

// Load fetches the network, builds the graph and creates its view.
func (r *Runner) Load(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	fetchStart := time.Now()
	doc, err := r.Fetch(ctx, opts.Ref)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	fetchTime := time.Since(fetchStart)

	buildStart := time.Now()
	res, err := r.Build(doc, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.FetchTime = fetchTime
	res.Stats.BuildTime = time.Since(buildStart)

	r.Logger.Info("loaded network",
		"ref", opts.Ref,
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"suppressed", res.Report.Suppressed,
		"tier", res.Report.Tier,
		"duration", fetchTime+res.Stats.BuildTime)
	return res, nil
}

// Build creates the graph and view for an already fetched document.
func (r *Runner) Build(doc graph.Document, opts Options) (*Result, error) {
	g, build, err := graph.FromDocument(doc, r.Config.BuildOptions())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidNetwork, err, "build network %q", doc.Name)
	}

	resolver, err := r.Config.Resolver()
	if err != nil {
		return nil, err
	}
	vopts := r.Config.ViewOptions()
	vopts.Resolver = resolver
	vopts.Renderer = opts.Renderer
	vopts.Index = opts.Index
	var index *view.ViewportIndex
	if opts.Index == nil && opts.Aspect > 0 {
		index = view.NewViewportIndex(g, opts.Aspect)
		vopts.Index = index
	}
	vopts.Listener = opts.Listener
	vopts.Clock = opts.Clock
	vopts.Legacy = opts.Legacy
	vopts.Logger = r.Logger

	ctrl, report := view.New(g, build.Orphans, vopts)
	return &Result{
		Document:   doc,
		Network:    g,
		Controller: ctrl,
		Index:      index,
		Report:     report,
		Stats: Stats{
			Nodes: g.NodeCount(),
			Edges: len(g.AllEdges()),
		},
	}, nil
}

// Snapshot renders scene in format through the snapshot cache.
func (r *Runner) Snapshot(ctx context.Context, scene view.Scene, format string) ([]byte, error) {
	return r.Snapshots.Render(ctx, scene, format)
}
