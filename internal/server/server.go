// Package server hosts one network view over HTTP and websockets.
//
// The [view.Controller] is single-threaded, so the server runs it on a
// dedicated event loop: HTTP handlers, websocket frames, NATS commands and
// config reloads all submit closures to the loop and wait for them. The
// loop also steps camera transitions on a fixed tick. Every scene the
// controller renders is pushed to websocket clients; selections are pushed
// too and, when NATS is configured, published on "<subject>.selection".
//
// Routes:
//
//	GET    /healthz
//	GET    /scene                    latest scene snapshot
//	GET    /snapshot.{format}        svg, png, pdf or dot of the current scene
//	POST   /command                  {"command": "findPath", "parameters": ["A", "B"]}
//	POST   /nodes/{id}/click
//	POST   /background/dblclick
//	POST   /sessions                 save camera and selection
//	GET    /sessions/{id}
//	POST   /sessions/{id}/restore
//	DELETE /sessions/{id}
//	GET    /ws                       scene, selection and result frames
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/netview/pkg/cache"
	"github.com/matzehuels/netview/pkg/config"
	"github.com/matzehuels/netview/pkg/events"
	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/pipeline"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/source"
	"github.com/matzehuels/netview/pkg/view"
	"github.com/matzehuels/netview/pkg/view/camera"
)

// Defaults for [Options].
const (
	DefaultTick     = 16 * time.Millisecond
	DefaultAspect   = 16.0 / 9.0
	shutdownTimeout = 5 * time.Second
	reloadDebounce  = 200 * time.Millisecond
)

// RedisCachePrefix namespaces cached documents and snapshots when the
// server shares Redis with its sessions. Keys below it are further scoped
// by network name, as "netview:cache:net:<network>:...".
const RedisCachePrefix = "netview:cache:"

// Options configures a [Server].
type Options struct {
	// Ref is the network to serve: a file path or "mongo:<name>".
	Ref string

	// ConfigPath is watched for tier table changes. Empty disables watching.
	ConfigPath string

	// Tick is the camera step interval.
	Tick time.Duration

	// Aspect is the assumed viewport shape for density tiering.
	Aspect float64

	Legacy bool
	Clock  camera.Clock
}

// Server serves one loaded network.
type Server struct {
	cfg    *config.Config
	opts   Options
	runner *pipeline.Runner
	logger *log.Logger

	sessions   session.Store
	publisher  events.Publisher
	subscriber *events.NATSSubscriber
	hub        *Hub
	router     chi.Router

	ops   chan func()
	scene atomic.Pointer[view.Scene]

	network string

	// Owned by the event loop.
	ctrl    *view.Controller
	watcher *view.CommandWatcher
}

// New loads the network and connects the configured backing services:
// Redis for sessions when server.redis_addr is set, NATS for selection
// events and remote commands when server.nats_url is set.
func New(ctx context.Context, runner *pipeline.Runner, opts Options, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Aspect <= 0 {
		opts.Aspect = DefaultAspect
	}
	cfg := runner.Config

	s := &Server{
		cfg:       cfg,
		opts:      opts,
		runner:    runner,
		logger:    logger,
		hub:       newHub(logger.WithPrefix("ws")),
		ops:       make(chan func()),
		publisher: events.NoopPublisher{},
		network:   source.ParseRef(opts.Ref).Base(),
	}

	if err := s.connect(ctx); err != nil {
		s.closeServices()
		return nil, err
	}

	res, err := runner.Load(ctx, pipeline.Options{
		Ref:      opts.Ref,
		Renderer: s,
		Listener: s.listeners(),
		Clock:    opts.Clock,
		Aspect:   opts.Aspect,
		Legacy:   opts.Legacy,
	})
	if err != nil {
		s.closeServices()
		return nil, err
	}
	s.ctrl = res.Controller
	s.watcher = view.NewCommandWatcher(res.Controller)
	scene := res.Controller.Scene()
	s.scene.Store(&scene)
	for _, o := range res.Report.Orphans {
		logger.Warn("edge endpoint missing", "edge", o.EdgeID, "source", o.Source, "target", o.Target)
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) connect(ctx context.Context) error {
	sc := s.cfg.Server
	if sc.RedisAddr != "" {
		store, err := session.NewRedisStore(ctx, session.RedisConfig{Addr: sc.RedisAddr})
		if err != nil {
			return err
		}
		s.sessions = store
		s.runner.UseCache(cache.NewRedisCache(store.Client(), RedisCachePrefix))
		s.runner.Scope("net:" + s.network)
		s.logger.Info("sessions and cache in redis", "addr", sc.RedisAddr)
	} else {
		s.sessions = session.NewMemoryStore()
	}

	if sc.NATSURL != "" {
		pub, err := events.NewNATSPublisher(sc.NATSURL)
		if err != nil {
			return err
		}
		s.publisher = pub
		sub, err := events.NewNATSSubscriber(sc.NATSURL)
		if err != nil {
			return err
		}
		s.subscriber = sub
		s.logger.Info("nats connected", "url", sc.NATSURL, "subject", sc.NATSSubject)
	}
	return nil
}

func (s *Server) listeners() view.SelectionListener {
	return fanout{
		view.SelectionFunc(func(ids []string, byID map[string]graph.Node) {
			sel := events.NewSelection(s.network, ids, byID)
			s.hub.Broadcast(Outbound{Type: MsgSelection, Selection: &sel})
		}),
		events.NewSelectionPublisher(s.publisher, s.cfg.Server.NATSSubject, s.network, s.logger),
	}
}

// Refresh publishes a rendered scene. It runs on the event loop.
func (s *Server) Refresh(scene view.Scene) {
	s.scene.Store(&scene)
	s.hub.Broadcast(Outbound{Type: MsgScene, Scene: &scene})
}

// Scene returns the latest rendered scene without touching the loop.
func (s *Server) Scene() view.Scene { return *s.scene.Load() }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the event loop and serves HTTP on ln until ctx is done or a
// component fails. Backing services are closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.closeServices()

	g, ctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error { return s.loop(ctx) })
	g.Go(func() error {
		s.logger.Info("serving", "addr", ln.Addr().String(), "network", s.network)
		if err := srv.Serve(ln); !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if s.subscriber != nil {
		g.Go(func() error { return s.consumeCommands(ctx) })
	}
	if s.opts.ConfigPath != "" {
		g.Go(func() error {
			return config.Watch(ctx, s.opts.ConfigPath, reloadDebounce, func(cfg *config.Config, err error) {
				s.reload(ctx, cfg, err)
			})
		})
	}
	return g.Wait()
}

func (s *Server) loop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case op := <-s.ops:
			op()
		case <-ticker.C:
			s.ctrl.Step()
		}
	}
}

// do runs fn on the event loop and waits for it.
func (s *Server) do(ctx context.Context, fn func(*view.Controller)) error {
	done := make(chan struct{})
	op := func() {
		defer close(done)
		fn(s.ctrl)
	}
	select {
	case s.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// command dispatches a host command through the identity watcher.
func (s *Server) command(ctx context.Context, cmd *view.HostCommand) (CommandResponse, error) {
	var res view.Result
	err := s.do(ctx, func(*view.Controller) {
		res, _ = s.watcher.Observe(ctx, cmd)
	})
	if err != nil {
		return CommandResponse{}, err
	}
	return newCommandResponse(cmd.Command, res), nil
}

func (s *Server) consumeCommands(ctx context.Context) error {
	subject := events.Subject(s.cfg.Server.NATSSubject, events.SubjectCommand)
	msgs, cancel, err := s.subscriber.Subscribe(subject)
	if err != nil {
		return err
	}
	defer cancel()
	s.logger.Info("listening for commands", "subject", subject)

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-msgs:
			if !ok {
				return nil
			}
			cmd, err := view.ParseHostCommand(data)
			if err != nil {
				s.logger.Warn("invalid command message", "subject", subject, "err", err)
				continue
			}
			resp, err := s.command(ctx, cmd)
			if err != nil {
				return nil
			}
			s.hub.Broadcast(Outbound{Type: MsgResult, Result: &resp})
		}
	}
}

func (s *Server) reload(ctx context.Context, cfg *config.Config, err error) {
	if err != nil {
		s.logger.Warn("config reload failed", "path", s.opts.ConfigPath, "err", err)
		return
	}
	if err := s.do(ctx, func(c *view.Controller) { c.SetTierTable(cfg.Tiers) }); err == nil {
		s.logger.Info("config reloaded", "path", s.opts.ConfigPath)
	}
}

func (s *Server) closeServices() {
	if s.sessions != nil {
		if err := s.sessions.Close(); err != nil {
			s.logger.Debug("close sessions", "err", err)
		}
	}
	if err := s.publisher.Close(); err != nil {
		s.logger.Debug("close publisher", "err", err)
	}
	if s.subscriber != nil {
		if err := s.subscriber.Close(); err != nil {
			s.logger.Debug("close subscriber", "err", err)
		}
	}
}

type fanout []view.SelectionListener

func (f fanout) OnSelectNodes(ids []string, byID map[string]graph.Node) {
	for _, l := range f {
		l.OnSelectNodes(ids, byID)
	}
}
