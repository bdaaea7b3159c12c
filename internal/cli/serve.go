package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/internal/server"
	"github.com/matzehuels/netview/pkg/config"
	"github.com/matzehuels/netview/pkg/observability"
	"github.com/matzehuels/netview/pkg/source"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	loadOpts
	addr  string
	watch bool
}

// serveCommand creates the serve command for hosting a view over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [network]",
		Short: "Host a network view over HTTP, websockets and NATS",
		Long: `Host a network view over HTTP and websockets.

Clients read the current scene, click nodes and send view commands;
every redraw is pushed to websocket clients. When server.redis_addr is
configured sessions are kept in Redis, and when server.nats_url is
configured selections are published and commands are consumed on the
configured subject.`,
		Example: `  netview serve pathways.json
  netview serve mongo:pathways --addr :9000 --watch`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNetwork,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload tier styles when the config file changes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "only accept camera commands")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, ref string, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	observability.SetViewHooks(observability.NewLogViewHooks(logger.WithPrefix("view")))
	observability.SetHTTPHooks(observability.NewLogHTTPHooks(logger.WithPrefix("http")))
	defer observability.Reset()

	runner, cleanup, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer cleanup()
	if opts.addr != "" {
		runner.Config.Server.Addr = opts.addr
	}

	sopts := server.Options{Ref: ref, Legacy: opts.legacy}
	if opts.watch {
		path := c.ConfigPath
		if path == "" {
			path = config.DefaultPath()
		}
		if _, err := os.Stat(filepath.Dir(path)); err != nil {
			printWarning("Not watching %s: %v", path, err)
		} else {
			sopts.ConfigPath = path
		}
	}

	prog := newProgress(logger)
	srv, err := server.New(ctx, runner, sopts, logger)
	if err != nil {
		return err
	}
	prog.done("Loaded " + source.ParseRef(ref).Base())
	printSuccess("Serving %s", ref)
	printDetail("http://%s", runner.Config.Server.Addr)
	return srv.Run(ctx)
}
