package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/buildinfo"
	"github.com/matzehuels/netview/pkg/cache"
	"github.com/matzehuels/netview/pkg/config"
	"github.com/matzehuels/netview/pkg/pipeline"
	"github.com/matzehuels/netview/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "netview"

	// mongoConnectTimeout bounds the initial Mongo handshake.
	mongoConnectTimeout = 10 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is bound to --config. Empty uses config.DefaultPath.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "netview explores node-link networks interactively",
		Long:         `netview loads a node-link network, styles it, and lets you explore it: select nodes to highlight their neighborhood and reveal hidden edges, trace shortest paths, and drive the camera from a terminal, an HTTP client or a message bus.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.pathCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.sessionsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig reads --config, falling back to the defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.ConfigPath)
}

// newRunner creates a pipeline runner for CLI use. Mongo references are
// enabled when server.mongo_uri is configured; the returned cleanup closes
// the connection.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, func(), error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	fc, err := newCache(noCache)
	if err != nil {
		return nil, nil, err
	}
	runner := pipeline.NewRunner(cfg, fc, c.Logger)

	cleanup := func() {}
	if uri := cfg.Server.MongoURI; uri != "" {
		mongo, err := source.NewMongoSource(ctx, source.MongoConfig{
			URI:        uri,
			Database:   cfg.Server.MongoDatabase,
			Collection: cfg.Server.MongoCollection,
			Timeout:    mongoConnectTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		runner.UseMongo(mongo)
		cleanup = func() {
			if err := mongo.Close(context.Background()); err != nil {
				c.Logger.Debug("close mongo", "err", err)
			}
		}
	}
	return runner, cleanup, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/netview/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// sessionDir returns the directory of saved viewer sessions.
func sessionDir() string {
	return filepath.Join(config.Dir(), "sessions")
}
