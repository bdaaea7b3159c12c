package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/pipeline"
	"github.com/matzehuels/netview/pkg/render"
	"github.com/matzehuels/netview/pkg/source"
)

// snapshotOpts holds the flags of the snapshot command.
type snapshotOpts struct {
	loadOpts
	output   string   // output file; defaults to <network>.<format>
	format   string   // svg, png, pdf or dot
	selected string   // node to click before rendering
	path     []string // from,to pair traced with findPath
	commands []string // host commands run in order, e.g. "zoomToNode G1 0.5"
}

// snapshotCommand creates the snapshot command for rendering a view to a file.
func (c *CLI) snapshotCommand() *cobra.Command {
	opts := snapshotOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "snapshot [network]",
		Short: "Render a view of a network to SVG, PNG, PDF or DOT",
		Long: `Render a view of a network to a file.

The view is built exactly as the interactive viewer builds it, then the
requested interactions are replayed before rendering: --select clicks a
node, --path traces a shortest path and --command runs view commands.`,
		Example: `  netview snapshot pathways.json
  netview snapshot pathways.json --select G1 -f png -o tp53.png
  netview snapshot pathways.json --path G2,C1
  netview snapshot mongo:pathways --command "zoomToNode G1 0.5"`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNetwork,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			if len(opts.path) != 0 && len(opts.path) != 2 {
				return errors.New(errors.ErrCodeInvalidArgument, "--path wants two node ids, got %d", len(opts.path))
			}
			return c.runSnapshot(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <network>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, png, pdf, dot")
	cmd.Flags().StringVar(&opts.selected, "select", "", "click a node before rendering")
	cmd.Flags().StringSliceVar(&opts.path, "path", nil, "trace the shortest path FROM,TO")
	cmd.Flags().StringArrayVar(&opts.commands, "command", nil, "run a view command (repeatable)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "only accept camera commands")
	_ = cmd.RegisterFlagCompletionFunc("select", completeNodeFlag)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(render.Formats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runSnapshot(ctx context.Context, ref string, opts snapshotOpts) error {
	spinner := newSpinnerWithContext(ctx, "Loading network...")
	spinner.Start()
	defer spinner.Stop()

	net, err := c.load(ctx, ref, opts.loadOpts, pipeline.Options{})
	if err != nil {
		return err
	}
	defer net.cleanup()
	ctrl := net.Controller

	if opts.selected != "" {
		ctrl.ClickNode(ctx, opts.selected)
		if ctrl.Selected() != opts.selected {
			printWarning("Node %q was not selected", opts.selected)
		}
	}
	if len(opts.path) == 2 {
		path, err := ctrl.FindPath(opts.path[0], opts.path[1])
		if err != nil {
			spinner.Stop()
			printWarning("%s", errors.UserMessage(err))
		} else {
			c.Logger.Debug("path traced", "nodes", strings.Join(path, " → "))
		}
	}
	for _, line := range opts.commands {
		name, args := parseCommandLine(line)
		if res := ctrl.Dispatch(ctx, name, args); res.Err != nil {
			spinner.Stop()
			printWarning("%s: %s", name, errors.UserMessage(res.Err))
		}
	}
	ctrl.Settle()

	spinner.Update("Rendering " + opts.format + "...")
	data, err := net.runner.Snapshot(ctx, ctrl.Scene(), opts.format)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = source.ParseRef(ref).Base() + "." + opts.format
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	spinner.Stop()
	printSuccess("Rendered %s", net.Document.Name)
	printStats(net.Stats.Nodes, net.Stats.Edges, net.Report.Suppressed)
	printFile(output)
	return nil
}
