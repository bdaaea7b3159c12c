package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/pipeline"
)

// infoCommand creates the info command for summarizing a network.
func (c *CLI) infoCommand() *cobra.Command {
	var opts loadOpts

	cmd := &cobra.Command{
		Use:   "info [network]",
		Short: "Summarize a network and how it will be displayed",
		Long: `Summarize a network: its size, the rendering tier and backend the
viewer will start with, how many edges are hidden until a node is
selected, and any edges whose endpoints are missing.`,
		Example: `  netview info pathways.json
  netview info mongo:pathways`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNetwork,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runInfo(ctx context.Context, ref string, opts loadOpts) error {
	net, err := c.load(ctx, ref, opts, pipeline.Options{Aspect: 16.0 / 9.0})
	if err != nil {
		return err
	}
	defer net.cleanup()

	state := net.Controller.State()
	fmt.Println(StyleTitle.Render(net.Document.Name))
	printKeyValue("Nodes", strconv.Itoa(net.Stats.Nodes))
	printKeyValue("Edges", strconv.Itoa(net.Stats.Edges))
	printKeyValue("Hidden", strconv.Itoa(net.Report.Suppressed))
	printKeyValue("Tier", state.Tier.String())
	printKeyValue("Backend", state.Backend)
	printKeyValue("Frame", fmt.Sprintf("%.0f × %.0f", state.Frame.Width(), state.Frame.Height()))
	if types := countTypes(net); len(types) > 0 {
		printKeyValue("Types", strings.Join(types, ", "))
	}
	printKeyValue("Loaded in", (net.Stats.FetchTime + net.Stats.BuildTime).String())

	if n := len(net.Report.Orphans); n > 0 {
		fmt.Println()
		printWarning("%d edges reference missing nodes", n)
		for _, o := range net.Report.Orphans {
			printDetail("%s: %s → %s", o.EdgeID, o.Source, o.Target)
		}
	}
	fmt.Println()
	printNextStep("Explore it", "netview view "+ref)
	return nil
}

// countTypes returns "Type (n)" entries ordered by descending count.
func countTypes(net *loaded) []string {
	cls := net.runner.Config.ViewOptions().Classifier
	counts := make(map[string]int)
	for _, n := range net.Network.Nodes() {
		if t := cls.Type(n); t != "" {
			counts[t]++
		}
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})
	for i, t := range types {
		types[i] = fmt.Sprintf("%s (%d)", t, counts[t])
	}
	return types
}
