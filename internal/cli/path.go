package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/pipeline"
	"github.com/matzehuels/netview/pkg/view"
)

// pathCommand creates the path command for tracing a shortest path.
func (c *CLI) pathCommand() *cobra.Command {
	var opts loadOpts

	cmd := &cobra.Command{
		Use:   "path [network] [from] [to]",
		Short: "Print the shortest path between two nodes",
		Long: `Print the shortest path between two nodes as the viewer traces it:
over active edges only, using straight-line distance between node
positions as the cost.`,
		Example:           `  netview path pathways.json G2 C1`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: completePathArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPath(cmd.Context(), args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runPath(ctx context.Context, ref, from, to string, opts loadOpts) error {
	net, err := c.load(ctx, ref, opts, pipeline.Options{})
	if err != nil {
		return err
	}
	defer net.cleanup()

	res := net.Controller.Execute(ctx, view.FindPath{From: from, To: to})
	if res.Err != nil {
		if errors.Is(res.Err, errors.ErrCodeEmptyPath) {
			printWarning("%s", errors.UserMessage(res.Err))
			return nil
		}
		return res.Err
	}

	fmt.Println(pathTable(net.Network, res.Path, net.runner.Config.ViewOptions().Classifier))
	printDetail("%d hops", len(res.Path)-1)
	return nil
}

// pathTable renders the path as a numbered table with each node's color,
// type and distance from the previous hop.
func pathTable(g *graph.Network, path []string, cls view.Classifier) string {
	rows := make([][]string, 0, len(path))
	for i, id := range path {
		n := g.Node(id)
		if n == nil {
			continue
		}
		hop := "—"
		if i > 0 {
			if prev := g.Node(path[i-1]); prev != nil {
				hop = strconv.FormatFloat(math.Hypot(n.X-prev.X, n.Y-prev.Y), 'f', 1, 64)
			}
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), swatch(n.Color) + " " + n.ID, n.Label, cls.Type(n), hop})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Node", "Label", "Type", "Hop").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0 || col == 4:
				return StyleDim
			default:
				return StyleValue
			}
		}).
		Render()
}
