package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/source"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for netview.

Besides commands and flags, the scripts complete network files, saved
session names, and the node IDs of the network named earlier on the
command line.

Bash:
  $ source <(netview completion bash)

Zsh:
  $ netview completion zsh > "${fpath[1]}/_netview"

Fish:
  $ netview completion fish > ~/.config/fish/completions/netview.fish

PowerShell:
  PS> netview completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeNetwork completes the leading network argument with JSON files.
func completeNetwork(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completePathArgs completes "path NETWORK FROM TO".
func completePathArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return completeNetwork(cmd, args, toComplete)
	case 1, 2:
		return nodeCompletions(args[0], toComplete), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// completeNodeFlag completes a node ID flag from the command's network argument.
func completeNodeFlag(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return nodeCompletions(args[0], toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeSessions completes saved session names.
func completeSessions(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	store, err := openSessionStore()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	sessions, err := store.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, s := range sessions {
		if strings.HasPrefix(s.ID, toComplete) {
			out = append(out, s.ID+"\t"+s.Network)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// nodeCompletions lists "id\tlabel" pairs for a network file. Mongo
// references are not completed; completion must not dial out.
func nodeCompletions(ref, prefix string) []string {
	r := source.ParseRef(ref)
	if r.Kind != source.KindFile {
		return nil
	}
	doc, err := graph.ReadDocumentFile(r.Name)
	if err != nil {
		return nil
	}
	var out []string
	for _, n := range doc.Elements.Nodes {
		id := n.Data.String("id")
		if id == "" || !strings.HasPrefix(id, prefix) {
			continue
		}
		if label := n.Data.String("Label"); label != "" {
			id += "\t" + label
		}
		out = append(out, id)
	}
	return out
}
