package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/session"
)

// sessionsCommand creates the command group for saved viewer sessions.
func (c *CLI) sessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage saved viewer sessions",
		Long: `Manage the sessions saved by "netview view --session NAME".

A session records the camera and the selected node so a later viewer
run picks up where the last one stopped.`,
	}

	cmd.AddCommand(c.sessionsListCommand())
	cmd.AddCommand(c.sessionsDeleteCommand())
	cmd.AddCommand(c.sessionsPruneCommand())
	cmd.AddCommand(c.sessionsPathCommand())

	return cmd
}

func openSessionStore() (*session.FileStore, error) {
	return session.NewFileStore(sessionDir())
}

func (c *CLI) sessionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore()
			if err != nil {
				return err
			}
			sessions, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				printInfo("No saved sessions")
				return nil
			}
			fmt.Println(sessionTable(sessions, time.Now()))
			return nil
		},
	}
}

func (c *CLI) sessionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete [name]...",
		Short:             "Delete saved sessions",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeSessions,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore()
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				printSuccess("Deleted %s", id)
			}
			return nil
		},
	}
}

func (c *CLI) sessionsPruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore()
			if err != nil {
				return err
			}
			if err := store.Cleanup(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Pruned expired sessions")
			printDetail("Directory: %s", store.Path())
			return nil
		},
	}
}

func (c *CLI) sessionsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the session directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(sessionDir())
			return nil
		},
	}
}

func sessionTable(sessions []*session.Session, now time.Time) string {
	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		selected := s.Selected
		if selected == "" {
			selected = "—"
		}
		rows[i] = []string{s.ID, s.Network, selected, formatAge(now.Sub(s.UpdatedAt))}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Session", "Network", "Selected", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleHighlight
			case col == 3:
				return StyleDim
			default:
				return StyleValue
			}
		}).
		Render()
}

// formatAge renders a duration the way a person would say it.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
