package cli

import (
	"context"
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/pipeline"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/source"
	"github.com/matzehuels/netview/pkg/view"
)

// viewOpts holds the flags of the view command.
type viewOpts struct {
	loadOpts
	session string // saved session to resume and update
}

// viewCommand creates the interactive terminal viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view [network]",
		Short: "Explore a network in the terminal",
		Long: `Explore a network in the terminal.

Nodes are drawn in their colors with edges sampled between them. Tab
moves focus between nodes and Enter selects the focused node: its
neighborhood is highlighted and the edges hidden behind it are revealed.
Esc clears the selection. Type ":" to run a view command such as
"findPath G2 C1" or "zoomToNode G1 0.25".

With --session NAME the camera and selection are restored on start and
saved on exit.`,
		Example: `  netview view pathways.json
  netview view mongo:pathways --session kegg`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeNetwork,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.session != "" {
				if err := errors.ValidateSessionName(opts.session); err != nil {
					return err
				}
			}
			return c.runView(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.session, "session", "s", "", "resume and save this session")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "only accept camera commands")
	_ = cmd.RegisterFlagCompletionFunc("session", completeSessions)

	return cmd
}

func (c *CLI) runView(ctx context.Context, ref string, opts viewOpts) error {
	buf := &sceneBuffer{}
	net, err := c.load(ctx, ref, opts.loadOpts, pipeline.Options{
		Renderer: buf,
		Listener: buf,
		Aspect:   float64(defaultCols) / (float64(defaultRows-chromeRows) * cellAspect),
	})
	if err != nil {
		return err
	}
	defer net.cleanup()

	name := source.ParseRef(ref).Base()
	var store *session.FileStore
	if opts.session != "" {
		if store, err = openSessionStore(); err != nil {
			return err
		}
		if err := resumeSession(ctx, store, opts.session, name, net.Controller); err != nil {
			return err
		}
	}

	model := newViewerModel(ctx, net.Document.Name, net.Controller, net.Index, buf)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// The alt screen owns the terminal while the viewer runs.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(log.FatalLevel)
	_, err = p.Run()
	c.Logger.SetLevel(level)
	if err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	if store != nil {
		if err := saveSession(context.WithoutCancel(ctx), store, opts.session, name, net.Controller); err != nil {
			return err
		}
		printSuccess("Saved session %s", opts.session)
	}
	return nil
}

// resumeSession restores a saved camera and selection. Sessions saved for
// another network are left alone.
func resumeSession(ctx context.Context, store session.Store, id, network string, ctrl *view.Controller) error {
	sess, err := store.Get(ctx, id)
	if err != nil || sess == nil {
		return err
	}
	if sess.Network != network {
		return errors.New(errors.ErrCodeInvalidArgument, "session %q is for network %q, not %q", id, sess.Network, network)
	}
	if sess.HasCamera() || sess.Selected != "" {
		ctrl.Restore(ctx, sess.Camera, sess.Selected)
	}
	return nil
}

// saveSession records the controller's camera and selection under id.
func saveSession(ctx context.Context, store session.Store, id, network string, ctrl *view.Controller) error {
	sess, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		sess = session.New(id, network, session.DefaultTTL)
	}
	ctrl.Settle()
	sess.Network = network
	sess.Camera = ctrl.Camera().Transform()
	sess.Selected = ctrl.Selected()
	sess.Touch(session.DefaultTTL)
	return store.Set(ctx, sess)
}
