package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/pipeline"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/view/camera"
)

const testNetwork = "../../pkg/pipeline/testdata/pathways.json"

// isolate points every XDG directory at a temp dir so commands never touch
// the real cache, config or sessions.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantArgs []any
	}{
		{"", "", nil},
		{"fit", "fit", []any{}},
		{"zoomToNode G1 0.25", "zoomToNode", []any{"G1", json.Number("0.25")}},
		{"  findPath   G2 C1 ", "findPath", []any{"G2", "C1"}},
		{"select 42 G1", "select", []any{json.Number("42"), "G1"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, args := parseCommandLine(tt.line)
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %#v, want %#v", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestSnapshotCommand(t *testing.T) {
	isolate(t)
	out := filepath.Join(t.TempDir(), "view.dot")

	err := execute(t, "snapshot", testNetwork, "-f", "dot", "-o", out,
		"--select", "C1", "--command", "zoomToNode G1 0.5")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)
	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("output is not DOT:\n%s", dot)
	}
	// Selecting C1 reveals its hidden cross edge.
	if !strings.Contains(dot, `"C1" -> "P1"`) {
		t.Errorf("missing revealed edge in:\n%s", dot)
	}
}

func TestSnapshotCommandValidation(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"BadFormat", []string{"snapshot", testNetwork, "-f", "gif"}, errors.ErrCodeInvalidArgument},
		{"PathArity", []string{"snapshot", testNetwork, "--path", "G1"}, errors.ErrCodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestPathCommand(t *testing.T) {
	isolate(t)
	if err := execute(t, "path", testNetwork, "G2", "C1"); err != nil {
		t.Errorf("path: %v", err)
	}
	if err := execute(t, "path", testNetwork, "G2", "nope"); !errors.Is(err, errors.ErrCodeMissingNode) {
		t.Errorf("missing node err = %v, want MISSING_NODE", err)
	}
}

func TestInfoCommand(t *testing.T) {
	isolate(t)
	if err := execute(t, "info", testNetwork); err != nil {
		t.Errorf("info: %v", err)
	}
	if err := execute(t, "info", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("info on a missing file should fail")
	}
}

func TestPathTable(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)
	net, err := c.load(context.Background(), testNetwork, loadOpts{noCache: true}, pipeline.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer net.cleanup()

	path, err := net.Controller.FindPath("G2", "C1")
	if err != nil {
		t.Fatal(err)
	}
	table := pathTable(net.Network, path, net.runner.Config.ViewOptions().Classifier)
	for _, want := range []string{"G2", "BAX", "Gene", "C1", "Compound", "40.0"} {
		if !strings.Contains(table, want) {
			t.Errorf("table missing %q:\n%s", want, table)
		}
	}
}

func TestCountTypes(t *testing.T) {
	isolate(t)
	c := New(io.Discard, LogInfo)
	net, err := c.load(context.Background(), testNetwork, loadOpts{noCache: true}, pipeline.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer net.cleanup()

	got := countTypes(net)
	want := []string{"Gene (2)", "Pathway (2)", "Compound (1)"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("countTypes = %v, want %v", got, want)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	isolate(t)
	ctx := context.Background()
	c := New(io.Discard, LogInfo)
	store, err := openSessionStore()
	if err != nil {
		t.Fatal(err)
	}

	net, err := c.load(ctx, testNetwork, loadOpts{noCache: true}, pipeline.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer net.cleanup()
	net.Controller.ClickNode(ctx, "G1")
	if _, err := net.Controller.Camera().PanTo(10, 20, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := saveSession(ctx, store, "work", "pathways", net.Controller); err != nil {
		t.Fatalf("saveSession: %v", err)
	}

	sess, err := store.Get(ctx, "work")
	if err != nil || sess == nil {
		t.Fatalf("Get: %v, %v", sess, err)
	}
	if want := (camera.Transform{X: 10, Y: 20, Ratio: 0.5}); sess.Camera != want {
		t.Errorf("saved camera = %+v, want %+v", sess.Camera, want)
	}
	if sess.Selected != "G1" {
		t.Errorf("saved selection = %q, want G1", sess.Selected)
	}

	fresh, err := c.load(ctx, testNetwork, loadOpts{noCache: true}, pipeline.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer fresh.cleanup()
	if err := resumeSession(ctx, store, "work", "pathways", fresh.Controller); err != nil {
		t.Fatalf("resumeSession: %v", err)
	}
	if got := fresh.Controller.Camera().Transform(); got != sess.Camera {
		t.Errorf("restored camera = %+v, want %+v", got, sess.Camera)
	}
	if got := fresh.Controller.Selected(); got != "G1" {
		t.Errorf("restored selection = %q, want G1", got)
	}

	err = resumeSession(ctx, store, "work", "other", fresh.Controller)
	if !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("resume for another network err = %v, want INVALID_ARGUMENT", err)
	}
	if err := resumeSession(ctx, store, "missing", "pathways", fresh.Controller); err != nil {
		t.Errorf("resume of a missing session should be a no-op, got %v", err)
	}
}

func TestSessionsCommands(t *testing.T) {
	isolate(t)
	ctx := context.Background()
	store, err := openSessionStore()
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, session.New("kegg", "pathways", session.DefaultTTL)); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"sessions", "list"},
		{"sessions", "prune"},
		{"sessions", "path"},
		{"sessions", "delete", "kegg"},
	} {
		if err := execute(t, args...); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}
	if sess, _ := store.Get(ctx, "kegg"); sess != nil {
		t.Error("session should be deleted")
	}
	if err := execute(t, "sessions", "delete", "../escape"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad name err = %v, want INVALID_INPUT", err)
	}
}

func TestViewCommandValidatesSession(t *testing.T) {
	isolate(t)
	err := execute(t, "view", testNetwork, "--session", "a/b")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestCompletions(t *testing.T) {
	isolate(t)

	ids, dir := completePathArgs(nil, []string{testNetwork}, "G")
	if dir != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v, want NoFileComp", dir)
	}
	if len(ids) != 2 || !strings.HasPrefix(ids[0], "G1\t") {
		t.Errorf("node completions = %q, want G1 and G2 with labels", ids)
	}
	if got := nodeCompletions("mongo:pathways", ""); got != nil {
		t.Errorf("mongo refs should not complete, got %q", got)
	}
	if _, dir := completePathArgs(nil, nil, ""); dir != cobra.ShellCompDirectiveFilterFileExt {
		t.Errorf("first argument should complete files, got %v", dir)
	}

	store, err := openSessionStore()
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(context.Background(), session.New("kegg", "pathways", session.DefaultTTL)); err != nil {
		t.Fatal(err)
	}
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	names, _ := completeSessions(cmd, nil, "k")
	if len(names) != 1 || names[0] != "kegg\tpathways" {
		t.Errorf("session completions = %q", names)
	}
}
