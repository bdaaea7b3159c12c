package cli

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/matzehuels/netview/pkg/pipeline"
)

// loadOpts holds flags shared by every command that loads a network.
type loadOpts struct {
	noCache bool
	legacy  bool
}

// loaded is a network loaded for a single command run.
type loaded struct {
	*pipeline.Result
	runner  *pipeline.Runner
	cleanup func()
}

// load runs the pipeline for ref. Callers must call cleanup when done.
func (c *CLI) load(ctx context.Context, ref string, lo loadOpts, opts pipeline.Options) (*loaded, error) {
	runner, cleanup, err := c.newRunner(ctx, lo.noCache)
	if err != nil {
		return nil, err
	}
	opts.Ref = ref
	opts.Legacy = lo.legacy
	res, err := runner.Load(ctx, opts)
	if err != nil {
		cleanup()
		return nil, err
	}
	for _, o := range res.Report.Orphans {
		c.Logger.Warn("edge endpoint missing", "edge", o.EdgeID, "source", o.Source, "target", o.Target)
	}
	return &loaded{Result: res, runner: runner, cleanup: cleanup}, nil
}

// parseCommandLine splits "zoomToNode G1 0.25" into a command name and
// positional arguments. Numeric words become json.Number so they decode
// both as numbers and as node IDs.
func parseCommandLine(line string) (string, []any) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	args := make([]any, 0, len(fields)-1)
	for _, f := range fields[1:] {
		if _, err := strconv.ParseFloat(f, 64); err == nil {
			args = append(args, json.Number(f))
			continue
		}
		args = append(args, f)
	}
	return fields[0], args
}
