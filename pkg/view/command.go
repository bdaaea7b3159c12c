package view

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/netview/pkg/errors"
)

// Command names accepted by the host protocol.
const (
	CmdFit        = "fit"
	CmdFitContent = "fitContent"
	CmdZoomIn     = "zoomIn"
	CmdZoomOut    = "zoomOut"
	CmdZoomToNode = "zoomToNode"
	CmdFindPath   = "findPath"
	CmdSelect     = "select"
)

// Command is a decoded host command. The set of implementations is closed.
type Command interface {
	// Name returns the protocol name the command was decoded from.
	Name() string
	command()
}

// Fit animates the camera back to the fit-to-content transform.
type Fit struct {
	// Alias is the name it was issued under (fit or fitContent).
	Alias string
}

// ZoomIn divides the camera ratio by Factor. Zero uses the configured default.
type ZoomIn struct{ Factor float64 }

// ZoomOut multiplies the camera ratio by Factor. Zero uses the configured default.
type ZoomOut struct{ Factor float64 }

// ZoomToNode pans to a node. Zero Ratio uses the configured default.
type ZoomToNode struct {
	NodeID string
	Ratio  float64
}

// FindPath highlights the shortest path between two nodes.
type FindPath struct{ From, To string }

// Select grays every node and highlights NodeIDs.
type Select struct{ NodeIDs []string }

// Unknown is any name outside the command table. Executing it is a no-op.
type Unknown struct{ Command string }

func (c Fit) Name() string {
	if c.Alias != "" {
		return c.Alias
	}
	return CmdFit
}
func (ZoomIn) Name() string       { return CmdZoomIn }
func (ZoomOut) Name() string      { return CmdZoomOut }
func (ZoomToNode) Name() string   { return CmdZoomToNode }
func (FindPath) Name() string     { return CmdFindPath }
func (Select) Name() string       { return CmdSelect }
func (c Unknown) Name() string    { return c.Command }
func (Fit) command()              {}
func (ZoomIn) command()           {}
func (ZoomOut) command()          {}
func (ZoomToNode) command()       {}
func (FindPath) command()         {}
func (Select) command()           {}
func (Unknown) command()          {}

// Table is a set of command names a dispatcher accepts.
type Table map[string]bool

// Command tables.
var (
	// GraphTable is the graph-aware command set.
	GraphTable = Table{CmdFit: true, CmdZoomIn: true, CmdZoomOut: true, CmdZoomToNode: true, CmdFindPath: true, CmdSelect: true}
	// LegacyTable is the camera-only command set.
	LegacyTable = Table{CmdFitContent: true, CmdZoomIn: true, CmdZoomOut: true}
)

// Decode resolves a name and positional arguments into a Command. Names
// outside table decode to [Unknown] without error. Known names with
// malformed arguments return an INVALID_ARGUMENT error.
//
// Argument contract per command:
//
//	fit, fitContent   no arguments
//	zoomIn, zoomOut   [factor]            factor > 1, optional
//	zoomToNode        nodeId [ratio]      ratio > 0, optional
//	findPath          from to
//	select            id... | [id...]
func Decode(table Table, name string, args []any) (Command, error) {
	if !table[name] {
		return Unknown{Command: name}, nil
	}
	switch name {
	case CmdFit, CmdFitContent:
		return Fit{Alias: name}, nil

	case CmdZoomIn, CmdZoomOut:
		if len(args) > 1 {
			return nil, arityError(name, "at most 1", len(args))
		}
		var factor float64
		if len(args) == 1 {
			f, err := numberArg(name, args[0])
			if err != nil {
				return nil, err
			}
			if !(f > 1) {
				return nil, errors.New(errors.ErrCodeInvalidArgument, "%s: factor must be > 1, got %v", name, f)
			}
			factor = f
		}
		if name == CmdZoomIn {
			return ZoomIn{Factor: factor}, nil
		}
		return ZoomOut{Factor: factor}, nil

	case CmdZoomToNode:
		if len(args) < 1 || len(args) > 2 {
			return nil, arityError(name, "1 or 2", len(args))
		}
		id, err := stringArg(name, args[0])
		if err != nil {
			return nil, err
		}
		cmd := ZoomToNode{NodeID: id}
		if len(args) == 2 {
			r, err := numberArg(name, args[1])
			if err != nil {
				return nil, err
			}
			if !(r > 0) {
				return nil, errors.New(errors.ErrCodeInvalidArgument, "%s: ratio must be > 0, got %v", name, r)
			}
			cmd.Ratio = r
		}
		return cmd, nil

	case CmdFindPath:
		if len(args) != 2 {
			return nil, arityError(name, "2", len(args))
		}
		from, err := stringArg(name, args[0])
		if err != nil {
			return nil, err
		}
		to, err := stringArg(name, args[1])
		if err != nil {
			return nil, err
		}
		return FindPath{From: from, To: to}, nil

	case CmdSelect:
		if len(args) == 1 {
			if list, ok := args[0].([]any); ok {
				args = list
			}
		}
		if len(args) == 0 {
			return nil, arityError(name, "at least 1", 0)
		}
		ids := make([]string, 0, len(args))
		for _, a := range args {
			id, err := stringArg(name, a)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return Select{NodeIDs: ids}, nil
	}
	return Unknown{Command: name}, nil
}

// HostCommand is the command object a host issues. The view reacts only
// when a new object is observed, not when the same one is seen again.
type HostCommand struct {
	Command    string `json:"command"`
	Parameters any    `json:"parameters,omitempty"`
}

// Args normalizes Parameters into a positional list: nil is no arguments,
// a list is used as-is and any other value is a single argument.
func (h *HostCommand) Args() []any {
	switch p := h.Parameters.(type) {
	case nil:
		return nil
	case []any:
		return p
	case []string:
		out := make([]any, len(p))
		for i, s := range p {
			out[i] = s
		}
		return out
	default:
		return []any{p}
	}
}

// ParseHostCommand decodes a JSON command object.
func ParseHostCommand(data []byte) (*HostCommand, error) {
	var h HostCommand
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode command")
	}
	if h.Command == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "command name is required")
	}
	return &h, nil
}

func stringArg(cmd string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		if s == "" {
			return "", errors.New(errors.ErrCodeInvalidArgument, "%s: empty node id", cmd)
		}
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	}
	return "", errors.New(errors.ErrCodeInvalidArgument, "%s: expected node id, got %T", cmd, v)
}

func numberArg(cmd string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	}
	return 0, errors.New(errors.ErrCodeInvalidArgument, "%s: expected number, got %T", cmd, v)
}

func arityError(cmd, want string, got int) error {
	return errors.New(errors.ErrCodeInvalidArgument, "%s: want %s arguments, got %d", cmd, want, got)
}
