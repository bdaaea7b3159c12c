// Package events carries view traffic over NATS: selections go out to
// subscribers, and host commands come in from any publisher.
package events

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netview/pkg/graph"
)

// Subject suffixes under the configured base subject.
const (
	SubjectSelection = "selection"
	SubjectCommand   = "command"
)

// Subject joins base and suffix, e.g. "netview.selection".
func Subject(base, suffix string) string {
	return base + "." + suffix
}

// Publisher sends JSON-encoded events.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close() error
}

// SelectedNode is the wire form of a selected node.
type SelectedNode struct {
	ID    string           `json:"id"`
	Label string           `json:"label,omitempty"`
	X     float64          `json:"x"`
	Y     float64          `json:"y"`
	Color string           `json:"color"`
	Attrs graph.Attributes `json:"attrs,omitempty"`
}

// Selection is published after every completed selection.
type Selection struct {
	Network string         `json:"network,omitempty"`
	NodeIDs []string       `json:"node_ids"`
	Nodes   []SelectedNode `json:"nodes"`
	Time    time.Time      `json:"time"`
}

// NewSelection builds the event for ids. Nodes are ordered as ids; ids
// without an entry in byID are skipped from Nodes but kept in NodeIDs.
func NewSelection(network string, ids []string, byID map[string]graph.Node) Selection {
	ev := Selection{
		Network: network,
		NodeIDs: append([]string(nil), ids...),
		Nodes:   make([]SelectedNode, 0, len(ids)),
		Time:    time.Now().UTC(),
	}
	for _, id := range ids {
		n, ok := byID[id]
		if !ok {
			continue
		}
		ev.Nodes = append(ev.Nodes, SelectedNode{
			ID: n.ID, Label: n.Label, X: n.X, Y: n.Y, Color: n.Color, Attrs: n.Attrs,
		})
	}
	return ev
}

// DefaultPublishTimeout bounds each selection publish.
const DefaultPublishTimeout = 2 * time.Second

// SelectionPublisher forwards completed selections to a Publisher. It
// satisfies the view package's selection listener contract.
type SelectionPublisher struct {
	pub     Publisher
	subject string
	network string
	logger  *log.Logger

	// Timeout bounds each publish. Zero means DefaultPublishTimeout.
	Timeout time.Duration
}

// NewSelectionPublisher publishes selections on Subject(base, SubjectSelection).
func NewSelectionPublisher(pub Publisher, base, network string, logger *log.Logger) *SelectionPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &SelectionPublisher{
		pub:     pub,
		subject: Subject(base, SubjectSelection),
		network: network,
		logger:  logger,
	}
}

// OnSelectNodes publishes the selection under the publish timeout.
// Failures are logged; the view never waits on subscribers.
func (p *SelectionPublisher) OnSelectNodes(ids []string, byID map[string]graph.Node) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ev := NewSelection(p.network, ids, byID)
	if err := p.pub.Publish(ctx, p.subject, ev); err != nil {
		p.logger.Warn("publish selection", "subject", p.subject, "err", err)
	}
}
