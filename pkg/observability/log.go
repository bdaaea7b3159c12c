package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogViewHooks writes view events to a logger at debug level.
type LogViewHooks struct {
	logger *log.Logger
}

// NewLogViewHooks returns view hooks backed by logger. A nil logger uses
// log.Default().
func NewLogViewHooks(logger *log.Logger) *LogViewHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogViewHooks{logger: logger}
}

func (h *LogViewHooks) OnLoad(_ context.Context, nodes, suppressed, orphans int) {
	h.logger.Debug("network loaded", "nodes", nodes, "suppressed", suppressed, "orphans", orphans)
}

func (h *LogViewHooks) OnSelect(_ context.Context, nodeID string, neighbors int) {
	h.logger.Debug("select", "node", nodeID, "neighbors", neighbors)
}

func (h *LogViewHooks) OnDeselect(context.Context) {
	h.logger.Debug("deselect")
}

func (h *LogViewHooks) OnReveal(_ context.Context, nodeID string, edges int) {
	h.logger.Debug("reveal", "node", nodeID, "edges", edges)
}

func (h *LogViewHooks) OnCollapse(_ context.Context, edges, restored int) {
	h.logger.Debug("collapse", "edges", edges, "restored", restored)
}

func (h *LogViewHooks) OnTierChange(_ context.Context, from, to string, visible int) {
	h.logger.Debug("tier", "from", from, "to", to, "visible", visible)
}

func (h *LogViewHooks) OnCommand(_ context.Context, name string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("command ignored", "command", name, "reason", err)
		return
	}
	h.logger.Debug("command", "command", name, "took", d)
}

// LogHTTPHooks writes one line per served request.
type LogHTTPHooks struct {
	NoopHTTPHooks
	logger *log.Logger
}

// NewLogHTTPHooks returns HTTP hooks backed by logger. A nil logger uses
// log.Default().
func NewLogHTTPHooks(logger *log.Logger) *LogHTTPHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHTTPHooks{logger: logger}
}

func (h *LogHTTPHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	if status >= 500 {
		h.logger.Warn("request", "method", method, "path", path, "status", status, "took", d)
		return
	}
	h.logger.Debug("request", "method", method, "path", path, "status", status, "took", d)
}
