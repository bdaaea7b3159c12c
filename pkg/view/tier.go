package view

import (
	"fmt"

	"github.com/matzehuels/netview/pkg/view/camera"
)

// Tier is a rendering level of detail.
type Tier int

const (
	// TierCompact is used for small graphs and zoomed-in views: larger
	// nodes, labels shown early.
	TierCompact Tier = iota
	// TierSparse is used when most of a large graph is on screen.
	TierSparse
)

func (t Tier) String() string {
	switch t {
	case TierCompact:
		return "compact"
	case TierSparse:
		return "sparse"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// StyleParams are the node and label parameters a tier controls.
type StyleParams struct {
	MinNodeSize    float64 `toml:"min_node_size" json:"minNodeSize"`
	MaxNodeSize    float64 `toml:"max_node_size" json:"maxNodeSize"`
	LabelThreshold float64 `toml:"label_threshold" json:"labelThreshold"`
	LabelSizeRatio float64 `toml:"label_size_ratio" json:"labelSizeRatio"`
}

// TierTable maps each tier to its style parameters.
type TierTable struct {
	Compact StyleParams `toml:"compact"`
	Sparse  StyleParams `toml:"sparse"`
}

// DefaultTierTable returns the stock tier styles.
func DefaultTierTable() TierTable {
	return TierTable{
		Compact: StyleParams{MinNodeSize: 0.5, MaxNodeSize: 20, LabelThreshold: 2, LabelSizeRatio: 3},
		Sparse:  StyleParams{MinNodeSize: 0.1, MaxNodeSize: 20, LabelThreshold: 5, LabelSizeRatio: 1.4},
	}
}

// Params returns the style for t.
func (tt TierTable) Params(t Tier) StyleParams {
	if t == TierSparse {
		return tt.Sparse
	}
	return tt.Compact
}

// Density band fractions of the total node count.
const (
	DensityLow  = 0.15
	DensityHigh = 0.90
)

// DensityMonitor switches tiers from the number of visible nodes.
//
// The thresholds form an asymmetric band: SPARSE drops to COMPACT at or
// below low; COMPACT rises to SPARSE only inside (low, high]. A view that is
// denser than high while COMPACT stays COMPACT, and one that falls from
// above high stays SPARSE until it reaches low.
type DensityMonitor struct {
	index     SpatialIndex
	low, high float64
	tier      Tier
	apply     func(from, to Tier, visible int)
	applying  bool
}

// NewDensityMonitor creates a monitor for a graph of total nodes. apply runs
// on every tier switch; it may trigger further camera events, which are
// ignored until it returns.
func NewDensityMonitor(index SpatialIndex, total int, initial Tier, apply func(from, to Tier, visible int)) *DensityMonitor {
	return &DensityMonitor{
		index: index,
		low:   DensityLow * float64(total),
		high:  DensityHigh * float64(total),
		tier:  initial,
		apply: apply,
	}
}

// Tier returns the current tier.
func (m *DensityMonitor) Tier() Tier { return m.tier }

// Thresholds returns the low and high visible-count thresholds.
func (m *DensityMonitor) Thresholds() (low, high float64) { return m.low, m.high }

// Update samples the spatial index at t and switches tier if the hysteresis
// rule says so. It reports whether the tier changed.
func (m *DensityMonitor) Update(t camera.Transform) bool {
	if m.applying {
		return false
	}
	return m.Observe(m.index.VisibleCount(t))
}

// Observe applies the hysteresis rule to a visible count.
func (m *DensityMonitor) Observe(visible int) bool {
	if m.applying {
		return false
	}
	v := float64(visible)
	next := m.tier
	switch {
	case m.tier == TierSparse && v <= m.low:
		next = TierCompact
	case m.tier == TierCompact && v > m.low && v <= m.high:
		next = TierSparse
	}
	if next == m.tier {
		return false
	}
	prev := m.tier
	m.tier = next
	if m.apply != nil {
		m.applying = true
		defer func() { m.applying = false }()
		m.apply(prev, next, visible)
	}
	return true
}
