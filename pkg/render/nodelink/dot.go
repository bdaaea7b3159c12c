package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/view"
)

// DefaultWidth is the drawing width in inches when Options.Width is zero.
const DefaultWidth = 12.0

// Options configures diagram generation.
type Options struct {
	// Engine is the Graphviz layout engine. Only neato and fdp keep pinned
	// positions; default neato.
	Engine string

	// Width is the extent of the longer scene axis in inches.
	Width float64

	// Labels draws labels on nodes large enough for the tier's threshold.
	Labels bool
}

func (o Options) engine() string {
	if o.Engine == "" {
		return string(graphviz.NEATO)
	}
	return o.Engine
}

// ToDOT converts a scene to Graphviz DOT with pinned node positions.
// Scene y grows downward and DOT y grows upward, so y is flipped within
// the scene bounds.
func ToDOT(s view.Scene, opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	b := boundsOf(s.Nodes)
	scale := width / math.Max(b.extent(), 1e-9)

	nodeSizes := make([]float64, len(s.Nodes))
	for i, n := range s.Nodes {
		nodeSizes[i] = n.Size
	}
	edgeSizes := make([]float64, len(s.Edges))
	for i, e := range s.Edges {
		edgeSizes[i] = e.Size
	}
	nodeSize, edgeSize := spanOf(nodeSizes), spanOf(edgeSizes)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", opts.engine())
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, penwidth=0, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [arrowsize=0.3];\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		size := nodeSize.mapTo(n.Size, s.Settings.MinNodeSize, s.Settings.MaxNodeSize)
		attrs := []string{
			fmt.Sprintf("pos=\"%s,%s!\"", ftoa((n.X-b.minX)*scale), ftoa((b.maxY-n.Y)*scale)),
			fmt.Sprintf("width=%s", ftoa(size*0.02)),
			fmt.Sprintf("fillcolor=%q", n.Color),
		}
		if opts.Labels && size >= s.Settings.LabelThreshold && n.Label != "" {
			attrs = append(attrs,
				fmt.Sprintf("xlabel=%q", n.Label),
				fmt.Sprintf("fontcolor=%q", labelColor(s.Settings, n)),
				fmt.Sprintf("fontsize=%s", ftoa(size*s.Settings.LabelSizeRatio)),
			)
		}
		attrs = append(attrs, "label=\"\"")
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		w := edgeSize.mapTo(e.Size, s.Settings.MinEdgeSize, s.Settings.MaxEdgeSize)
		attrs := []string{
			fmt.Sprintf("color=%q", e.Color),
			fmt.Sprintf("penwidth=%s", ftoa(math.Max(0.2, w*4))),
		}
		if e.Type != graph.EdgeTypeArrow {
			attrs = append(attrs, "arrowhead=none")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func labelColor(st view.Settings, n view.SceneNode) string {
	if st.LabelColor == view.LabelColorNode {
		return n.Color
	}
	return "#000000"
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

type bounds struct{ minX, minY, maxX, maxY float64 }

func (b bounds) extent() float64 {
	return math.Max(b.maxX-b.minX, b.maxY-b.minY)
}

func boundsOf(nodes []view.SceneNode) bounds {
	if len(nodes) == 0 {
		return bounds{}
	}
	b := bounds{nodes[0].X, nodes[0].Y, nodes[0].X, nodes[0].Y}
	for _, n := range nodes[1:] {
		b.minX, b.maxX = math.Min(b.minX, n.X), math.Max(b.maxX, n.X)
		b.minY, b.maxY = math.Min(b.minY, n.Y), math.Max(b.maxY, n.Y)
	}
	return b
}

// sizeRange maps raw sizes onto a display band.
type sizeRange struct{ lo, hi float64 }

// mapTo returns the midpoint of the band when all sizes are equal.
func (r sizeRange) mapTo(v, lo, hi float64) float64 {
	if r.hi <= r.lo {
		return (lo + hi) / 2
	}
	return lo + (v-r.lo)/(r.hi-r.lo)*(hi-lo)
}

func spanOf(vals []float64) sizeRange {
	if len(vals) == 0 {
		return sizeRange{}
	}
	r := sizeRange{vals[0], vals[0]}
	for _, v := range vals[1:] {
		r.lo, r.hi = math.Min(r.lo, v), math.Max(r.hi, v)
	}
	return r
}

// RenderSVG renders DOT to SVG using the engine in opts.
func RenderSVG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(opts.engine()))

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-unit svg header with a plain
// viewBox so the output scales inside host pages.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
