package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/graph"
	"github.com/matzehuels/netview/pkg/style"
	"github.com/matzehuels/netview/pkg/view"
)

const (
	frameInterval = 16 * time.Millisecond

	// cellAspect is the height of a terminal cell over its width.
	cellAspect = 2.0

	// panStep is the fraction of the visible extent moved per arrow key.
	panStep = 0.15

	// chromeRows are the rows below the canvas: status and help or input.
	chromeRows = 2

	// defaultCols and defaultRows size the screen until the terminal
	// reports its own size.
	defaultCols = 80
	defaultRows = 24

	// labelLimit is the node count above which only the selected and
	// focused nodes are labeled.
	labelLimit = 40
)

const (
	glyphNode     = '●'
	glyphSelected = '◉'
	glyphFocus    = '◎'
	glyphEdge     = '·'
)

var (
	viewerHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	viewerStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	viewerPromptStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	viewerEdgeColor   = "#585858"
)

// Labels of nodes other than the selected or focused one are blended this
// far toward viewerEdgeColor.
const labelDim = 0.45

// =============================================================================
// Scene buffer
// =============================================================================

// sceneBuffer is the viewer's [view.Renderer] and [view.SelectionListener]:
// it keeps the latest scene for the next frame and the size of the last
// highlight. The controller and the model share one goroutine, so it needs
// no locking.
type sceneBuffer struct {
	scene       view.Scene
	highlighted int
}

func (b *sceneBuffer) Refresh(s view.Scene) { b.scene = s }

func (b *sceneBuffer) OnSelectNodes(ids []string, _ map[string]graph.Node) {
	b.highlighted = len(ids)
}

// =============================================================================
// viewerModel - Interactive network viewer
// =============================================================================

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// viewerModel drives a [view.Controller] from the keyboard and draws its
// scene as a character grid.
type viewerModel struct {
	ctx   context.Context
	ctrl  *view.Controller
	index *view.ViewportIndex
	buf   *sceneBuffer
	title string

	width, height int

	focus  int
	typing bool
	input  string
	status string
}

func newViewerModel(ctx context.Context, title string, ctrl *view.Controller, index *view.ViewportIndex, buf *sceneBuffer) *viewerModel {
	buf.scene = ctrl.Scene()
	return &viewerModel{
		ctx:    ctx,
		ctrl:   ctrl,
		index:  index,
		buf:    buf,
		title:  title,
		width:  defaultCols,
		height: defaultRows,
		focus:  -1,
	}
}

func (m *viewerModel) Init() tea.Cmd {
	return nextFrame()
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.ctrl.Step()
		return m, nextFrame()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.index != nil {
			m.index.SetAspect(m.aspect())
			m.ctrl.CameraCoordinatesUpdated()
		}
		return m, nil

	case tea.KeyMsg:
		if m.typing {
			return m, m.updateInput(msg)
		}
		return m, m.updateKeys(msg)
	}
	return m, nil
}

func (m *viewerModel) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		m.pan(0, -1)
	case "down", "j":
		m.pan(0, 1)
	case "left", "h":
		m.pan(-1, 0)
	case "right", "l":
		m.pan(1, 0)
	case "+", "=":
		m.dispatch(view.CmdZoomIn, nil)
	case "-", "_":
		m.dispatch(view.CmdZoomOut, nil)
	case "f", "0":
		m.dispatch(view.CmdFit, nil)
	case "tab":
		m.moveFocus(1)
	case "shift+tab":
		m.moveFocus(-1)
	case "enter", " ":
		if id := m.focused(); id != "" {
			m.ctrl.ClickNode(m.ctx, id)
			m.status = ""
		}
	case "z":
		if id := m.focused(); id != "" {
			m.dispatch(view.CmdZoomToNode, []any{id})
		}
	case "esc":
		m.ctrl.DoubleClickBackground(m.ctx)
		m.buf.highlighted = 0
		m.status = ""
	case ":":
		m.typing = true
		m.input = ""
	}
	return nil
}

func (m *viewerModel) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEsc:
		m.typing = false
	case tea.KeyEnter:
		m.typing = false
		name, args := parseCommandLine(m.input)
		if name != "" {
			m.dispatch(name, args)
		}
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return nil
}

func (m *viewerModel) dispatch(name string, args []any) {
	res := m.ctrl.Dispatch(m.ctx, name, args)
	switch {
	case res.Err != nil:
		m.status = errors.UserMessage(res.Err)
	case len(res.Path) > 0:
		m.status = strings.Join(res.Path, " → ")
	default:
		m.status = ""
	}
}

// pan moves the camera a fraction of the visible area in the given
// direction, keeping the zoom level.
func (m *viewerModel) pan(dx, dy float64) {
	cam := m.buf.scene.Camera
	vis := m.viewport().Visible(cam)
	x := cam.X + dx*panStep*vis.Width()
	y := cam.Y + dy*panStep*vis.Height()
	if _, err := m.ctrl.Camera().PanTo(x, y, cam.Ratio); err != nil {
		m.status = errors.UserMessage(err)
	}
}

func (m *viewerModel) moveFocus(delta int) {
	n := len(m.buf.scene.Nodes)
	if n == 0 {
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
}

func (m *viewerModel) focused() string {
	nodes := m.buf.scene.Nodes
	if m.focus < 0 || m.focus >= len(nodes) {
		return ""
	}
	return nodes[m.focus].ID
}

func (m *viewerModel) canvasSize() (cols, rows int) {
	return max(m.width, 1), max(m.height-chromeRows, 1)
}

// aspect is the canvas shape in graph units: cells are taller than wide.
func (m *viewerModel) aspect() float64 {
	cols, rows := m.canvasSize()
	return float64(cols) / (float64(rows) * cellAspect)
}

func (m *viewerModel) viewport() view.Viewport {
	return view.Viewport{Frame: m.buf.scene.Frame, Aspect: m.aspect()}
}

// =============================================================================
// Drawing
// =============================================================================

func (m *viewerModel) View() string {
	cols, rows := m.canvasSize()
	scene := m.buf.scene
	g := newGrid(cols, rows)
	g.draw(scene, m.viewport().Visible(scene.Camera), m.focused(), len(scene.Nodes) <= labelLimit)

	var b strings.Builder
	b.WriteString(g.String())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	if m.typing {
		b.WriteString(viewerPromptStyle.Render(":") + m.input + "█")
	} else {
		b.WriteString(viewerHelpStyle.Render("←↑↓→ pan  +/- zoom  f fit  tab focus  ⏎ select  z zoom to  esc clear  : command  q quit"))
	}
	return b.String()
}

func (m *viewerModel) statusLine() string {
	scene := m.buf.scene
	parts := []string{
		StyleTitle.Render(m.title),
		badge(scene.Tier.String(), tierColor(scene.Tier)),
		fmt.Sprintf("ratio %.3g", scene.Camera.Ratio),
	}
	if m.index != nil {
		parts = append(parts, fmt.Sprintf("%d/%d visible", m.index.VisibleCount(scene.Camera), len(scene.Nodes)))
	}
	if scene.Selected != "" {
		n, _ := scene.Node(scene.Selected)
		parts = append(parts, swatch(n.Color)+" "+StyleHighlight.Render(n.Label))
		if m.buf.highlighted > 0 {
			parts = append(parts, fmt.Sprintf("%d highlighted", m.buf.highlighted))
		}
	}
	if id := m.focused(); id != "" && id != scene.Selected {
		n, _ := scene.Node(id)
		parts = append(parts, StyleDim.Render("focus ")+n.Label)
	}
	if m.status != "" {
		parts = append(parts, StyleWarning.Render(m.status))
	}
	return viewerStatusStyle.Render(strings.Join(parts, "  "))
}

func tierColor(t view.Tier) string {
	if t == view.TierSparse {
		return "#5f87af"
	}
	return "#5faf87"
}

type cell struct {
	r     rune
	color string
	node  bool
}

// grid is a character canvas in screen coordinates.
type grid struct {
	cols, rows int
	cells      [][]cell
}

func newGrid(cols, rows int) *grid {
	cells := make([][]cell, rows)
	for i := range cells {
		cells[i] = make([]cell, cols)
	}
	return &grid{cols: cols, rows: rows, cells: cells}
}

// project maps graph coordinates inside vis onto the grid. ok is false for
// points outside it.
func (g *grid) project(vis view.Bounds, x, y float64) (col, row int, ok bool) {
	if vis.Width() <= 0 || vis.Height() <= 0 {
		return 0, 0, false
	}
	fx := (x - vis.MinX) / vis.Width()
	fy := (y - vis.MinY) / vis.Height()
	if fx < 0 || fx > 1 || fy < 0 || fy > 1 {
		return 0, 0, false
	}
	col = min(int(fx*float64(g.cols)), g.cols-1)
	row = min(int(fy*float64(g.rows)), g.rows-1)
	return col, row, true
}

func (g *grid) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return nil
	}
	return &g.cells[row][col]
}

// Nodes cover everything, labels cover edges and edges fill empty cells.

func (g *grid) setNode(col, row int, r rune, color string) {
	if c := g.at(col, row); c != nil {
		*c = cell{r: r, color: color, node: true}
	}
}

func (g *grid) setLabel(col, row int, r rune, color string) {
	if c := g.at(col, row); c != nil && !c.node {
		*c = cell{r: r, color: color}
	}
}

func (g *grid) setEdge(col, row int, color string) {
	if c := g.at(col, row); c != nil && c.r == 0 {
		*c = cell{r: glyphEdge, color: color}
	}
}

func (g *grid) draw(scene view.Scene, vis view.Bounds, focus string, labels bool) {
	byID := make(map[string]view.SceneNode, len(scene.Nodes))
	for _, n := range scene.Nodes {
		byID[n.ID] = n
	}

	for _, e := range scene.Edges {
		s, ok1 := byID[e.Source]
		t, ok2 := byID[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		color := e.Color
		if color == "" {
			color = viewerEdgeColor
		}
		g.line(vis, s.X, s.Y, t.X, t.Y, color)
	}

	for _, n := range scene.Nodes {
		col, row, ok := g.project(vis, n.X, n.Y)
		if !ok {
			continue
		}
		glyph := glyphNode
		switch n.ID {
		case scene.Selected:
			glyph = glyphSelected
		case focus:
			glyph = glyphFocus
		}
		g.setNode(col, row, glyph, n.Color)
		active := n.ID == scene.Selected || n.ID == focus
		if labels || active {
			color := n.Color
			if !active {
				color = style.Blend(n.Color, viewerEdgeColor, labelDim)
			}
			for i, r := range []rune(n.Label) {
				g.setLabel(col+2+i, row, r, color)
			}
		}
	}
}

// line samples the part of a segment inside vis once per cell.
func (g *grid) line(vis view.Bounds, x0, y0, x1, y1 float64, color string) {
	x0, y0, x1, y1, ok := clipSegment(vis, x0, y0, x1, y1)
	if !ok || vis.Width() <= 0 || vis.Height() <= 0 {
		return
	}
	dx := (x1 - x0) / vis.Width() * float64(g.cols)
	dy := (y1 - y0) / vis.Height() * float64(g.rows)
	steps := min(int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy)))), g.cols+g.rows)
	for i := 0; i <= steps; i++ {
		f := 0.0
		if steps > 0 {
			f = float64(i) / float64(steps)
		}
		if col, row, ok := g.project(vis, x0+(x1-x0)*f, y0+(y1-y0)*f); ok {
			g.setEdge(col, row, color)
		}
	}
}

// clipSegment cuts a segment to the box b (Liang-Barsky). It reports false
// when no part of the segment lies inside.
func clipSegment(b view.Bounds, x0, y0, x1, y1 float64) (ax, ay, bx, by float64, ok bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, pq := range [4][2]float64{
		{-dx, x0 - b.MinX},
		{dx, b.MaxX - x0},
		{-dy, y0 - b.MinY},
		{dy, b.MaxY - y0},
	} {
		p, q := pq[0], pq[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}
	cx := func(v float64) float64 { return math.Max(b.MinX, math.Min(b.MaxX, v)) }
	cy := func(v float64) float64 { return math.Max(b.MinY, math.Min(b.MaxY, v)) }
	return cx(x0 + t0*dx), cy(y0 + t0*dy), cx(x0 + t1*dx), cy(y0 + t1*dy), true
}

// String renders the grid, styling runs of equal color together.
func (g *grid) String() string {
	var b strings.Builder
	for i, row := range g.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		color := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if color == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(run.String()))
			}
			run.Reset()
		}
		for _, c := range row {
			r := c.r
			if r == 0 {
				r = ' '
			}
			if c.color != color {
				flush()
				color = c.color
			}
			run.WriteRune(r)
		}
		flush()
	}
	return b.String()
}
