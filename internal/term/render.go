// Package term renders plot frames to the terminal. It implements the
// session's Renderer boundary with a Bubbletea program drawing onto a
// Braille dot canvas: statics and axes form a cached background layer, line
// data is redrawn every frame, and displayed bounds glide toward the
// viewport's target with a spring so rescales don't snap.
package term

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/liveplot/liveplot/internal/series"
)

// Config describes one renderer instance. Resolved once at construction.
type Config struct {
	Title      string
	Dims       int
	LineStyles []string
	Statics    []series.Static
	Refresh    time.Duration
}

// frameMsg carries one presented frame into the Bubbletea program.
type frameMsg struct {
	lines  []series.LineData
	bounds series.Bounds
	redraw bool
	fps    float64
}

// Renderer is the terminal implementation of the session's renderer
// boundary. Draw calls accumulate a pending frame; Present ships it to the
// Bubbletea program.
type Renderer struct {
	cfg  Config
	prog *tea.Program

	mu          sync.Mutex
	pending     frameMsg
	lastPresent time.Time

	closed    chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

// New creates a terminal renderer. Start must be called before the first
// Present.
func New(cfg Config) *Renderer {
	return &Renderer{
		cfg:    cfg,
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the Bubbletea program on its own goroutine.
func (r *Renderer) Start() error {
	m := newModel(r.cfg, r.requestClose)
	r.prog = tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		defer close(r.done)
		if _, err := r.prog.Run(); err != nil {
			r.requestClose()
		}
	}()
	return nil
}

func (r *Renderer) requestClose() {
	r.closeOnce.Do(func() { close(r.closed) })
}

// SetBounds updates the pending frame's axis ranges.
func (r *Renderer) SetBounds(b series.Bounds) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.bounds = b.Clone()
}

// RequestFullRedraw invalidates the cached background on the next Present.
func (r *Renderer) RequestFullRedraw() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.redraw = true
}

// DrawLines replaces the pending frame's line data.
func (r *Renderer) DrawLines(lines []series.LineData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.lines = lines
}

// Present ships the pending frame to the program.
func (r *Renderer) Present() error {
	r.mu.Lock()
	msg := r.pending
	r.pending.redraw = false
	now := time.Now()
	if !r.lastPresent.IsZero() {
		if dt := now.Sub(r.lastPresent).Seconds(); dt > 0 {
			msg.fps = 1 / dt
		}
	}
	r.lastPresent = now
	r.mu.Unlock()

	if r.prog == nil {
		return fmt.Errorf("term: Present before Start")
	}
	r.prog.Send(msg)
	return nil
}

// Closed is closed when the user quits the program.
func (r *Renderer) Closed() <-chan struct{} { return r.closed }

// Close shuts the program down and waits briefly for the screen to be
// restored.
func (r *Renderer) Close() error {
	if r.prog != nil {
		r.prog.Quit()
		select {
		case <-r.done:
		case <-time.After(time.Second):
		}
	}
	return nil
}

// axisSpring animates one bound edge toward its target.
type axisSpring struct {
	pos, vel float64
}

// model is the Bubbletea side of the renderer.
type model struct {
	cfg        Config
	onClose    func()
	width      int
	height     int
	spin       spinner.Model
	styles     []lipgloss.Style
	spring     harmonica.Spring
	frame      frameMsg
	hasData    bool
	hasBounds  bool
	shown      series.Bounds
	springs    []axisSpring // min/max pairs: time, then each axis
	bg         *canvas      // cached statics layer
	bgValid    bool
}

func newModel(cfg Config, onClose func()) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = waitStyle

	styles := make([]lipgloss.Style, 0, len(cfg.LineStyles))
	for _, c := range cfg.LineStyles {
		styles = append(styles, lipgloss.NewStyle().Foreground(lipgloss.Color(c)))
	}

	fps := 10
	if cfg.Refresh > 0 {
		fps = int(time.Second / cfg.Refresh)
		if fps < 1 {
			fps = 1
		}
	}

	return model{
		cfg:     cfg,
		onClose: onClose,
		spin:    s,
		styles:  styles,
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.9),
	}
}

func (m model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.onClose()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bgValid = false
	case frameMsg:
		m.frame = msg
		if len(msg.lines) > 0 {
			m.hasData = true
		}
		m.easeBounds(msg.bounds)
		if msg.redraw {
			m.bgValid = false
		}
		if !m.bgValid && m.width > 0 && m.boundsReady() {
			m.rebuildBackground()
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// easeBounds steps the displayed bounds one spring update toward the
// target. The first bounds snap so the plot doesn't fly in from zero.
func (m *model) easeBounds(target series.Bounds) {
	n := 2 * (1 + len(target.Axes))
	if !m.hasBounds || len(m.springs) != n {
		m.shown = target.Clone()
		m.springs = make([]axisSpring, n)
		m.hasBounds = true
		return
	}

	edges := make([]*float64, 0, n)
	targets := make([]float64, 0, n)
	edges = append(edges, &m.shown.Time.Min, &m.shown.Time.Max)
	targets = append(targets, target.Time.Min, target.Time.Max)
	for i := range m.shown.Axes {
		edges = append(edges, &m.shown.Axes[i].Min, &m.shown.Axes[i].Max)
		targets = append(targets, target.Axes[i].Min, target.Axes[i].Max)
	}
	moved := false
	for i, e := range edges {
		sp := &m.springs[i]
		*e, sp.vel = m.spring.Update(*e, sp.vel, targets[i])
		if *e != targets[i] {
			moved = true
		}
	}
	// A moving viewport shifts the statics layer too.
	if moved {
		m.bgValid = false
	}
}

// plotExtent returns the canvas cell dimensions inside the frame chrome.
func (m model) plotExtent() (int, int) {
	w := m.width - 4  // border + padding
	h := m.height - 4 // border + title + axis labels
	if w < 8 {
		w = 8
	}
	if h < 4 {
		h = 4
	}
	return w, h
}

func (m model) View() string {
	if m.width == 0 {
		return ""
	}
	cols, rows := m.plotExtent()

	var body string
	if !m.hasData || !m.boundsReady() {
		body = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center,
			m.spin.View()+waitStyle.Render(" waiting for data..."))
	} else {
		body = m.renderPlot(cols, rows)
	}

	title := titleStyle.Render(m.cfg.Title)
	if m.frame.fps > 0 {
		title += fpsStyle.Render(fmt.Sprintf("  %.1f fps", m.frame.fps))
	}

	content := title + "\n" + body + "\n" + m.axisLabels(cols)
	return frameStyle.Render(content)
}

// rebuildBackground re-renders the statics layer at the current displayed
// bounds and canvas size.
func (m *model) rebuildBackground() {
	cols, rows := m.plotExtent()
	c := newCanvas(cols, rows)
	xr, yr := m.viewRanges()
	proj := newProjection(xr, yr, c)
	m.drawAxes(c, proj, xr, yr)
	m.drawStatics(c, proj)
	m.bg = c
	m.bgValid = true
}

// drawAxes draws the zero gridlines where they fall inside the view. Time
// series plots get only the horizontal one; the time axis always ends at
// zero, so a vertical line there would just shadow the right edge.
func (m model) drawAxes(c *canvas, proj projection, xr, yr series.Range) {
	if yr.Contains(0) {
		_, dy := proj.dot(xr.Min, 0)
		c.line(0, dy, c.dotCols()-1, dy, ownerAxis)
	}
	if m.cfg.Dims > 1 && xr.Contains(0) {
		dx, _ := proj.dot(0, yr.Min)
		c.line(dx, 0, dx, c.dotRows()-1, ownerAxis)
	}
}

// renderPlot composes the cached background with the line layer.
func (m model) renderPlot(cols, rows int) string {
	var c *canvas
	if m.bg != nil && m.bg.cols == cols && m.bg.rows == rows {
		c = m.bg.clone()
	} else {
		c = newCanvas(cols, rows)
	}
	xr, yr := m.viewRanges()
	proj := newProjection(xr, yr, c)
	for l, line := range m.frame.lines {
		m.drawLine(c, proj, l, line)
	}
	return c.render(m.styleFor)
}

// boundsReady reports whether the displayed bounds carry enough axes to
// project onto the screen plane.
func (m model) boundsReady() bool {
	if m.cfg.Dims == 1 {
		return len(m.shown.Axes) >= 1
	}
	return len(m.shown.Axes) >= 2
}

// viewRanges picks the X and Y data ranges for the visible plane. Time
// series plots use the time axis for X; spatial plots use the first two
// spatial axes (3D projects onto XY).
func (m model) viewRanges() (series.Range, series.Range) {
	if m.cfg.Dims == 1 {
		return m.shown.Time, m.shown.Axes[0]
	}
	return m.shown.Axes[0], m.shown.Axes[1]
}

func (m model) drawLine(c *canvas, proj projection, l int, line series.LineData) {
	if len(line.X) == 0 {
		return
	}
	px, py := proj.dot(line.X[0], line.Y[0])
	for i := 1; i < len(line.X); i++ {
		dx, dy := proj.dot(line.X[i], line.Y[i])
		c.line(px, py, dx, dy, l)
		px, py = dx, dy
	}
	// Line head marks the newest point.
	c.mark(px, py, '●', l)
}

func (m model) drawStatics(c *canvas, proj projection) {
	for _, s := range m.cfg.Statics {
		switch s := s.(type) {
		case series.Point:
			dx, dy := proj.dot(s.X, s.Y)
			c.mark(dx, dy, '✦', ownerStatic)
		case series.Circle:
			cx, cy := proj.dot(s.X, s.Y)
			rx, ry := proj.radius(s.Radius)
			c.circle(cx, cy, rx, ry, ownerStatic)
		case series.Rectangle:
			x0, y0 := proj.dot(s.X, s.Y)
			x1, y1 := proj.dot(s.X+s.Width, s.Y+s.Height)
			c.line(x0, y0, x1, y0, ownerStatic)
			c.line(x1, y0, x1, y1, ownerStatic)
			c.line(x1, y1, x0, y1, ownerStatic)
			c.line(x0, y1, x0, y0, ownerStatic)
		case series.VLine:
			dx, _ := proj.dot(s.X, 0)
			c.line(dx, 0, dx, c.dotRows()-1, ownerStatic)
		case series.HLine:
			_, dy := proj.dot(0, s.Y)
			c.line(0, dy, c.dotCols()-1, dy, ownerStatic)
		}
	}
}

func (m model) styleFor(owner int) lipgloss.Style {
	switch {
	case owner == ownerStatic, owner == ownerAxis:
		return staticStyle
	case owner >= 0 && owner < len(m.styles):
		return m.styles[owner]
	case owner >= 0:
		return lipgloss.NewStyle().Foreground(defaultPalette[owner%len(defaultPalette)])
	default:
		return lipgloss.NewStyle()
	}
}

// axisLabels renders the X extent under the plot.
func (m model) axisLabels(cols int) string {
	if !m.boundsReady() {
		return ""
	}
	xr, _ := m.viewRanges()
	left := labelStyle.Render(formatAxis(xr.Min))
	right := labelStyle.Render(formatAxis(xr.Max))
	pad := cols - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + lipgloss.NewStyle().Width(pad).Render("") + right
}

func formatAxis(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
