package term

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/liveplot/liveplot/internal/series"
)

func plainStyle(int) lipgloss.Style { return lipgloss.NewStyle() }

func TestCanvasPlotSetsBrailleDots(t *testing.T) {
	c := newCanvas(2, 1)
	// Top-left dot of the first cell.
	c.plot(0, 0, 0)
	out := c.render(plainStyle)
	if got := []rune(out)[0]; got != rune(0x2801) {
		t.Fatalf("first cell = %q, want braille dot-1 %q", got, rune(0x2801))
	}
}

func TestCanvasLineCoversEndpoints(t *testing.T) {
	c := newCanvas(4, 2)
	c.line(0, 0, c.dotCols()-1, c.dotRows()-1, 0)
	out := c.render(plainStyle)
	rows := strings.Split(out, "\n")
	if len(rows) != 2 {
		t.Fatalf("render produced %d rows, want 2", len(rows))
	}
	first := []rune(rows[0])[0]
	last := []rune(rows[1])[len([]rune(rows[1]))-1]
	if first == ' ' || last == ' ' {
		t.Fatalf("line endpoints not drawn: first=%q last=%q", first, last)
	}
}

func TestCanvasClipsOutOfRangeDots(t *testing.T) {
	c := newCanvas(2, 2)
	c.plot(-1, 0, 0)
	c.plot(0, -1, 0)
	c.plot(c.dotCols(), 0, 0)
	c.plot(0, c.dotRows(), 0)
	for _, p := range c.pattern {
		if p != 0 {
			t.Fatal("out-of-range plot modified the canvas")
		}
	}
}

func TestCanvasMarkOverridesBraille(t *testing.T) {
	c := newCanvas(1, 1)
	c.plot(0, 0, 0)
	c.mark(0, 0, '●', 1)
	out := c.render(plainStyle)
	if !strings.ContainsRune(out, '●') {
		t.Fatalf("render = %q, want head marker", out)
	}
}

func TestCanvasCloneIsIndependent(t *testing.T) {
	c := newCanvas(2, 1)
	c.plot(0, 0, 0)
	d := c.clone()
	d.plot(3, 3, 1)
	if c.pattern[1] != 0 {
		t.Fatal("drawing on the clone leaked into the original")
	}
	if d.pattern[0] != c.pattern[0] {
		t.Fatal("clone lost the original's dots")
	}
}

func TestProjectionMapsCorners(t *testing.T) {
	c := newCanvas(10, 5)
	p := newProjection(series.Range{Min: -10, Max: 0}, series.Range{Min: 0, Max: 100}, c)

	dx, dy := p.dot(-10, 0)
	if dx != 0 || dy != c.dotRows()-1 {
		t.Fatalf("min corner = (%d, %d), want (0, %d)", dx, dy, c.dotRows()-1)
	}
	dx, dy = p.dot(0, 100)
	if dx != c.dotCols()-1 || dy != 0 {
		t.Fatalf("max corner = (%d, %d), want (%d, 0)", dx, dy, c.dotCols()-1)
	}
}

func TestProjectionWidensDegenerateRanges(t *testing.T) {
	c := newCanvas(4, 2)
	p := newProjection(series.Range{Min: 5, Max: 5}, series.Range{Min: 0, Max: 1}, c)
	dx, _ := p.dot(5, 0.5)
	if dx < 0 || dx >= c.dotCols() {
		t.Fatalf("degenerate range projected to %d, outside the grid", dx)
	}
}
