package term

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Cell owners below the line range.
const (
	ownerNone   = -1
	ownerStatic = -2
	ownerAxis   = -3
)

// canvas is a Braille dot grid. Each terminal cell is a 2x4 dot matrix,
// giving 2x horizontal and 4x vertical resolution over the cell grid. Every
// cell remembers which line last drew into it so lines keep their colors.
type canvas struct {
	cols, rows int
	pattern    []uint8 // braille bits per cell
	owner      []int   // line index, ownerStatic/ownerAxis, or ownerNone
	override   []rune  // non-braille marker (line heads), 0 = none
}

func newCanvas(cols, rows int) *canvas {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c := &canvas{cols: cols, rows: rows}
	c.pattern = make([]uint8, cols*rows)
	c.owner = make([]int, cols*rows)
	c.override = make([]rune, cols*rows)
	c.clear()
	return c
}

// clone deep-copies the canvas, used to stamp a cached background layer
// under per-frame line drawing.
func (c *canvas) clone() *canvas {
	d := &canvas{cols: c.cols, rows: c.rows}
	d.pattern = append([]uint8(nil), c.pattern...)
	d.owner = append([]int(nil), c.owner...)
	d.override = append([]rune(nil), c.override...)
	return d
}

func (c *canvas) clear() {
	for i := range c.pattern {
		c.pattern[i] = 0
		c.owner[i] = ownerNone
		c.override[i] = 0
	}
}

// dotCols and dotRows are the dimensions of the dot grid.
func (c *canvas) dotCols() int { return c.cols * 2 }
func (c *canvas) dotRows() int { return c.rows * 4 }

// plot sets a single dot. Out-of-range dots are dropped.
func (c *canvas) plot(dx, dy, owner int) {
	if dx < 0 || dx >= c.dotCols() || dy < 0 || dy >= c.dotRows() {
		return
	}
	idx := (dy/4)*c.cols + dx/2
	c.pattern[idx] |= 1 << brailleBits[dx%2][dy%4]
	c.owner[idx] = owner
}

// line draws a Bresenham segment between two dots.
func (c *canvas) line(x0, y0, x1, y1, owner int) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy

	for {
		c.plot(x0, y0, owner)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// circle draws a parametric circle outline centered on a dot.
func (c *canvas) circle(cx, cy, rx, ry, owner int) {
	steps := 8 * (rx + ry)
	if steps < 16 {
		steps = 16
	}
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.plot(cx+int(math.Round(float64(rx)*math.Cos(a))), cy+int(math.Round(float64(ry)*math.Sin(a))), owner)
	}
}

// mark places a marker rune over a cell, on top of any braille content.
// Used for line heads and static points.
func (c *canvas) mark(dx, dy int, r rune, owner int) {
	if dx < 0 || dx >= c.dotCols() || dy < 0 || dy >= c.dotRows() {
		return
	}
	idx := (dy/4)*c.cols + dx/2
	c.override[idx] = r
	c.owner[idx] = owner
}

// render builds the styled cell grid, one string per row joined by newlines.
func (c *canvas) render(styleFor func(owner int) lipgloss.Style) string {
	var out strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		var run strings.Builder
		runOwner := ownerNone
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runOwner == ownerNone {
				out.WriteString(run.String())
			} else {
				out.WriteString(styleFor(runOwner).Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			idx := row*c.cols + col
			var r rune
			switch {
			case c.override[idx] != 0:
				r = c.override[idx]
			case c.pattern[idx] != 0:
				r = rune(0x2800 + int(c.pattern[idx]))
			default:
				r = ' '
			}
			owner := c.owner[idx]
			if r == ' ' {
				owner = ownerNone
			}
			if owner != runOwner {
				flush()
				runOwner = owner
			}
			run.WriteRune(r)
		}
		flush()
	}
	return out.String()
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
