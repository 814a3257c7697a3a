package term

import (
	"math"

	"github.com/liveplot/liveplot/internal/series"
)

// projection maps data coordinates onto a canvas's dot grid. Y is inverted:
// the axis maximum sits at dot row 0.
type projection struct {
	x, y    series.Range
	dotCols int
	dotRows int
}

func newProjection(x, y series.Range, c *canvas) projection {
	// Degenerate ranges would divide by zero; widen them symmetrically.
	if x.Width() == 0 {
		x.Min, x.Max = x.Min-1, x.Max+1
	}
	if y.Width() == 0 {
		y.Min, y.Max = y.Min-1, y.Max+1
	}
	return projection{x: x, y: y, dotCols: c.dotCols(), dotRows: c.dotRows()}
}

// dot converts a data point to dot coordinates. Points outside the bounds
// land outside the grid and are clipped by the canvas.
func (p projection) dot(x, y float64) (int, int) {
	fx := (x - p.x.Min) / p.x.Width()
	fy := (y - p.y.Min) / p.y.Width()
	dx := int(math.Round(fx * float64(p.dotCols-1)))
	dy := int(math.Round((1 - fy) * float64(p.dotRows-1)))
	return dx, dy
}

// radius converts a data-space radius to dot extents on each axis.
func (p projection) radius(r float64) (int, int) {
	rx := int(math.Round(r / p.x.Width() * float64(p.dotCols-1)))
	ry := int(math.Round(r / p.y.Width() * float64(p.dotRows-1)))
	return rx, ry
}
