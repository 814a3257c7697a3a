package viewport

import (
	"math"
	"time"

	"github.com/liveplot/liveplot/internal/series"
)

// Spatial tracks a single square (or cubic) side length shared across all
// spatial axes, preserving aspect ratio for 2D/3D plots.
//
// Rescaling is hysteretic in time rather than in data fraction: a frame
// where the data has grown past the margin, or shrunk well inside the frame,
// only marks the viewport as stale. The actual rescale happens either
// immediately when the excess is severe, or once the stale condition has
// held for a full second of wall clock, bounding both rescale churn and
// worst-case viewport staleness.
type Spatial struct {
	dims    int
	refresh time.Duration

	side        float64
	bounds      series.Bounds
	needRedraw  bool
	staleFrames int
}

// NewSpatial creates a spatial viewport for dims spatial axes (2 or 3) at
// the given frame refresh interval.
func NewSpatial(dims int, refresh time.Duration) *Spatial {
	return &Spatial{
		dims:    dims,
		refresh: refresh,
		bounds:  series.Bounds{Axes: make([]series.Range, dims)},
	}
}

// Bounds returns the current visible extent.
func (v *Spatial) Bounds() series.Bounds { return v.bounds.Clone() }

// SideLength returns the current shared side length.
func (v *Spatial) SideLength() float64 { return v.side }

// Update re-evaluates the bounds against the per-axis data extents and
// reports whether a full redraw is required. extents holds the [min, max]
// of every buffered coordinate, one entry per spatial axis.
func (v *Spatial) Update(extents []series.Range) bool {
	if len(extents) != v.dims {
		return false
	}

	longest := extents[0]
	for _, e := range extents[1:] {
		if e.Width() > longest.Width() {
			longest = e
		}
	}
	minSide := math.Abs(longest.Width())
	curMargin := 0.1 * v.side

	if minSide > v.side+curMargin || minSide < 0.75*v.side {
		v.needRedraw = true
		v.staleFrames++
		// Data has blown well past the frame; skip the wait.
		if minSide > v.side+3*curMargin {
			v.rescale(longest, minSide)
			return true
		}
	} else {
		v.needRedraw = false
		v.staleFrames = 0
	}

	if v.needRedraw && float64(v.staleFrames)*v.refresh.Seconds() >= 1.0 {
		v.rescale(longest, minSide)
		return true
	}
	return false
}

// rescale sets every spatial axis to the longest extent plus a 10% margin,
// keeping axes square, and clears the stale state.
func (v *Spatial) rescale(longest series.Range, minSide float64) {
	margin := 0.1 * minSide
	for i := range v.bounds.Axes {
		v.bounds.Axes[i] = series.Range{Min: longest.Min - margin, Max: longest.Max + margin}
	}
	v.side = minSide + margin
	v.needRedraw = false
	v.staleFrames = 0
}
