// Package viewport decides when and how far the visible axis ranges of a
// plot expand or contract as new data arrives. Both variants apply
// hysteresis so a single outlier or a momentary boundary crossing does not
// force a rescale (and the full background redraw that comes with one).
//
// The scalar and spatial variants use deliberately different hysteresis
// schemes; they are separate algorithms, not two tunings of one.
package viewport

import (
	"math"
	"time"

	"github.com/liveplot/liveplot/internal/series"
)

// Fraction of the newest quarter of samples that must fall outside the
// current value range before the scalar viewport rescales.
const scalarRescaleFraction = 0.5

// Step, in seconds, by which an unbounded time axis extends.
const timeAxisStep = 5.0

// Scalar tracks a value range against a sliding time axis for 1-dimensional
// (time series) plots. A non-negative window gives a fixed [-window, 0] time
// axis; a negative window means the axis expands to keep all data visible.
type Scalar struct {
	window time.Duration
	bounds series.Bounds
}

// NewScalar creates a scalar viewport for the given time window.
func NewScalar(window time.Duration) *Scalar {
	v := &Scalar{
		window: window,
		bounds: series.Bounds{Axes: []series.Range{{}}},
	}
	if window >= 0 {
		v.bounds.Time = series.Range{Min: -window.Seconds(), Max: 0}
	} else {
		v.bounds.Time = series.Range{Min: -timeAxisStep * 2, Max: 0}
	}
	return v
}

// Bounds returns the current visible extent.
func (v *Scalar) Bounds() series.Bounds { return v.bounds.Clone() }

// Update re-evaluates the bounds against the buffered data and reports
// whether a full redraw is required. vals is the n×L matrix of buffered
// values, oldest first; oldestAgo is the seconds-ago position of the oldest
// buffered sample (zero or negative).
//
// The rescale rule only considers the newest quarter of samples: data that
// has nearly scrolled off the left edge should not keep the old range alive,
// and a lone outlier among recent points should not force a rescale either.
// Only when at least half of some line's recent points sit outside the
// current range does the range snap to the true extent plus a 10% margin.
func (v *Scalar) Update(vals [][]float64, oldestAgo float64) bool {
	redraw := false
	if len(vals) > 0 {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range vals {
			for _, y := range row {
				lo = math.Min(lo, y)
				hi = math.Max(hi, y)
			}
		}

		if v.maxFractionOutside(vals) >= scalarRescaleFraction {
			margin := 0.1 * (hi - lo)
			v.bounds.Axes[0] = series.Range{Min: lo - margin, Max: hi + margin}
			redraw = true
		}
	}

	if v.window < 0 && oldestAgo < v.bounds.Time.Min {
		v.bounds.Time.Min -= timeAxisStep
		redraw = true
	}
	return redraw
}

// maxFractionOutside returns, across lines, the largest fraction of the
// newest quarter of samples lying outside the current value range.
func (v *Scalar) maxFractionOutside(vals [][]float64) float64 {
	n := len(vals)
	start := (3*n + 3) / 4 // ceil(3n/4)
	if start >= n {
		start = n - 1
	}
	recent := vals[start:]

	cur := v.bounds.Axes[0]
	maxFrac := 0.0
	for l := range vals[0] {
		outside := 0
		for _, row := range recent {
			if !cur.Contains(row[l]) {
				outside++
			}
		}
		if frac := float64(outside) / float64(len(recent)); frac > maxFrac {
			maxFrac = frac
		}
	}
	return maxFrac
}
