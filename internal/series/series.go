// Package series holds the value types that flow through the plotting
// pipeline: timestamped samples, axis bounds, and the per-line point lists
// handed to a renderer.
package series

import (
	"fmt"
	"time"
)

// Sample is one timestamped observation across all lines of a plot.
//
// Coords is line-major: the coordinates of line l occupy
// Coords[l*dims : (l+1)*dims]. For 1-dimensional (time series) plots each
// line contributes a single value and T supplies the time axis; for 2D/3D
// plots T is used only for tail windowing.
type Sample struct {
	T      time.Time
	Coords []float64
}

// Lines returns the number of lines this sample carries for the given
// dimension count, or an error if the coordinate count doesn't divide evenly.
func (s Sample) Lines(dims int) (int, error) {
	if dims < 1 || dims > 3 {
		return 0, fmt.Errorf("sample: dims must be 1..3, got %d", dims)
	}
	if len(s.Coords) == 0 || len(s.Coords)%dims != 0 {
		return 0, fmt.Errorf("sample: %d coordinates not divisible into %d-dimensional points", len(s.Coords), dims)
	}
	return len(s.Coords) / dims, nil
}

// At returns coordinate d of line l.
func (s Sample) At(l, d, dims int) float64 {
	return s.Coords[l*dims+d]
}

// Range is a closed [Min, Max] interval on one axis.
type Range struct {
	Min float64
	Max float64
}

// Width returns Max - Min.
func (r Range) Width() float64 { return r.Max - r.Min }

// Contains reports whether v lies inside the interval.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Bounds is the visible extent of a plot: the time axis plus one range per
// spatial axis. For 1D plots Axes holds the single value axis; for 2D/3D it
// holds X, Y[, Z]. Only the viewport mutates Bounds; the renderer reads it.
type Bounds struct {
	Time Range
	Axes []Range
}

// Clone returns a deep copy.
func (b Bounds) Clone() Bounds {
	c := Bounds{Time: b.Time}
	if b.Axes != nil {
		c.Axes = make([]Range, len(b.Axes))
		copy(c.Axes, b.Axes)
	}
	return c
}

// LineData is the drawable point list for a single line. For time series
// plots X holds seconds-ago values (negative up to 0) and Y the sample
// values; for spatial plots X/Y[/Z] hold the coordinates. Slices are index
// aligned and ordered oldest to newest.
type LineData struct {
	X []float64
	Y []float64
	Z []float64
}
