package viewport

import (
	"testing"
	"time"

	"github.com/liveplot/liveplot/internal/series"
)

// column builds an n×1 value matrix from a single line's samples.
func column(ys ...float64) [][]float64 {
	vals := make([][]float64, len(ys))
	for i, y := range ys {
		vals[i] = []float64{y}
	}
	return vals
}

func TestScalarRescalesWhenMajorityOfRecentDataEscapes(t *testing.T) {
	v := NewScalar(10 * time.Second)
	// Establish bounds around [0, 10].
	v.bounds.Axes[0] = series.Range{Min: 0, Max: 10}

	// 20 samples: newest quarter is the last 5; 3 of 5 (60%) exceed yMax.
	ys := make([]float64, 20)
	for i := range ys {
		ys[i] = 5
	}
	ys[17], ys[18], ys[19] = 25, 30, 35

	if !v.Update(column(ys...), -1) {
		t.Fatal("Update() = false, want rescale with 60% of recent data out of bounds")
	}
	got := v.Bounds().Axes[0]
	if got.Max < 35 {
		t.Fatalf("yMax = %v after rescale, want >= data max 35", got.Max)
	}
	if got.Min > 5 {
		t.Fatalf("yMin = %v after rescale, want <= data min 5", got.Min)
	}
}

func TestScalarHoldsWhenMinorityOfRecentDataEscapes(t *testing.T) {
	v := NewScalar(10 * time.Second)
	v.bounds.Axes[0] = series.Range{Min: 0, Max: 10}

	// Newest quarter is 5 samples; 2 of 5 (40%) exceed yMax.
	ys := make([]float64, 20)
	for i := range ys {
		ys[i] = 5
	}
	ys[18], ys[19] = 25, 30

	if v.Update(column(ys...), -1) {
		t.Fatal("Update() = true, want no rescale with only 40% of recent data out of bounds")
	}
	if got := v.Bounds().Axes[0]; got != (series.Range{Min: 0, Max: 10}) {
		t.Fatalf("bounds changed without rescale: %+v", got)
	}
}

func TestScalarIgnoresOldOutOfBoundsData(t *testing.T) {
	v := NewScalar(10 * time.Second)
	v.bounds.Axes[0] = series.Range{Min: 0, Max: 10}

	// All escaped values sit in the oldest three quarters.
	ys := make([]float64, 20)
	for i := range ys {
		if i < 10 {
			ys[i] = 100
		} else {
			ys[i] = 5
		}
	}
	if v.Update(column(ys...), -1) {
		t.Fatal("Update() = true, want no rescale when only stale data is out of bounds")
	}
}

func TestScalarChecksEveryLineIndependently(t *testing.T) {
	v := NewScalar(10 * time.Second)
	v.bounds.Axes[0] = series.Range{Min: 0, Max: 10}

	// Line 0 stays inside; line 1 fully escapes in the newest quarter.
	vals := make([][]float64, 8)
	for i := range vals {
		vals[i] = []float64{5, 5}
	}
	vals[6] = []float64{5, 40}
	vals[7] = []float64{5, 50}

	if !v.Update(vals, -1) {
		t.Fatal("Update() = false, want rescale when one line's recent data escapes")
	}
}

func TestScalarUnboundedTimeAxisExtendsInSteps(t *testing.T) {
	v := NewScalar(-1)
	t0 := v.Bounds().Time.Min

	if !v.Update(column(1, 2), t0-0.5) {
		t.Fatal("Update() = false, want redraw when oldest sample precedes the time axis")
	}
	if got := v.Bounds().Time.Min; got != t0-timeAxisStep {
		t.Fatalf("time min = %v, want %v", got, t0-timeAxisStep)
	}
}

func TestScalarFixedWindowNeverExtendsTimeAxis(t *testing.T) {
	v := NewScalar(10 * time.Second)
	v.bounds.Axes[0] = series.Range{Min: 0, Max: 10}
	if v.Update(column(5, 5, 5, 5), -1000) {
		t.Fatal("Update() = true, want fixed window to ignore ancient timestamps")
	}
	if got := v.Bounds().Time; got != (series.Range{Min: -10, Max: 0}) {
		t.Fatalf("time axis = %+v, want [-10, 0]", got)
	}
}

func extents2(x, y series.Range) []series.Range { return []series.Range{x, y} }

func TestSpatialSevereGrowthRescalesImmediately(t *testing.T) {
	v := NewSpatial(2, 100*time.Millisecond)
	// Seed a settled viewport with side length 10.
	v.Update(extents2(series.Range{Min: 0, Max: 10}, series.Range{Min: 0, Max: 5}))
	side := v.SideLength()
	if side != 11 {
		t.Fatalf("seed side length = %v, want 11", side)
	}

	// Growth past side + 3*margin (11 + 3.3 = 14.3) triggers in-frame.
	grown := series.Range{Min: 0, Max: side + 3*0.1*side + 0.1}
	if !v.Update(extents2(grown, series.Range{Min: 0, Max: 5})) {
		t.Fatal("Update() = false, want immediate rescale on severe growth")
	}
	b := v.Bounds()
	margin := 0.1 * grown.Width()
	want := series.Range{Min: grown.Min - margin, Max: grown.Max + margin}
	if b.Axes[0] != want || b.Axes[1] != want {
		t.Fatalf("bounds = %+v, want both axes %+v", b.Axes, want)
	}
}

func TestSpatialMarginalGrowthWaitsOutHysteresis(t *testing.T) {
	v := NewSpatial(2, 100*time.Millisecond) // 10 Hz
	v.Update(extents2(series.Range{Min: 0, Max: 10}, series.Range{Min: 0, Max: 5}))
	side := v.SideLength()

	// Just above one margin but below the severe threshold.
	grown := series.Range{Min: 0, Max: side + 0.1*side + 0.01}
	ext := extents2(grown, series.Range{Min: 0, Max: 5})

	for frame := 1; frame <= 9; frame++ {
		if v.Update(ext) {
			t.Fatalf("Update() = true on frame %d, want rescale only on frame 10", frame)
		}
	}
	if !v.Update(ext) {
		t.Fatal("Update() = false on 10th consecutive qualifying frame, want rescale")
	}
}

func TestSpatialShrinkWellInsideFrameEventuallyTightens(t *testing.T) {
	v := NewSpatial(2, 100*time.Millisecond)
	v.Update(extents2(series.Range{Min: 0, Max: 100}, series.Range{Min: 0, Max: 50}))
	side := v.SideLength()

	shrunk := extents2(series.Range{Min: 40, Max: 40 + 0.5*side}, series.Range{Min: 40, Max: 60})
	for frame := 1; frame <= 9; frame++ {
		if v.Update(shrunk) {
			t.Fatalf("Update() = true on frame %d, want hysteresis delay on shrink", frame)
		}
	}
	if !v.Update(shrunk) {
		t.Fatal("Update() = false on 10th shrunk frame, want tightening rescale")
	}
	if v.SideLength() >= side {
		t.Fatalf("side length = %v after tightening, want < %v", v.SideLength(), side)
	}
}

func TestSpatialRecoveryClearsStaleCounter(t *testing.T) {
	v := NewSpatial(2, 100*time.Millisecond)
	v.Update(extents2(series.Range{Min: 0, Max: 10}, series.Range{Min: 0, Max: 5}))
	side := v.SideLength()

	grown := extents2(series.Range{Min: 0, Max: side + 0.1*side + 0.01}, series.Range{Min: 0, Max: 5})
	inside := extents2(series.Range{Min: 0, Max: side * 0.9}, series.Range{Min: 0, Max: 5})

	// 5 stale frames, then the data comes back inside: counter must reset.
	for frame := 0; frame < 5; frame++ {
		v.Update(grown)
	}
	if v.Update(inside) {
		t.Fatal("Update() = true on in-bounds frame")
	}
	for frame := 1; frame <= 9; frame++ {
		if v.Update(grown) {
			t.Fatalf("Update() = true on frame %d after reset, want full 10-frame wait", frame)
		}
	}
	if !v.Update(grown) {
		t.Fatal("Update() = false on 10th frame after reset, want rescale")
	}
}

func TestSpatialPicksLongestAxis(t *testing.T) {
	v := NewSpatial(3, 100*time.Millisecond)
	ext := []series.Range{
		{Min: 0, Max: 2},
		{Min: -8, Max: 12}, // longest
		{Min: 1, Max: 3},
	}
	if !v.Update(ext) {
		t.Fatal("Update() = false on first data, want initial rescale")
	}
	b := v.Bounds()
	margin := 0.1 * 20.0
	want := series.Range{Min: -8 - margin, Max: 12 + margin}
	for i, ax := range b.Axes {
		if ax != want {
			t.Fatalf("axis %d = %+v, want %+v", i, ax, want)
		}
	}
}
