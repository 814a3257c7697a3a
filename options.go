package liveplot

import (
	"time"

	"github.com/liveplot/liveplot/internal/series"
	"github.com/liveplot/liveplot/internal/session"
)

// Option configures a plot before Start.
type Option func(*Plot)

// WithTailLength sets how much history stays on screen. Samples older than
// the tail are evicted; negative retains everything. The default is
// unbounded.
func WithTailLength(d time.Duration) Option {
	return func(p *Plot) { p.cfg.Tail = d }
}

// WithTimeout ends the session when no data or heartbeat arrives for this
// long. Negative disables the check. The default is 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(p *Plot) { p.cfg.Timeout = d }
}

// WithRefreshRate sets the render cadence in frames per second. The default
// is 10.
func WithRefreshRate(hz float64) Option {
	return func(p *Plot) {
		if hz > 0 {
			p.cfg.Refresh = time.Duration(float64(time.Second) / hz)
		}
	}
}

// WithLineStyles assigns ANSI colors to lines, in order, and pre-declares
// the line count. Without it, colors come from a default palette and the
// first sample fixes the line count.
func WithLineStyles(colors ...string) Option {
	return func(p *Plot) {
		p.styles = append([]string(nil), colors...)
		p.cfg.Lines = len(colors)
	}
}

// WithStatics adds fixed annotations drawn into the plot background.
func WithStatics(statics ...Static) Option {
	return func(p *Plot) { p.statics = append(p.statics, statics...) }
}

// WithTitle sets the plot's frame title.
func WithTitle(title string) Option {
	return func(p *Plot) { p.title = title }
}

// WithRemote makes Start dial a consumer process at url (ws://host:port)
// instead of rendering in-process. The consumer side runs ListenAndServe.
func WithRemote(url string) Option {
	return func(p *Plot) { p.remote = url }
}

// withRenderer overrides the renderer factory. Used by tests and by the
// remote listener.
func withRenderer(f func() (session.Renderer, error)) Option {
	return func(p *Plot) { p.newRenderer = f }
}

// Static is a fixed background annotation. See Point, Circle, Rectangle,
// VLine and HLine.
type Static = series.Static

// Point marks a single position.
type Point = series.Point

// Circle is an outline circle around a center.
type Circle = series.Circle

// Rectangle is an axis-aligned rectangle anchored at its lower-left corner.
type Rectangle = series.Rectangle

// VLine is a full-height vertical line at X.
type VLine = series.VLine

// HLine is a full-width horizontal line at Y.
type HLine = series.HLine
