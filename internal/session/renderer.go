package session

import "github.com/liveplot/liveplot/internal/series"

// Renderer is the external drawing collaborator. The session hands it
// drawable state once per frame and otherwise knows nothing about how frames
// reach a screen.
//
// Call order within a frame is SetBounds / RequestFullRedraw as needed, then
// DrawLines, then Present. Closed is the renderer's only signal back into
// the pipeline: a request to shut the session down (for the bundled terminal
// renderer, the user pressing q). The session observes it at tick
// boundaries, never mid-frame.
type Renderer interface {
	// SetBounds updates the visible axis ranges for subsequent frames.
	SetBounds(series.Bounds)

	// RequestFullRedraw invalidates any cached background. Called when
	// bounds changed; updating line data alone is insufficient after an
	// axis change.
	RequestFullRedraw()

	// DrawLines replaces the drawable point lists, one entry per line.
	DrawLines([]series.LineData)

	// Present makes the current frame visible.
	Present() error

	// Closed is closed when the renderer wants the session to end.
	Closed() <-chan struct{}

	// Close releases renderer resources. Idempotent.
	Close() error
}
