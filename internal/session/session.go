// Package session implements the consumer half of the streaming protocol: a
// single-goroutine loop that drains control and data channels at a fixed
// cadence, maintains the rolling sample buffer, recomputes the viewport, and
// hands drawable state to a Renderer.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/liveplot/liveplot/internal/ring"
	"github.com/liveplot/liveplot/internal/series"
	"github.com/liveplot/liveplot/internal/viewport"
)

var (
	// ErrTimedOut reports that no data arrived within the configured
	// timeout. A graceful, expected way for a session to end.
	ErrTimedOut = errors.New("session: timed out waiting for data")

	// ErrLineCountMismatch reports a sample whose line count differs from
	// the count established by the session's first sample.
	ErrLineCountMismatch = errors.New("session: sample line count mismatch")

	// ErrDataError reports a malformed or unstorable data message.
	ErrDataError = errors.New("session: malformed data message")
)

// State is the session lifecycle. Created and Running are live; the rest
// are terminal and absorbing.
type State int

const (
	StateCreated State = iota
	StateRunning
	StateTimedOut
	StateClosed
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateTimedOut:
		return "timed-out"
	case StateClosed:
		return "closed"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool { return s > StateRunning }

// Config is the resolved, immutable configuration of one session.
type Config struct {
	// Dims is the coordinate dimension of each line: 1 for time series,
	// 2 or 3 for spatial plots.
	Dims int

	// Lines pre-declares the line count; 0 infers it from the first sample.
	Lines int

	// Tail is the retention window. Negative retains everything.
	Tail time.Duration

	// Timeout ends the session when no data arrives for this long.
	// Negative disables the check.
	Timeout time.Duration

	// Refresh is the frame interval.
	Refresh time.Duration
}

const initialBufferCap = 1024

// Session drives one producer/consumer streaming relationship from start to
// terminal close. All fields are owned by the single consumer goroutine;
// the only synchronization is the channel pair itself.
type Session struct {
	cfg  Config
	conn Conn
	rend Renderer

	buf     *ring.Buffer[series.Sample]
	scalar  *viewport.Scalar
	spatial *viewport.Spatial
	win     window

	lines            int // established line count, 0 until first sample
	state            State
	lastRecv         time.Time
	lastBoundsChange time.Time

	now func() time.Time
}

// New creates a session over the given channel pair and renderer.
func New(cfg Config, conn Conn, rend Renderer) (*Session, error) {
	if cfg.Dims < 1 || cfg.Dims > 3 {
		return nil, fmt.Errorf("session: dims must be 1..3, got %d", cfg.Dims)
	}
	if cfg.Refresh <= 0 {
		return nil, fmt.Errorf("session: refresh interval must be positive, got %v", cfg.Refresh)
	}
	buf, err := ring.New[series.Sample](initialBufferCap)
	if err != nil {
		return nil, err
	}
	s := &Session{
		cfg:   cfg,
		conn:  conn,
		rend:  rend,
		buf:   buf,
		win:   window{tail: cfg.Tail},
		lines: cfg.Lines,
		now:   time.Now,
	}
	if cfg.Dims == 1 {
		s.scalar = viewport.NewScalar(cfg.Tail)
	} else {
		s.spatial = viewport.NewSpatial(cfg.Dims, cfg.Refresh)
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Run executes the frame loop until a terminal state is reached. It returns
// nil for a clean close, ErrTimedOut for a data timeout, and a wrapped
// protocol or renderer error when the session faults.
func (s *Session) Run(ctx context.Context) error {
	if s.state != StateCreated {
		return fmt.Errorf("session: Run on %s session", s.state)
	}
	s.state = StateRunning
	s.lastRecv = s.now()

	ticker := time.NewTicker(s.cfg.Refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.finish(StateClosed, nil)
		case <-s.rend.Closed():
			return s.finish(StateClosed, nil)
		case <-ticker.C:
			if err, done := s.tick(s.now()); done {
				return err
			}
		}
	}
}

// tick runs one frame: control drain, timeout check, data drain, window
// eviction, viewport recompute, draw. Returns done=true once the session has
// reached a terminal state.
func (s *Session) tick(now time.Time) (err error, done bool) {
	if s.state.Terminal() {
		return nil, true
	}

	// Control events first: a queued close request suppresses all data
	// processing this frame.
	for {
		select {
		case ev, ok := <-s.conn.Ctrl:
			if !ok {
				return s.finish(StateClosed, nil), true
			}
			switch ev {
			case EventRequestClose:
				return s.finish(StateClosed, nil), true
			case EventHeartbeat:
				s.lastRecv = now
			}
			continue
		default:
		}
		break
	}

	select {
	case <-s.rend.Closed():
		return s.finish(StateClosed, nil), true
	default:
	}

	if s.cfg.Timeout >= 0 && now.Sub(s.lastRecv) >= s.cfg.Timeout {
		s.send(EventTimedOut)
		return s.finish(StateTimedOut, ErrTimedOut), true
	}

	// Drain whatever data is queued right now; later arrivals wait for the
	// next frame so the tick never blocks.
	for {
		var smp series.Sample
		var ok bool
		select {
		case smp, ok = <-s.conn.Data:
			if !ok {
				return s.finish(StateClosed, nil), true
			}
		default:
		}
		if !ok {
			break
		}

		l, lerr := smp.Lines(s.cfg.Dims)
		if lerr != nil {
			s.send(EventDataError)
			return s.finish(StateFaulted, fmt.Errorf("%w: %v", ErrDataError, lerr)), true
		}
		if s.lines == 0 {
			s.lines = l
		} else if l != s.lines {
			s.send(EventLineCountMismatch)
			return s.finish(StateFaulted, fmt.Errorf("%w: expected %d lines, got %d", ErrLineCountMismatch, s.lines, l)), true
		}
		if aerr := s.buf.Append(smp); aerr != nil {
			s.send(EventDataError)
			return s.finish(StateFaulted, aerr), true
		}
		s.lastRecv = now
	}

	s.win.apply(s.buf, now)

	if ferr := s.frame(now); ferr != nil {
		return s.finish(StateFaulted, ferr), true
	}
	return nil, false
}

// frame recomputes the viewport from the buffered data and hands the
// resulting bounds and line data to the renderer.
func (s *Session) frame(now time.Time) error {
	if s.buf.Empty() {
		s.rend.DrawLines(nil)
		return s.rend.Present()
	}

	var redraw bool
	var bounds series.Bounds
	if s.scalar != nil {
		front, _ := s.buf.Front()
		redraw = s.scalar.Update(s.valueMatrix(), front.T.Sub(now).Seconds())
		bounds = s.scalar.Bounds()
	} else {
		redraw = s.spatial.Update(s.extents())
		bounds = s.spatial.Bounds()
	}

	s.rend.SetBounds(bounds)
	if redraw {
		s.lastBoundsChange = now
		s.rend.RequestFullRedraw()
	}
	s.rend.DrawLines(s.lineData(now))
	return s.rend.Present()
}

// valueMatrix snapshots the buffer as an n×L matrix for the scalar
// viewport. For 1-dimensional samples the coordinate slice already is the
// per-line row.
func (s *Session) valueMatrix() [][]float64 {
	n := s.buf.Len()
	vals := make([][]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = s.buf.At(i).Coords
	}
	return vals
}

// extents aggregates the per-axis [min, max] of every buffered coordinate
// for the spatial viewport.
func (s *Session) extents() []series.Range {
	ext := make([]series.Range, s.cfg.Dims)
	first := true
	n := s.buf.Len()
	for i := 0; i < n; i++ {
		smp := s.buf.At(i)
		for l := 0; l < s.lines; l++ {
			for d := 0; d < s.cfg.Dims; d++ {
				v := smp.At(l, d, s.cfg.Dims)
				if first || v < ext[d].Min {
					ext[d].Min = v
				}
				if first || v > ext[d].Max {
					ext[d].Max = v
				}
			}
			first = false
		}
	}
	return ext
}

// lineData builds the drawable per-line point lists, oldest first. Time
// series plots map sample times to seconds-ago on X; spatial plots emit raw
// coordinates.
func (s *Session) lineData(now time.Time) []series.LineData {
	n := s.buf.Len()
	lines := make([]series.LineData, s.lines)
	for l := range lines {
		lines[l].X = make([]float64, n)
		lines[l].Y = make([]float64, n)
		if s.cfg.Dims == 3 {
			lines[l].Z = make([]float64, n)
		}
	}
	for i := 0; i < n; i++ {
		smp := s.buf.At(i)
		for l := 0; l < s.lines; l++ {
			switch s.cfg.Dims {
			case 1:
				lines[l].X[i] = smp.T.Sub(now).Seconds()
				lines[l].Y[i] = smp.Coords[l]
			case 2:
				lines[l].X[i] = smp.At(l, 0, 2)
				lines[l].Y[i] = smp.At(l, 1, 2)
			case 3:
				lines[l].X[i] = smp.At(l, 0, 3)
				lines[l].Y[i] = smp.At(l, 1, 3)
				lines[l].Z[i] = smp.At(l, 2, 3)
			}
		}
	}
	return lines
}

// send emits an event to the producer without blocking; a full notify
// channel means the peer stopped listening.
func (s *Session) send(ev Event) {
	select {
	case s.conn.Notify <- ev:
	default:
	}
}

// finish moves the session to a terminal state, acknowledges with Closed,
// and releases the channel pair and renderer. Idempotent on terminal states.
func (s *Session) finish(state State, err error) error {
	if s.state.Terminal() {
		return err
	}
	s.state = state
	s.send(EventClosed)
	close(s.conn.Notify)
	if s.conn.Release != nil {
		s.conn.Release()
	}
	s.rend.Close()
	return err
}
