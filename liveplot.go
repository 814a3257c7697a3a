// Package liveplot plots live numeric streams in the terminal. A Plot is
// the producer's handle: it feeds timestamped samples into a consumer that
// maintains a rolling window, rescales its viewport, and renders Braille
// line plots at a fixed cadence. The consumer runs in-process by default or
// in a separate process over WebSocket (see ListenAndServe and WithRemote).
package liveplot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/liveplot/liveplot/internal/series"
	"github.com/liveplot/liveplot/internal/session"
	"github.com/liveplot/liveplot/internal/term"
	"github.com/liveplot/liveplot/internal/wire"
)

var (
	// ErrChannelUnavailable reports that the session's transport could not
	// be established.
	ErrChannelUnavailable = errors.New("liveplot: session channel unavailable")

	// ErrNotStarted reports a data or control call before Start.
	ErrNotStarted = errors.New("liveplot: plot not started")

	// ErrPlotClosed reports a call on a plot whose session has ended.
	ErrPlotClosed = errors.New("liveplot: plot closed")
)

// ErrTimedOut is the session's data-timeout error, re-exported so producers
// can match it on Err without importing internal packages.
var ErrTimedOut = session.ErrTimedOut

const (
	defaultTimeout = 10 * time.Second
	defaultRefresh = 100 * time.Millisecond
	closeGrace     = 2 * time.Second
)

// Plot is a producer handle on one plotting session.
type Plot struct {
	mu      sync.Mutex
	cfg     session.Config
	title   string
	styles  []string
	statics []series.Static
	remote  string

	newRenderer func() (session.Renderer, error)

	prod    session.Producer
	client  *wire.Client
	started bool
	closed  bool

	done     chan struct{}
	doneOnce sync.Once
	err      error
}

// TimeSeries creates a plot of one value per line against time.
func TimeSeries(opts ...Option) *Plot { return newPlot(1, opts) }

// XY creates a two-dimensional spatial plot.
func XY(opts ...Option) *Plot { return newPlot(2, opts) }

// XYZ creates a three-dimensional spatial plot.
func XYZ(opts ...Option) *Plot { return newPlot(3, opts) }

func newPlot(dims int, opts []Option) *Plot {
	p := &Plot{
		cfg: session.Config{
			Dims:    dims,
			Tail:    -1, // retain everything
			Timeout: defaultTimeout,
			Refresh: defaultRefresh,
		},
		done: make(chan struct{}),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Start establishes the session and begins rendering. In local mode it
// spawns the consumer loop and terminal renderer in-process; with WithRemote
// it dials the consumer process instead.
func (p *Plot) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPlotClosed
	}
	if p.started {
		return fmt.Errorf("liveplot: Start called twice")
	}

	if p.remote != "" {
		if err := p.startRemote(); err != nil {
			return err
		}
	} else {
		if err := p.startLocal(); err != nil {
			return err
		}
	}
	p.started = true
	return nil
}

func (p *Plot) startLocal() error {
	rend, err := p.makeRenderer()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}

	prod, conn := session.NewPipe()
	sess, err := session.New(p.cfg, conn, rend)
	if err != nil {
		rend.Close()
		return fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}

	p.prod = prod
	go func() {
		p.finish(sess.Run(context.Background()))
	}()
	return nil
}

func (p *Plot) startRemote() error {
	client, err := wire.Dial(context.Background(), p.remote, wire.Hello{
		Dims:       p.cfg.Dims,
		Lines:      p.cfg.Lines,
		TailMS:     durationMS(p.cfg.Tail),
		TimeoutMS:  durationMS(p.cfg.Timeout),
		RefreshMS:  durationMS(p.cfg.Refresh),
		Title:      p.title,
		LineStyles: p.styles,
		Statics:    wire.EncodeStatics(p.statics),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}
	p.client = client

	go func() {
		for ev := range client.Events() {
			if ev.Terminal() {
				p.finish(eventError(ev))
				client.Close()
				return
			}
		}
		// Connection dropped without a terminal event.
		p.finish(fmt.Errorf("%w: connection lost", ErrChannelUnavailable))
	}()
	return nil
}

func (p *Plot) makeRenderer() (session.Renderer, error) {
	if p.newRenderer != nil {
		return p.newRenderer()
	}
	r := term.New(term.Config{
		Title:      p.title,
		Dims:       p.cfg.Dims,
		LineStyles: p.styles,
		Statics:    p.statics,
		Refresh:    p.cfg.Refresh,
	})
	if err := r.Start(); err != nil {
		return nil, err
	}
	return r, nil
}

// Update appends one sample to a time-series plot, one value per line.
func (p *Plot) Update(ys ...float64) error {
	if p.cfg.Dims != 1 {
		return fmt.Errorf("liveplot: Update on a %d-dimensional plot", p.cfg.Dims)
	}
	return p.send(series.Sample{T: time.Now(), Coords: append([]float64(nil), ys...)})
}

// UpdateXY appends one sample to an XY plot, one point per line.
func (p *Plot) UpdateXY(pts ...[2]float64) error {
	if p.cfg.Dims != 2 {
		return fmt.Errorf("liveplot: UpdateXY on a %d-dimensional plot", p.cfg.Dims)
	}
	coords := make([]float64, 0, len(pts)*2)
	for _, pt := range pts {
		coords = append(coords, pt[0], pt[1])
	}
	return p.send(series.Sample{T: time.Now(), Coords: coords})
}

// UpdateXYZ appends one sample to an XYZ plot, one point per line.
func (p *Plot) UpdateXYZ(pts ...[3]float64) error {
	if p.cfg.Dims != 3 {
		return fmt.Errorf("liveplot: UpdateXYZ on a %d-dimensional plot", p.cfg.Dims)
	}
	coords := make([]float64, 0, len(pts)*3)
	for _, pt := range pts {
		coords = append(coords, pt[0], pt[1], pt[2])
	}
	return p.send(series.Sample{T: time.Now(), Coords: coords})
}

// send holds the mutex across the channel send so finish cannot close the
// producer end of the pipe mid-send. The pipe always drains its input, so
// the send cannot block the lock for long.
func (p *Plot) send(smp series.Sample) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return ErrNotStarted
	}
	select {
	case <-p.done:
		return ErrPlotClosed
	default:
	}

	if p.client != nil {
		return p.client.Send(smp)
	}
	p.prod.Data <- smp
	return nil
}

// Heartbeat keeps an idle session alive without plotting anything.
func (p *Plot) Heartbeat() error {
	return p.sendEvent(session.EventHeartbeat)
}

func (p *Plot) sendEvent(ev session.Event) error {
	p.mu.Lock()
	started, client := p.started, p.client
	p.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	select {
	case <-p.done:
		return ErrPlotClosed
	default:
	}

	if client != nil {
		return client.SendEvent(ev)
	}
	select {
	case p.prod.Ctrl <- ev:
	default:
		// Control queue full means the consumer stopped draining.
	}
	return nil
}

// Close asks the consumer to shut down and waits briefly for the
// acknowledgment. Safe to call on an already-ended session.
func (p *Plot) Close() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	client := p.client
	p.mu.Unlock()

	select {
	case <-p.done:
	default:
		if client != nil {
			client.SendEvent(session.EventRequestClose)
		} else {
			select {
			case p.prod.Ctrl <- session.EventRequestClose:
			default:
			}
		}
	}

	select {
	case <-p.done:
	case <-time.After(closeGrace):
	}
	if client != nil {
		client.Close()
	}
	return p.Err()
}

// Done is closed when the session reaches a terminal state.
func (p *Plot) Done() <-chan struct{} { return p.done }

// Err reports why the session ended: nil for a clean close, ErrTimedOut for
// a data timeout, or a wrapped protocol error for a fault. Meaningful only
// after Done is closed.
func (p *Plot) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// finish records the terminal result and, in local mode, closes the
// producer end of the data pipe so its goroutine can exit.
func (p *Plot) finish(err error) {
	p.doneOnce.Do(func() {
		p.mu.Lock()
		p.err = err
		close(p.done)
		if p.client == nil && p.prod.Data != nil {
			close(p.prod.Data)
		}
		p.mu.Unlock()
	})
}

func eventError(ev session.Event) error {
	switch ev {
	case session.EventTimedOut:
		return session.ErrTimedOut
	case session.EventLineCountMismatch:
		return session.ErrLineCountMismatch
	case session.EventDataError:
		return session.ErrDataError
	}
	return nil
}

// durationMS converts to wire milliseconds, preserving the sign convention
// (any negative duration stays negative on the wire).
func durationMS(d time.Duration) int64 {
	if d < 0 {
		return -1
	}
	return d.Milliseconds()
}
