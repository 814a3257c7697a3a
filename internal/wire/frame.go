// Package wire is the WebSocket transport for running producer and consumer
// in separate processes. Frames are JSON: a hello frame declares the session
// configuration, sample frames carry data points, event frames carry control
// events in either direction.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/liveplot/liveplot/internal/series"
	"github.com/liveplot/liveplot/internal/session"
)

var (
	// ErrBadFrame reports a frame that does not decode to a known type.
	ErrBadFrame = errors.New("wire: malformed frame")

	// ErrSessionBusy reports a dial refused because the listener already
	// has a live producer.
	ErrSessionBusy = errors.New("wire: a producer is already connected")
)

const (
	frameHello  = "hello"
	frameSample = "sample"
	frameEvent  = "event"
)

// Frame is the single message envelope on the wire. Exactly one payload
// field is set, selected by Type.
type Frame struct {
	Type   string  `json:"type"`
	Hello  *Hello  `json:"hello,omitempty"`
	Sample *Sample `json:"sample,omitempty"`
	Event  string  `json:"event,omitempty"`
}

// Hello is the producer's session declaration, sent once before any data.
// Durations travel as milliseconds; negative keeps the local convention
// (unbounded tail, disabled timeout).
type Hello struct {
	Dims       int      `json:"dims"`
	Lines      int      `json:"lines,omitempty"`
	TailMS     int64    `json:"tail_ms"`
	TimeoutMS  int64    `json:"timeout_ms"`
	RefreshMS  int64    `json:"refresh_ms"`
	Title      string   `json:"title,omitempty"`
	LineStyles []string `json:"line_styles,omitempty"`
	Statics    []Static `json:"statics,omitempty"`
}

// Config converts the declaration into a session configuration.
func (h Hello) Config() session.Config {
	return session.Config{
		Dims:    h.Dims,
		Lines:   h.Lines,
		Tail:    time.Duration(h.TailMS) * time.Millisecond,
		Timeout: time.Duration(h.TimeoutMS) * time.Millisecond,
		Refresh: time.Duration(h.RefreshMS) * time.Millisecond,
	}
}

// Sample is one data point on the wire.
type Sample struct {
	UnixNano int64     `json:"t"`
	Coords   []float64 `json:"coords"`
}

// Static is the wire shape of a background annotation, discriminated by
// Kind.
type Static struct {
	Kind   string  `json:"kind"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Style  string  `json:"style,omitempty"`
}

func encodeStatic(s series.Static) Static {
	switch v := s.(type) {
	case series.Point:
		return Static{Kind: "point", X: v.X, Y: v.Y, Style: v.Style}
	case series.Circle:
		return Static{Kind: "circle", X: v.X, Y: v.Y, Radius: v.Radius, Style: v.Style}
	case series.Rectangle:
		return Static{Kind: "rectangle", X: v.X, Y: v.Y, Width: v.Width, Height: v.Height, Style: v.Style}
	case series.VLine:
		return Static{Kind: "vline", X: v.X, Style: v.Style}
	case series.HLine:
		return Static{Kind: "hline", Y: v.Y, Style: v.Style}
	}
	return Static{}
}

func (d Static) decode() (series.Static, error) {
	switch d.Kind {
	case "point":
		return series.Point{X: d.X, Y: d.Y, Style: d.Style}, nil
	case "circle":
		return series.Circle{X: d.X, Y: d.Y, Radius: d.Radius, Style: d.Style}, nil
	case "rectangle":
		return series.Rectangle{X: d.X, Y: d.Y, Width: d.Width, Height: d.Height, Style: d.Style}, nil
	case "vline":
		return series.VLine{X: d.X, Style: d.Style}, nil
	case "hline":
		return series.HLine{Y: d.Y, Style: d.Style}, nil
	}
	return nil, fmt.Errorf("%w: unknown static kind %q", ErrBadFrame, d.Kind)
}

// EncodeStatics converts annotations to their wire shape for a hello frame.
func EncodeStatics(statics []series.Static) []Static {
	out := make([]Static, 0, len(statics))
	for _, s := range statics {
		out = append(out, encodeStatic(s))
	}
	return out
}

// DecodeStatics is the inverse of EncodeStatics.
func DecodeStatics(dtos []Static) ([]series.Static, error) {
	out := make([]series.Static, 0, len(dtos))
	for _, d := range dtos {
		s, err := d.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

var eventNames = map[session.Event]string{
	session.EventHeartbeat:         "heartbeat",
	session.EventRequestClose:      "request-close",
	session.EventTimedOut:          "timed-out",
	session.EventClosed:            "closed",
	session.EventLineCountMismatch: "line-count-mismatch",
	session.EventDataError:         "data-error",
}

func parseEvent(name string) (session.Event, error) {
	for ev, n := range eventNames {
		if n == name {
			return ev, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown event %q", ErrBadFrame, name)
}

func helloFrame(h Hello) Frame { return Frame{Type: frameHello, Hello: &h} }

func sampleFrame(s series.Sample) Frame {
	return Frame{Type: frameSample, Sample: &Sample{UnixNano: s.T.UnixNano(), Coords: s.Coords}}
}

func eventFrame(e session.Event) Frame {
	return Frame{Type: frameEvent, Event: eventNames[e]}
}

func encodeFrame(f Frame) ([]byte, error) { return json.Marshal(f) }

func decodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	switch f.Type {
	case frameHello:
		if f.Hello == nil {
			return Frame{}, fmt.Errorf("%w: hello frame without payload", ErrBadFrame)
		}
	case frameSample:
		if f.Sample == nil {
			return Frame{}, fmt.Errorf("%w: sample frame without payload", ErrBadFrame)
		}
	case frameEvent:
		if _, err := parseEvent(f.Event); err != nil {
			return Frame{}, err
		}
	default:
		return Frame{}, fmt.Errorf("%w: unknown frame type %q", ErrBadFrame, f.Type)
	}
	return f, nil
}

func (f Frame) sample() series.Sample {
	return series.Sample{T: time.Unix(0, f.Sample.UnixNano), Coords: f.Sample.Coords}
}

func (f Frame) event() session.Event {
	ev, _ := parseEvent(f.Event)
	return ev
}
