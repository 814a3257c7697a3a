package wire

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/liveplot/liveplot/internal/series"
	"github.com/liveplot/liveplot/internal/session"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestProducerConsumerBridge(t *testing.T) {
	helloCh := make(chan Hello, 1)
	samples := make(chan series.Sample, 16)

	l := NewListener(func(h Hello, conn session.Conn) {
		helloCh <- h
		for {
			select {
			case s, ok := <-conn.Data:
				if !ok {
					close(conn.Notify)
					return
				}
				samples <- s
			case ev := <-conn.Ctrl:
				if ev == session.EventRequestClose {
					conn.Notify <- session.EventClosed
					close(conn.Notify)
					return
				}
			}
		}
	})
	srv := httptest.NewServer(l)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, wsURL(srv), Hello{Dims: 1, TailMS: -1, TimeoutMS: 5000, RefreshMS: 100, Title: "bridge"})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	select {
	case h := <-helloCh:
		if h.Dims != 1 || h.Title != "bridge" || h.TailMS != -1 {
			t.Fatalf("hello = %+v", h)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("consumer never received hello")
	}

	base := time.Unix(100, 0)
	for i := 0; i < 3; i++ {
		smp := series.Sample{T: base.Add(time.Duration(i) * time.Second), Coords: []float64{float64(i)}}
		if err := c.Send(smp); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		select {
		case s := <-samples:
			if s.Coords[0] != float64(i) {
				t.Fatalf("sample %d carried %v, want %d", i, s.Coords[0], i)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("sample %d never arrived", i)
		}
	}

	if err := c.SendEvent(session.EventRequestClose); err != nil {
		t.Fatalf("SendEvent: %v", err)
	}
	select {
	case ev, ok := <-c.Events():
		if !ok || ev != session.EventClosed {
			t.Fatalf("event = %v (ok=%v), want EventClosed", ev, ok)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("close acknowledgment never arrived")
	}
}

func TestSecondDialRefused(t *testing.T) {
	release := make(chan struct{})
	l := NewListener(func(h Hello, conn session.Conn) {
		<-release
		close(conn.Notify)
		for range conn.Data {
		}
	})
	srv := httptest.NewServer(l)
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	first, err := Dial(ctx, wsURL(srv), Hello{Dims: 1, RefreshMS: 100})
	if err != nil {
		t.Fatalf("first Dial: %v", err)
	}
	defer first.Close()

	// The listener flips its busy flag before completing the handshake, so
	// by the time the first Dial returns a second one is deterministically
	// refused.
	if _, err := Dial(ctx, wsURL(srv), Hello{Dims: 1, RefreshMS: 100}); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("second Dial err = %v, want ErrSessionBusy", err)
	}
}
