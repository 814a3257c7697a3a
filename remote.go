package liveplot

import (
	"context"
	"fmt"
	"net"

	"github.com/liveplot/liveplot/internal/session"
	"github.com/liveplot/liveplot/internal/term"
	"github.com/liveplot/liveplot/internal/wire"
)

// ServeOption configures the consumer process.
type ServeOption func(*server)

type server struct {
	newRenderer func(cfg term.Config) (session.Renderer, error)
	ready       func(url string)
}

// withServeRenderer overrides the renderer factory. Used by tests.
func withServeRenderer(f func(cfg term.Config) (session.Renderer, error)) ServeOption {
	return func(s *server) { s.newRenderer = f }
}

// withServeReady reports the bound ws:// URL once the listener accepts
// connections. Used by tests, where the listen address carries port 0.
func withServeReady(f func(url string)) ServeOption {
	return func(s *server) { s.ready = f }
}

// ListenAndServe runs the consumer side of the two-process mode: it accepts
// one producer at a time on addr, renders its session in this terminal, and
// waits for the next producer when the session ends. Producers connect with
// WithRemote. Blocks until the listener fails.
func ListenAndServe(addr string, opts ...ServeOption) error {
	srv := &server{
		newRenderer: func(cfg term.Config) (session.Renderer, error) {
			r := term.New(cfg)
			if err := r.Start(); err != nil {
				return nil, err
			}
			return r, nil
		},
	}
	for _, o := range opts {
		o(srv)
	}

	l := wire.NewListener(func(h wire.Hello, conn session.Conn) {
		srv.serveSession(h, conn)
	})
	if srv.ready != nil {
		l.OnReady = func(a net.Addr) { srv.ready("ws://" + a.String()) }
	}
	return l.ListenAndServe(addr)
}

// serveSession runs one producer's session to completion. Failures before
// the session loop starts surface as a closed Notify channel, which the
// bridge translates into a dropped connection.
func (s *server) serveSession(h wire.Hello, conn session.Conn) error {
	fail := func() {
		close(conn.Notify)
		if conn.Release != nil {
			conn.Release()
		}
	}

	statics, err := wire.DecodeStatics(h.Statics)
	if err != nil {
		fail()
		return err
	}

	cfg := h.Config()
	rend, err := s.newRenderer(term.Config{
		Title:      h.Title,
		Dims:       h.Dims,
		LineStyles: h.LineStyles,
		Statics:    statics,
		Refresh:    cfg.Refresh,
	})
	if err != nil {
		fail()
		return fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}

	sess, err := session.New(cfg, conn, rend)
	if err != nil {
		rend.Close()
		fail()
		return fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}
	return sess.Run(context.Background())
}
