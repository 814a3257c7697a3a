package wire

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/liveplot/liveplot/internal/series"
	"github.com/liveplot/liveplot/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Listener accepts producers over WebSocket and bridges each connection onto
// a fresh session channel pair. Exactly one producer is live at a time; a
// concurrent second dial is refused with 409.
type Listener struct {
	accept func(Hello, session.Conn)
	busy   atomic.Bool
	srv    *http.Server

	// OnReady, when set, is called with the bound address once the
	// listener accepts connections. Lets callers listen on port 0.
	OnReady func(addr net.Addr)
}

// NewListener creates a listener. accept is called once per producer with
// its declared configuration and the consumer end of the channel pair; it
// must run the session to completion and return when done.
func NewListener(accept func(Hello, session.Conn)) *Listener {
	return &Listener{accept: accept}
}

// ListenAndServe blocks serving producer connections on addr until Shutdown.
func (l *Listener) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/", l)
	l.srv = &http.Server{Addr: addr, Handler: mux}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if l.OnReady != nil {
		l.OnReady(ln.Addr())
	}
	err = l.srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight handlers.
func (l *Listener) Shutdown(ctx context.Context) error {
	if l.srv == nil {
		return nil
	}
	return l.srv.Shutdown(ctx)
}

// ServeHTTP upgrades one producer connection and runs its bridge until the
// session or the connection ends.
func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !l.busy.CompareAndSwap(false, true) {
		http.Error(w, ErrSessionBusy.Error(), http.StatusConflict)
		return
	}
	defer l.busy.Store(false)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxFrame)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The first frame must be the session declaration.
	_, data, err := conn.ReadMessage()
	if err != nil {
		return
	}
	f, err := decodeFrame(data)
	if err != nil || f.Type != frameHello {
		return
	}

	prod, sess := session.NewPipe()

	// Writer: forward consumer notifications back as event frames and keep
	// the connection alive with pings. A terminal event ends the bridge.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-prod.Notify:
				if !ok {
					conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
					conn.Close()
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				payload, perr := encodeFrame(eventFrame(ev))
				if perr != nil {
					continue
				}
				if werr := conn.WriteMessage(websocket.TextMessage, payload); werr != nil {
					conn.Close()
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if werr := conn.WriteMessage(websocket.PingMessage, nil); werr != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	var sessionDone sync.WaitGroup
	sessionDone.Add(1)
	go func() {
		defer sessionDone.Done()
		l.accept(*f.Hello, sess)
	}()

	// Reader: producer frames onto the channel pair. Closing the data
	// channel on disconnect ends the session cleanly.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		f, err := decodeFrame(data)
		if err != nil {
			// An undecodable message on the data path is a protocol
			// violation; an empty sample faults the session as a data
			// error and the notify path reports it back.
			prod.Data <- series.Sample{}
			continue
		}
		switch f.Type {
		case frameSample:
			prod.Data <- f.sample()
		case frameEvent:
			select {
			case prod.Ctrl <- f.event():
			default:
			}
		}
	}
	close(prod.Data)

	sessionDone.Wait()
	<-writerDone
}
