package wire

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/liveplot/liveplot/internal/series"
	"github.com/liveplot/liveplot/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	maxFrame   = 1 << 16
)

// Client is the producer's end of a remote session. Send and SendEvent queue
// frames for a single writer goroutine; decoded control events from the
// consumer arrive on Events.
type Client struct {
	conn   *websocket.Conn
	send   chan Frame
	events chan session.Event

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to a remote consumer and delivers the session declaration.
// The consumer refuses the connection when it already has a live producer.
func Dial(ctx context.Context, url string, hello Hello) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == 409 {
			return nil, ErrSessionBusy
		}
		return nil, fmt.Errorf("wire: dial %s: %w", url, err)
	}

	c := &Client{
		conn:   conn,
		send:   make(chan Frame, 256),
		events: make(chan session.Event, 8),
		done:   make(chan struct{}),
	}
	c.send <- helloFrame(hello)
	go c.writePump()
	go c.readPump()
	return c, nil
}

// Send queues one sample for delivery.
func (c *Client) Send(s series.Sample) error {
	select {
	case c.send <- sampleFrame(s):
		return nil
	case <-c.done:
		return fmt.Errorf("wire: send on closed client")
	}
}

// SendEvent queues one control event for delivery.
func (c *Client) SendEvent(e session.Event) error {
	select {
	case c.send <- eventFrame(e):
		return nil
	case <-c.done:
		return fmt.Errorf("wire: send on closed client")
	}
}

// Events is the stream of control events from the consumer. Closed when the
// connection ends.
func (c *Client) Events() <-chan session.Event { return c.events }

// Close tears the connection down. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		c.conn.Close()
	})
	return nil
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case f := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := encodeFrame(f)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		close(c.events)
		c.Close()
	}()

	c.conn.SetReadLimit(maxFrame)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		f, err := decodeFrame(data)
		if err != nil || f.Type != frameEvent {
			continue
		}
		select {
		case c.events <- f.event():
		case <-c.done:
			return
		}
	}
}
