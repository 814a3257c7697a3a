package session

import (
	"sync"

	"github.com/liveplot/liveplot/internal/series"
)

// Conn is the consumer's end of a session's channel pair: an in-order data
// stream plus a low-volume control stream in each direction. The consumer
// owns Notify and closes it when the session reaches a terminal state, and
// calls Release at that point so the pipe stops queueing data it will never
// read.
type Conn struct {
	Data   <-chan series.Sample
	Ctrl   <-chan Event
	Notify chan<- Event

	// Release abandons the data pipe. After it the pipe discards queued
	// and late-arriving samples; the pipe's goroutine exits once the
	// producer closes its end. Idempotent.
	Release func()
}

// Producer is the producer's end of the pair. The producer closes Data when
// it is done sending; that is what ultimately reaps the pipe.
type Producer struct {
	Data   chan<- series.Sample
	Ctrl   chan<- Event
	Notify <-chan Event
}

// ctrlDepth bounds the low-volume control channels. Control traffic is a
// handful of events per session; a full channel means the peer is gone, and
// senders drop rather than block.
const ctrlDepth = 8

// NewPipe creates the channel pair connecting a producer to a session. The
// data channel is unbounded: producer throughput is decoupled from render
// cadence, and the ring buffer's capacity ceiling is the only backstop.
func NewPipe() (Producer, Conn) {
	stop := make(chan struct{})
	var stopOnce sync.Once

	dataIn, dataOut := unbounded[series.Sample](stop)
	ctrl := make(chan Event, ctrlDepth)
	notify := make(chan Event, ctrlDepth)

	p := Producer{Data: dataIn, Ctrl: ctrl, Notify: notify}
	c := Conn{
		Data:    dataOut,
		Ctrl:    ctrl,
		Notify:  notify,
		Release: func() { stopOnce.Do(func() { close(stop) }) },
	}
	return p, c
}

// unbounded returns the two ends of an elastic FIFO channel. A goroutine
// shuttles values through an in-memory queue so sends never block; closing
// the input flushes the queue and then closes the output. Closing stop
// abandons the queue instead: the goroutine discards input until the
// producer closes its end, so neither side can strand it.
func unbounded[T any](stop <-chan struct{}) (chan<- T, <-chan T) {
	in := make(chan T, 16)
	out := make(chan T, 16)

	go func() {
		defer close(out)
		var queue []T
		for {
			var next T
			var downstream chan T
			if len(queue) > 0 {
				next = queue[0]
				downstream = out
			}
			select {
			case v, ok := <-in:
				if !ok {
					for _, item := range queue {
						select {
						case out <- item:
						case <-stop:
							return
						}
					}
					return
				}
				queue = append(queue, v)
			case downstream <- next:
				queue = queue[1:]
			case <-stop:
				// The consumer is gone. Keep accepting so the producer
				// never blocks, discard everything, exit when it closes.
				for range in {
				}
				return
			}
		}
	}()

	return in, out
}
