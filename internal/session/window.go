package session

import (
	"time"

	"github.com/liveplot/liveplot/internal/ring"
	"github.com/liveplot/liveplot/internal/series"
)

// window is the tail-retention policy: samples older than tail relative to
// now are evicted from the front of the buffer. A negative tail disables
// eviction entirely, leaving ring growth (and its capacity ceiling) as the
// only limit.
type window struct {
	tail time.Duration
}

// apply evicts expired samples. The comparison is strictly greater-than: a
// sample exactly tail old survives, and with tail == 0 only the single most
// recent sample remains.
func (w window) apply(buf *ring.Buffer[series.Sample], now time.Time) {
	if w.tail < 0 {
		return
	}
	for !buf.Empty() {
		front, err := buf.Front()
		if err != nil {
			return
		}
		if now.Sub(front.T) <= w.tail {
			return
		}
		buf.PopFront()
	}
}
