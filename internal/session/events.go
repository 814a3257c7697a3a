package session

// Event is a control message exchanged out-of-band from samples. The set is
// closed: anything else on the control path is a protocol violation.
type Event int

const (
	// EventHeartbeat keeps an otherwise idle session alive.
	EventHeartbeat Event = iota + 1
	// EventRequestClose asks the consumer to shut down gracefully.
	EventRequestClose
	// EventTimedOut reports that no data arrived within the timeout window.
	EventTimedOut
	// EventClosed acknowledges that the consumer has shut down.
	EventClosed
	// EventLineCountMismatch reports a sample inconsistent with the line
	// count established by the session's first sample.
	EventLineCountMismatch
	// EventDataError reports a malformed or unstorable data message.
	EventDataError
)

func (e Event) String() string {
	switch e {
	case EventHeartbeat:
		return "heartbeat"
	case EventRequestClose:
		return "request-close"
	case EventTimedOut:
		return "timed-out"
	case EventClosed:
		return "closed"
	case EventLineCountMismatch:
		return "line-count-mismatch"
	case EventDataError:
		return "data-error"
	default:
		return "unknown"
	}
}

// Terminal reports whether receiving this event ends the session from the
// producer's point of view.
func (e Event) Terminal() bool {
	switch e {
	case EventTimedOut, EventClosed, EventLineCountMismatch, EventDataError:
		return true
	}
	return false
}
