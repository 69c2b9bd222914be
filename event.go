package chatstream

// Event is a sealed interface representing one classified frame of the
// response stream. Exactly one Event is produced per logical line.
// Transport errors never appear as events; they terminate the session.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventDelta carries an incremental fragment of assistant text.
type EventDelta struct {
	Text string
}

func (EventDelta) event() {}

// EventDone signals that the server finished the response.
type EventDone struct{}

func (EventDone) event() {}

// EventIgnored is produced for blank keep-alive lines, unknown lines and
// data lines whose payload is malformed or carries no delta.
type EventIgnored struct{}

func (EventIgnored) event() {}

// Interface compliance checks.
var (
	_ Event = EventDelta{}
	_ Event = EventDone{}
	_ Event = EventIgnored{}
)
