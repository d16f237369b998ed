package model

// EventKind identifies the type of inbound chat event
type EventKind string

const (
	EventStart  EventKind = "start"  // /start command
	EventSelect EventKind = "select" // Button press carrying an option payload
	EventText   EventKind = "text"   // Free-text message
)

// Event is a single inbound turn from a messaging transport
type Event struct {
	Kind    EventKind
	Payload string // Selected option or message text; empty for start
}

// Valid reports whether the kind is one the dialogue understands
func (k EventKind) Valid() bool {
	switch k {
	case EventStart, EventSelect, EventText:
		return true
	}
	return false
}
