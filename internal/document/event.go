// Package document provides the immutable document model for SCXML charts:
// states, transitions, data declarations, and the derived lookup/hierarchy
// tables built once at validation time and shared across chart instances.
package document

// Origin distinguishes events raised internally (onentry/onexit/transition
// actions, done events) from events delivered by an external caller.
type Origin int

const (
	Internal Origin = iota
	External
)

func (o Origin) String() string {
	if o == Internal {
		return "internal"
	}
	return "external"
}

// Event is a value object consumed one at a time by the interpreter.
type Event struct {
	Name   string
	Data   any
	Origin Origin
}

// NewExternalEvent constructs an externally-originated event.
func NewExternalEvent(name string, data any) Event {
	return Event{Name: name, Data: data, Origin: External}
}

// NewInternalEvent constructs an internally-raised event.
func NewInternalEvent(name string, data any) Event {
	return Event{Name: name, Data: data, Origin: Internal}
}

// ErrorExecutionPrefix is the event family for runtime execution failures (spec
// error taxonomy tier 2/3): assign failures, foreach over non-iterables,
// failed data initialization.
const ErrorExecutionPrefix = "error.execution"

// ErrorCommunicationPrefix is the event family for failed <send> delivery
// to an external target (taxonomy tier 4).
const ErrorCommunicationPrefix = "error.communication"

// ErrorData is the payload carried by error.execution / error.communication
// events: at minimum a type tag and a human-readable reason.
type ErrorData struct {
	Type   string
	Reason string
	// DataID is set when the error originates from a <data> initialization
	// failure, naming the data element whose value was left empty.
	DataID string
}

// DoneStatePrefix names the family of internally-raised events signaling
// that a compound state's final child, or every region of a parallel
// state, has been reached (a feature supplementing the distilled spec,
// grounded in the teacher's statechart_done_events_test.go).
const DoneStatePrefix = "done.state."
