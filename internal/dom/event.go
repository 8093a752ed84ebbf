package dom

import "golang.org/x/net/html"

const ClickEvent = "click"

type Listener func(e *Event)

type Event struct {
	Bubbles       bool
	Cancelable    bool
	CurrentTarget *html.Node
	Target        *html.Node
	Type          string

	defaultPrevented bool
	stopped          bool
}

// NewEvent returns a bubbling, cancelable event without payload.
func NewEvent(typ string) *Event {
	return &Event{
		Bubbles:    true,
		Cancelable: true,
		Type:       typ,
	}
}

func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation keeps the event from reaching further ancestors. Listeners on
// the current node still run.
func (e *Event) StopPropagation() {
	e.stopped = true
}
