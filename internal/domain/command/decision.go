package command

import "github.com/hmcts/cpp-context-defence-sub003/internal/domain/event"

// Decision represents the pure outcome of handling a command: an ordered batch
// of events to append. Domain rejections are failure events inside the batch,
// so callers receive them through the same channel as successes. An empty
// decision means the command was deliberately swallowed (e.g. an automatic
// unassignment sweep for a case that was never assigned).
type Decision struct {
	Events []event.Event
}

// Accept returns a decision that emits the provided events.
func Accept(events ...event.Event) Decision {
	return Decision{Events: append([]event.Event(nil), events...)}
}

// None returns an empty decision. Reserved for the few paths where silence,
// not a failure event, is the intended outcome.
func None() Decision {
	return Decision{}
}
