// Package event defines the canonical event envelope and event-type registry
// used by the defence domain write path.
//
// Events are immutable business facts emitted by accepted decisions, including
// domain rejections, which are recorded as failure events rather than errors so
// the journal carries a complete audit trail of refused commands. The registry
// enforces payload validity before persistence assigns sequence numbers.
//
// A stable event contract is the foundation for replay, read-model
// projections, and downstream reactors that depend on the same semantic names.
package event
