// Package command defines the command envelope, the command-type registry, and
// the decision value returned by aggregate deciders.
//
// Commands are validated and normalized before a decider sees them. A decider
// is a pure function of reconstructed aggregate state and the command; its
// decision is an ordered batch of events. Business-rule violations appear in
// the batch as failure events, so a well-formed command never produces a Go
// error from a decider. Go errors are reserved for programming and
// integration faults that must abort the invocation before any append.
package command
