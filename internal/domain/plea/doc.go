// Package plea owns per-defendant plea-allocation record versioning.
//
// The stream identity is the defendant id. The case URN is cached from the
// first allocation event and stamped onto subsequent updates so callers never
// resupply it. Every allocation also emits a derived review-task request with
// a fixed one-day SLA; the task is a side-effect event, not a separate
// command.
package plea
