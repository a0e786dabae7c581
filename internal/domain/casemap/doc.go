// Package casemap owns defendant-to-defence-client identity resolution for a
// case and duplicate-defendant suppression.
//
// The stream identity is the case id. The defence-client identity is seeded
// from the first defendant seen for the case, and client creation is emitted
// as its own event so it stays independently idempotent of adding further
// defendants under the same client. A defendant id is mapped at most once;
// repeats are recorded as duplicate notices only.
package casemap
