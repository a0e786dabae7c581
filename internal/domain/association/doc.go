// Package association owns the representation-association state machine for a
// single defendant: which organisation currently represents them, whether a
// statutory representation order has locked the record, and the legal aid
// status history per organisation.
//
// The stream identity is the defendant id. At most one organisation is
// associated at any point in replayed state; a representation-order lock
// always clears the association until the record is unlocked. The rep-order
// command path overrides an ordinary association unconditionally because
// statutory orders take precedence.
package association
