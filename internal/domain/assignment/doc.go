// Package assignment owns per-assignee case-assignment state: which cases an
// advocate (or a defence organisation acting as assignee) currently holds.
//
// The stream identity is the assignee id. Deciders are pure, so directory
// facts about the assignee (user resolution, organisation, group membership,
// prosecution roles, retained organisation access) are resolved by the service
// layer into the command payload before the decider runs; the decider then
// applies the ordered validation chain against those facts and its own
// replayed state.
package assignment
