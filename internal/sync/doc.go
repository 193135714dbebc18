// Package sync implements the dual-channel reconciliation engine that
// keeps the local item store consistent with the remote todo service.
//
// # Overview
//
// Three change sources act on the store:
//
//   - Mutator: optimistic user edits. Local change first, remote call
//     second, exact rollback on failure.
//   - Coordinator: the bulk "complete all" state machine
//     (Idle -> Running(mode) -> Idle), observed asynchronously by exactly
//     one driver per configured mode.
//   - Drivers: pollDriver refetches the collection on a timer; pushDriver
//     maps inbound event-stream progress onto the store. Both funnel
//     completion into the coordinator's single finish rule, so the
//     transition fires identically (and exactly once) no matter which
//     channel detected it.
//
// Engine composes the pieces and is the only type the UI talks to.
//
// # Ordering
//
// Every store mutation runs to completion under the store's lock before
// the next begins. An optimistic mutation's local effect is visible before
// its remote call is issued. Push-sourced single-item updates apply
// against the live store rather than a captured copy, so a poll
// ReplaceAll racing a push event cannot resurrect stale state.
//
// # Errors
//
// Failures surface as one human-readable status per category (fetch,
// mutate, bulk, connection) on the Board; the newest status wins and a
// later success clears its own category. Guard rejections (mutating
// during an exclusive operation, starting a bulk run with nothing to
// complete) are silent no-ops, not errors. No failure escapes a
// component boundary uncaught.
package sync
