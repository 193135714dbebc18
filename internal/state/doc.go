// Package state provides the thread-safe item store shared by the sync
// engine and the UI.
//
// # Overview
//
// Store is a mutex-guarded ordered collection of work items, the single
// source of truth for the view. The poll driver replaces its contents
// wholesale, the push driver flips individual completion flags, and the
// optimistic mutator applies and rolls back user edits. The UI only ever
// reads cloned snapshots.
//
// # Concurrency Model
//
// A readers-writer lock serializes every mutation: each one runs to
// completion before the next begins, so readers never observe a torn
// collection. Both Items and ReplaceAll copy the slice, preventing the UI
// or a rollback snapshot from aliasing live store memory.
//
// # Update Semantics
//
// Targeted mutators (SetCompleted, SetDescription, Remove, Replace) treat
// unknown ids as silent no-ops. A push event or poll refresh can race a
// concurrent deletion, and the loser of that race must not become an error.
//
// The zero value is ready to use:
//
//	store := &state.Store{}
package state
