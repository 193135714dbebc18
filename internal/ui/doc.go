// Package ui provides the terminal user interface for Tally.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. The model renders snapshots of the sync
// engine's item store and bulk-operation state; it never mutates items
// directly. Every user intent (toggle, add, edit, delete, complete all,
// refresh, sample data, list switch) becomes a command that calls the
// engine off the update loop and reports back with a message.
//
// # Event Flow
//
//  1. A one-second tick re-snapshots the engine for the steady state.
//  2. The engine's wake channel delivers out-of-band changes (poll
//     refreshes, push events, reconnect statuses) as engineChangedMsg.
//  3. Key presses dispatch engine commands; opDoneMsg re-snapshots.
//
// Failures never travel through messages: the engine records them on its
// status board and the next snapshot shows the active status line.
//
// # Modes
//
// The model is modal: browsing, inline add/edit (bubbles textinput), and
// a yes/no confirmation before delete. While an inline edit is active the
// engine rejects other mutations of that item; saving with an unchanged
// or blank value cancels the edit without a remote call.
package ui
