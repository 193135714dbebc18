// Package app provides the orchestration layer for the Tally application.
//
// # Overview
//
// This is the composition root: it loads configuration and preferences,
// builds the HTTP client and (in push mode) the event channel, wires the
// sync engine, performs the initial refresh, and runs the TUI until the
// context cancels.
//
// # Initialization Order
//
//  1. config.Load + flag overrides, prefs.Load; the sync mode resolves
//     flag > config file > saved preference > default
//  2. todo.NewClient for the remote service
//  3. sync.New with the configured mode's driver
//  4. engine.Start (push mode connects and joins the list's group)
//  5. engine.Refresh to populate the store before the first frame
//  6. ui runs; engine.Close tears everything down on exit
//
// # Error Handling
//
// Fatal: unparsable config, unknown sync mode, bad server address.
// Recoverable (logged, app continues): initial refresh failure, push
// connect failure. The status board surfaces both and the transport's
// reconnect policy keeps retrying.
package app
