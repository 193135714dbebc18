// Package push implements the websocket transport for the todo service
// event stream.
//
// # Overview
//
// Conn owns one long-lived connection for the lifetime of push mode,
// independent of any single bulk-operation run. It speaks a small JSON
// frame protocol: outbound "invoke" frames manage group membership scoped
// to a list id, inbound "event" frames deliver completion progress.
//
// # Lifecycle
//
//	conn := push.NewConn(client.EventsURL())
//	conn.SetHandlers(push.Handlers{OnProgress: onProgress})
//	err := conn.Connect(ctx)   // idempotent, backoff on dial
//	err = conn.Join(ctx, list) // leave-then-join on list change
//	...
//	_ = conn.Close()           // best-effort leave, detach handlers
//
// On a transport drop the Conn redials on its own with exponential backoff
// and jitter (Rican7/retry), re-joins the current group exactly once, and
// resumes reading. The OnReconnecting/OnReconnected/OnClosed callbacks are
// advisory status signals for the UI; they never change sync state.
//
// # Identifier Normalization
//
// The remote side does not pin the list id type on the wire; events may
// carry it as a JSON string or number. Ids are normalized to canonical
// strings when frames are decoded, so everything above this package
// compares plain strings.
package push
