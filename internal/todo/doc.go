// Package todo provides an HTTP client for the todo service API.
//
// The package is split into two files:
//
//   - client.go: HTTP client implementation and request handling
//   - types.go: data structures mirroring the API schema
//
// # Client Usage
//
//	client, err := todo.NewClient("127.0.0.1:8475")
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//	items, err := client.FetchItems(ctx, "inbox")
//
// # API Endpoints
//
//   - GET    /api/lists                               all lists
//   - GET    /api/lists/{list}/items                  full item collection
//   - POST   /api/lists/{list}/items                  create item
//   - PATCH  /api/lists/{list}/items/{item}           partial update
//   - DELETE /api/lists/{list}/items/{item}           delete item
//   - POST   /api/lists/{list}/items/complete-all     bulk completion (202)
//   - POST   /api/lists/{list}/items/sample           sample data generation
//
// The complete-all trigger is accepted-but-pending: the server queues the
// operation and the client observes its effects through polling or the push
// channel at /api/events (see the push package).
//
// # Request Handling
//
// All requests use context for cancellation, set Accept and User-Agent
// headers, and share a 5 second timeout. Errors are wrapped with context
// about what failed; HTTP 4xx/5xx responses become descriptive errors.
// The client never retries; retry policy belongs to the sync layer.
//
// The Client struct is safe for concurrent use.
package todo
