package push

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/jitter"
	"github.com/Rican7/retry/strategy"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout     = 5 * time.Second
	handshakeTimeout = 5 * time.Second
	backoffUnit      = 250 * time.Millisecond
	dialAttempts     = 4
	redialAttempts   = 8
)

// Handlers receive channel callbacks. All callbacks are advisory and are
// invoked without internal locks held; they may call back into the Conn.
type Handlers struct {
	OnProgress     func(ProgressEvent)
	OnClosed       func(error)
	OnReconnecting func(error)
	OnReconnected  func()
}

// Conn owns a single websocket connection to the todo service event
// stream, including automatic redial with backoff and re-joining the
// current group after a reconnect. At most one group is joined at a time.
//
// Connect, Join, Leave and Close are all idempotent. A Conn is not
// reusable after Close.
type Conn struct {
	url    string
	dialer *websocket.Dialer
	rng    *rand.Rand

	mu        sync.Mutex
	ctx       context.Context
	ws        *websocket.Conn
	handlers  Handlers
	group     string
	connected bool
	closed    bool
}

// NewConn builds a Conn for the given websocket URL. SetHandlers should be
// called before Connect.
func NewConn(url string) *Conn {
	return &Conn{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetHandlers installs the callback set. Passing the zero value detaches
// all handlers.
func (c *Conn) SetHandlers(h Handlers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = h
}

// Connected reports whether the transport currently has a live socket.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Group returns the currently joined group id, or "" when none is joined.
func (c *Conn) Group() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.group
}

// Connect dials the event stream with backoff. Calling Connect while
// already connected is a no-op. The context bounds the initial dial and
// is retained for later redials.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("push channel is closed")
	}
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.ctx = ctx
	c.mu.Unlock()

	ws, err := c.dial(ctx, dialAttempts)
	if err != nil {
		return fmt.Errorf("connect push channel: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = ws.Close()
		return fmt.Errorf("push channel is closed")
	}
	c.ws = ws
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(ws)
	return nil
}

// Join enters the logical group for the given list. Joining the current
// group again is a no-op; joining a different group leaves the old one
// first, so the connection never holds two memberships.
func (c *Conn) Join(ctx context.Context, listID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("push channel is closed")
	}
	if !c.connected {
		return fmt.Errorf("push channel is not connected")
	}
	if c.group == listID {
		return nil
	}
	if c.group != "" {
		// Best effort: a failed leave must not block the join.
		if err := c.writeFrame(frame{Type: frameInvoke, Target: targetLeaveGroup, ListID: c.group}); err != nil {
			log.Printf("push: leave group %q failed: %v", c.group, err)
		}
		c.group = ""
	}
	if err := c.writeFrame(frame{Type: frameInvoke, Target: targetJoinGroup, ListID: listID}); err != nil {
		return fmt.Errorf("join group %q: %w", listID, err)
	}
	c.group = listID
	return nil
}

// Leave exits the current group, if any. Failures are logged and ignored.
func (c *Conn) Leave(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.group == "" {
		return nil
	}
	if c.connected {
		if err := c.writeFrame(frame{Type: frameInvoke, Target: targetLeaveGroup, ListID: c.group}); err != nil {
			log.Printf("push: leave group %q failed: %v", c.group, err)
		}
	}
	c.group = ""
	return nil
}

// Close leaves the current group best-effort, closes the socket and
// detaches all handlers. Closing an already-closed Conn is a no-op.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.connected && c.group != "" {
		if err := c.writeFrame(frame{Type: frameInvoke, Target: targetLeaveGroup, ListID: c.group}); err != nil {
			log.Printf("push: leave group %q failed: %v", c.group, err)
		}
	}
	c.group = ""
	c.connected = false
	c.handlers = Handlers{}
	if c.ws != nil {
		_ = c.ws.Close()
		c.ws = nil
	}
	return nil
}

// writeFrame requires c.mu to be held.
func (c *Conn) writeFrame(f frame) error {
	if c.ws == nil {
		return fmt.Errorf("no socket")
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(f)
}

func (c *Conn) dial(ctx context.Context, attempts uint) (*websocket.Conn, error) {
	var ws *websocket.Conn
	err := retry.Retry(func(attempt uint) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			return err
		}
		ws = conn
		return nil
	},
		strategy.Limit(attempts),
		strategy.BackoffWithJitter(
			backoff.BinaryExponential(backoffUnit),
			jitter.Deviation(c.rng, 0.25),
		),
	)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// readLoop pumps inbound frames for one socket generation. It exits when
// the socket errors or is replaced; a transport error hands off to the
// reconnect path.
func (c *Conn) readLoop(ws *websocket.Conn) {
	for {
		var f frame
		if err := ws.ReadJSON(&f); err != nil {
			c.handleDrop(ws, err)
			return
		}
		c.dispatch(f)
	}
}

func (c *Conn) dispatch(f frame) {
	if f.Type != frameEvent || f.Target != targetProgress {
		return
	}
	ev, err := decodeProgress(f.Payload)
	if err != nil {
		log.Printf("push: %v", err)
		return
	}
	c.mu.Lock()
	handler := c.handlers.OnProgress
	c.mu.Unlock()
	if handler != nil {
		handler(ev)
	}
}

// handleDrop runs the transport's reconnect policy after a read failure:
// advisory "reconnecting" status, redial with backoff, re-join the current
// group at most once, then resume the read loop. If redial attempts are
// exhausted the connection is reported closed.
func (c *Conn) handleDrop(ws *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.closed || c.ws != ws {
		// Deliberate teardown or a stale generation; nothing to do.
		c.mu.Unlock()
		return
	}
	c.connected = false
	ctx := c.ctx
	reconnecting := c.handlers.OnReconnecting
	c.mu.Unlock()
	_ = ws.Close()

	if reconnecting != nil {
		reconnecting(cause)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	next, err := c.dial(ctx, redialAttempts)
	if err != nil {
		c.mu.Lock()
		closed := c.closed
		onClosed := c.handlers.OnClosed
		c.mu.Unlock()
		if !closed && onClosed != nil {
			onClosed(fmt.Errorf("push channel lost: %w", cause))
		}
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = next.Close()
		return
	}
	c.ws = next
	c.connected = true
	group := c.group
	var joinErr error
	if group != "" {
		// Fire and forget: a failed rejoin is surfaced, not fatal.
		joinErr = c.writeFrame(frame{Type: frameInvoke, Target: targetJoinGroup, ListID: group})
	}
	reconnected := c.handlers.OnReconnected
	c.mu.Unlock()

	if joinErr != nil {
		log.Printf("push: rejoin group %q failed: %v", group, joinErr)
	}
	if reconnected != nil {
		reconnected()
	}
	go c.readLoop(next)
}
