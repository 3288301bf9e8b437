package driftchat

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/driftchat/driftchat-sdk-go/driftchat/internal"

	"github.com/coder/websocket"
)

// Channel is the live channel manager: one persistent connection per
// authenticated session, multiplexing any number of logical room
// subscriptions over it. Only the channel mutates the subscription set;
// join and leave calls are applied in the order they are made.
//
// While the transport is down, Send rejects with ErrChannelDisconnected
// rather than queueing. Room membership recorded via JoinRoom survives a
// transport loss and is restored once per room after a successful
// reconnect.
type Channel struct {
	cfg    Config
	logger Logger
	disp   *dispatcher

	writeCh chan clientEvent
	stateCh chan StateEvent

	mu        sync.Mutex
	state     ConnState
	conn      *internal.Conn
	cancel    context.CancelFunc
	joined    map[string]struct{}
	connected bool // Connect was called successfully at least once
	closed    bool
}

// NewChannel constructs an unconnected channel. Most callers should go
// through Acquire or Client instead of owning a channel directly. A
// channel must be closed even if Connect was never called or failed.
func NewChannel(cfg Config) *Channel {
	size := cfg.SendQueueSize
	if size <= 0 {
		size = 16
	}
	c := &Channel{
		cfg:     cfg,
		logger:  noopLogger{},
		disp:    newDispatcher(),
		writeCh: make(chan clientEvent, size),
		stateCh: make(chan StateEvent, 16),
		joined:  make(map[string]struct{}),
	}
	// One goroutine delivers state transitions so subscribers observe
	// them in the order they happened.
	go func() {
		for ev := range c.stateCh {
			c.disp.fireState(ev)
		}
	}()
	return c
}

// SetLogger overrides the logger (optional).
func (c *Channel) SetLogger(l Logger) {
	if l != nil {
		c.logger = l
	}
}

// OnError registers a callback for asynchronous channel errors.
func (c *Channel) OnError(fn func(error)) { c.disp.setOnError(fn) }

// OnStateChanged registers a callback for connectivity transitions. The
// presentation layer typically uses this to show a disconnected indicator.
func (c *Channel) OnStateChanged(fn func(StateEvent)) { c.disp.setOnState(fn) }

// State returns the current connection state.
func (c *Channel) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the push backend with the configured credential and starts
// the read and write loops. It may be called at most once per channel;
// recovering from a transport loss is internal and never a new logical
// connect.
func (c *Channel) Connect(ctx context.Context) error {
	if err := c.cfg.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NewError(CodeNotConnected, "channel is closed")
	}
	if c.connected {
		c.mu.Unlock()
		return NewError(CodeInvalidConfig, "already connected")
	}
	c.setStateLocked(ConnConnecting, nil)
	c.mu.Unlock()

	conn, status, err := internal.Dial(ctx, c.cfg.URL, c.cfg.Token,
		c.cfg.HandshakeTimeout, c.cfg.ReadTimeout, c.cfg.WriteTimeout)
	if err != nil {
		c.mu.Lock()
		c.setStateLocked(ConnDisconnected, err)
		c.mu.Unlock()
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return WrapError(CodeAuthRejected, "backend rejected credential", err)
		}
		return WrapError(CodeTransient, "dial failed", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.startLoopsLocked(conn)
	c.setStateLocked(ConnConnected, nil)
	c.mu.Unlock()
	return nil
}

// JoinRoom declares interest in a room's events. Joining a room that is
// already joined is a no-op. If the transport is down, the membership is
// recorded and emitted once the reconnect completes.
func (c *Channel) JoinRoom(ctx context.Context, roomID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrNotConnected
	}
	if !c.connected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	if _, ok := c.joined[roomID]; ok {
		c.mu.Unlock()
		return nil
	}
	c.joined[roomID] = struct{}{}
	up := c.state == ConnConnected
	c.mu.Unlock()

	if !up {
		return nil // restored by the reconnect loop
	}
	return c.enqueue(ctx, clientEvent{Event: eventJoinRoom, Data: roomPayload{ChatID: roomID}})
}

// LeaveRoom withdraws interest in a room. Callers must leave before
// repurposing their subscription for a different room, so the backend
// never holds two simultaneous memberships for one client.
func (c *Channel) LeaveRoom(ctx context.Context, roomID string) error {
	c.mu.Lock()
	if _, ok := c.joined[roomID]; !ok {
		c.mu.Unlock()
		return nil
	}
	delete(c.joined, roomID)
	up := c.state == ConnConnected
	c.mu.Unlock()

	if !up {
		return nil
	}
	return c.enqueue(ctx, clientEvent{Event: eventLeaveRoom, Data: roomPayload{ChatID: roomID}})
}

// Bind routes inbound messages for a room to fn, replacing any previous
// binding. Events for rooms without a binding are dropped.
func (c *Channel) Bind(roomID string, fn func(Message)) { c.disp.bind(roomID, fn) }

// Unbind removes the message routing for a room.
func (c *Channel) Unbind(roomID string) { c.disp.unbind(roomID) }

// SendMessage emits a sendMessage event. Fire and forget: no ack is
// awaited; the backend echoes the stored message back over the channel,
// including to the sender.
func (c *Channel) SendMessage(ctx context.Context, p sendMessagePayload) error {
	return c.enqueue(ctx, clientEvent{Event: eventSendMessage, Data: p})
}

// Joined reports whether the room is currently in the membership set.
func (c *Channel) Joined(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.joined[roomID]
	return ok
}

// Close signals leaveRoom for every joined room, then shuts the connection
// down with a normal closure. The channel cannot be reused afterwards.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	loopCancel := c.cancel
	rooms := make([]string, 0, len(c.joined))
	for id := range c.joined {
		rooms = append(rooms, id)
	}
	c.joined = make(map[string]struct{})
	c.setStateLocked(ConnClosed, nil)
	close(c.stateCh)
	c.mu.Unlock()

	// Let the backend release per-room state (presence, read markers)
	// deterministically before the socket goes away. Best effort. The
	// leaves must be written before the loops are cancelled: cancelling
	// a pending read tears the whole connection down.
	if conn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		for _, id := range rooms {
			if err := conn.Write(ctx, clientEvent{Event: eventLeaveRoom, Data: roomPayload{ChatID: id}}); err != nil {
				c.logger.Debug("leave on close failed", map[string]any{"room": id, "error": err.Error()})
				break
			}
		}
		cancel()
	}
	if loopCancel != nil {
		loopCancel()
	}
	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "client close")
}

func (c *Channel) enqueue(ctx context.Context, ev clientEvent) error {
	c.mu.Lock()
	if c.closed || !c.connected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	if c.state != ConnConnected {
		c.mu.Unlock()
		return ErrChannelDisconnected
	}
	c.mu.Unlock()

	select {
	case c.writeCh <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startLoopsLocked spawns read/write loops for conn. Caller holds c.mu.
func (c *Channel) startLoopsLocked(conn *internal.Conn) {
	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.readLoop(runCtx, conn)
	go c.writeLoop(runCtx, conn)
}

func (c *Channel) readLoop(ctx context.Context, conn *internal.Conn) {
	for {
		var ev serverEvent
		if err := conn.Read(ctx, &ev); err != nil {
			if isExpectedDisconnect(ctx, err) {
				return
			}
			c.logger.Warn("read loop exit", map[string]any{"error": err.Error()})
			c.handleTransportLoss(conn, err)
			return
		}
		c.disp.dispatch(ev)
	}
}

func (c *Channel) writeLoop(ctx context.Context, conn *internal.Conn) {
	for {
		select {
		case ev := <-c.writeCh:
			if err := conn.Write(ctx, ev); err != nil {
				if isExpectedDisconnect(ctx, err) {
					return
				}
				c.logger.Warn("write loop exit", map[string]any{"error": err.Error()})
				c.handleTransportLoss(conn, err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleTransportLoss moves the channel into reconnection (or gives up) after
// an unexpected read/write failure. Only the first loop to observe the loss
// for the current conn proceeds.
func (c *Channel) handleTransportLoss(conn *internal.Conn, cause error) {
	c.mu.Lock()
	if c.closed || c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if !c.cfg.AutoReconnect {
		c.setStateLocked(ConnDisconnected, cause)
		c.mu.Unlock()
		return
	}
	c.setStateLocked(ConnReconnecting, cause)
	c.mu.Unlock()

	go c.reconnectLoop()
}

func (c *Channel) reconnectLoop() {
	delay := c.cfg.ReconnectInterval
	if delay <= 0 {
		delay = 2 * time.Second
	}
	tries := 0

	for {
		time.Sleep(delay)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		conn, status, err := internal.Dial(context.Background(), c.cfg.URL, c.cfg.Token,
			c.cfg.HandshakeTimeout, c.cfg.ReadTimeout, c.cfg.WriteTimeout)

		if err != nil {
			if status == http.StatusUnauthorized || status == http.StatusForbidden {
				c.mu.Lock()
				c.setStateLocked(ConnDisconnected, WrapError(CodeAuthRejected, "backend rejected credential on reconnect", err))
				c.mu.Unlock()
				return
			}
			tries++
			if c.cfg.MaxReconnectTries > 0 && tries >= c.cfg.MaxReconnectTries {
				c.mu.Lock()
				c.setStateLocked(ConnDisconnected, WrapError(CodeTransient, "reconnect attempts exhausted", err))
				c.mu.Unlock()
				return
			}
			c.logger.Debug("reconnect attempt failed", map[string]any{"attempt": tries, "error": err.Error()})
			delay *= 2
			if max := c.cfg.MaxReconnectDelay; max > 0 && delay > max {
				delay = max
			}
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close(websocket.StatusNormalClosure, "client close")
			return
		}
		c.conn = conn
		c.startLoopsLocked(conn)
		rooms := make([]string, 0, len(c.joined))
		for id := range c.joined {
			rooms = append(rooms, id)
		}
		c.mu.Unlock()

		// Restore prior subscriptions: exactly one joinRoom per room that
		// was a member before the loss, nothing more.
		rctx, rcancel := context.WithTimeout(context.Background(), 5*time.Second)
		for _, id := range rooms {
			if err := conn.Write(rctx, clientEvent{Event: eventJoinRoom, Data: roomPayload{ChatID: id}}); err != nil {
				c.logger.Warn("rejoin failed", map[string]any{"room": id, "error": err.Error()})
				break
			}
		}
		rcancel()

		c.mu.Lock()
		c.setStateLocked(ConnConnected, nil)
		c.mu.Unlock()
		return
	}
}

// setStateLocked transitions the connection state and notifies the
// subscriber. Caller holds c.mu.
func (c *Channel) setStateLocked(next ConnState, cause error) {
	if c.state == next {
		return
	}
	if c.closed && next != ConnClosed {
		return
	}
	old := c.state
	c.state = next
	select {
	case c.stateCh <- StateEvent{Old: old, New: next, Err: cause}:
	default:
		c.logger.Debug("state event dropped", map[string]any{"state": next.String()})
	}
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
