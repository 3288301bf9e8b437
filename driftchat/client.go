package driftchat

import (
	"context"
	"sync"
	"time"

	"github.com/driftchat/driftchat-sdk-go/driftchat/rest"
)

// Client is the SDK entry point: it composes the REST collaborator, a
// lease on the shared live channel, and the currently open room session.
type Client struct {
	cfg    Config
	logger Logger

	// REST gives direct access to the collaborator endpoints (friends,
	// group creation, profile) consumed by the core's sibling forms.
	REST *rest.Client

	onError func(error)
	onState func(StateEvent)

	mu      sync.Mutex
	lease   *Lease
	out     *Outbound
	current *Session
}

// NewClient constructs a client from cfg. Use DefaultConfig as a starting
// point.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:    cfg,
		logger: noopLogger{},
		REST:   rest.NewClient(cfg.RESTBaseURL, cfg.Token),
	}
}

// SetLogger overrides the logger (optional).
func (c *Client) SetLogger(l Logger) {
	if l != nil {
		c.logger = l
	}
}

// OnError registers a callback for asynchronous channel errors.
// Call before Connect.
func (c *Client) OnError(fn func(error)) { c.onError = fn }

// OnStateChanged registers a callback for live-channel connectivity
// transitions. Call before Connect.
func (c *Client) OnStateChanged(fn func(StateEvent)) { c.onState = fn }

// SelfID returns the authenticated user's id decoded from the credential.
func (c *Client) SelfID() (string, error) {
	return SelfID(c.cfg.Token)
}

// Connect acquires the shared live channel for this credential. Two
// clients with the same token share one connection.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lease != nil {
		return NewError(CodeInvalidConfig, "already connected")
	}

	lease, err := Acquire(ctx, c.cfg)
	if err != nil {
		return err
	}
	ch := lease.Channel()
	ch.SetLogger(c.logger)
	if c.onError != nil {
		ch.OnError(c.onError)
	}
	if c.onState != nil {
		ch.OnStateChanged(c.onState)
	}

	c.lease = lease
	c.out = NewOutbound(ch, c.REST)
	c.logger.Debug("channel acquired", map[string]any{"lease": lease.ID()})
	return nil
}

// ConnState returns the live channel's connectivity state.
func (c *Client) ConnState() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lease == nil {
		return ConnDisconnected
	}
	return c.lease.Channel().State()
}

// OpenRoom opens a session for roomID. Any previously open session is
// closed first, with its leaveRoom issued before the new join, so the
// backend never holds two room memberships for this client. The returned
// session is Active on success, or Error with the cause preserved.
func (c *Client) OpenRoom(ctx context.Context, roomID string) (*Session, error) {
	c.mu.Lock()
	lease := c.lease
	prev := c.current
	c.mu.Unlock()
	if lease == nil {
		return nil, ErrNotConnected
	}

	if prev != nil {
		if err := prev.Close(ctx); err != nil {
			c.logger.Warn("close previous room", map[string]any{"room": prev.RoomID(), "error": err.Error()})
		}
	}

	ch := lease.Channel()
	sess := newSession(roomID, ch, NewHistoryLoader(c.REST), c.logger)

	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()

	if err := sess.Open(ctx); err != nil {
		return sess, err
	}
	return sess, nil
}

// CloseRoom closes the currently open session, if any.
func (c *Client) CloseRoom(ctx context.Context) error {
	c.mu.Lock()
	sess := c.current
	c.current = nil
	c.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Close(ctx)
}

// Friends returns the user's contacts with presence, converted into the
// core model.
func (c *Client) Friends(ctx context.Context) ([]User, error) {
	raw, err := c.REST.GetFriends(ctx)
	if err != nil {
		return nil, mapRESTError(err)
	}
	out := make([]User, 0, len(raw))
	for _, u := range raw {
		out = append(out, userFromREST(u))
	}
	return out, nil
}

// SendText emits a text message to a room over the live channel.
func (c *Client) SendText(ctx context.Context, roomID, content string) error {
	out, err := c.outbound()
	if err != nil {
		return err
	}
	return out.SendText(ctx, roomID, content)
}

// SendFile uploads a file and emits the resulting file message.
func (c *Client) SendFile(ctx context.Context, roomID string, f File) error {
	out, err := c.outbound()
	if err != nil {
		return err
	}
	return out.SendFile(ctx, roomID, f)
}

func (c *Client) outbound() (*Outbound, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out == nil {
		return nil, ErrNotConnected
	}
	return c.out, nil
}

// Close tears down the open session and releases the channel lease. The
// underlying connection closes once the last client with this credential
// has released it.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.mu.Lock()
	sess := c.current
	lease := c.lease
	c.current = nil
	c.lease = nil
	c.out = nil
	c.mu.Unlock()

	if sess != nil {
		_ = sess.Close(ctx)
	}
	if lease != nil {
		return lease.Release()
	}
	return nil
}
