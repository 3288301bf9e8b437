package driftchat

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// roomChannel is the slice of the live channel a session drives.
type roomChannel interface {
	JoinRoom(ctx context.Context, roomID string) error
	LeaveRoom(ctx context.Context, roomID string) error
	Bind(roomID string, fn func(Message))
	Unbind(roomID string)
}

// backlogLoader is the slice of the history loader a session drives.
type backlogLoader interface {
	Load(ctx context.Context, roomID string) (*History, error)
}

// Session binds one open room to one live-channel subscription and one
// backlog fetch, and exposes the merged timeline. Lifecycle:
//
//	Idle → Loading → Active → Closing → Closed
//
// with Error terminal from Loading. A session is created per room-open
// and never reused; switching rooms closes the old session before the
// new one joins, so at most one room subscription is live at a time.
type Session struct {
	roomID string
	ch     roomChannel
	loader backlogLoader
	logger Logger

	mu       sync.Mutex
	state    SessionState
	room     Room
	timeline *Timeline
	err      error
}

func newSession(roomID string, ch roomChannel, loader backlogLoader, logger Logger) *Session {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Session{
		roomID:   roomID,
		ch:       ch,
		loader:   loader,
		logger:   logger,
		state:    SessionIdle,
		timeline: NewTimeline(),
	}
}

// RoomID returns the room this session is bound to.
func (s *Session) RoomID() string { return s.roomID }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Room returns the room metadata fetched at open. Zero until Active.
func (s *Session) Room() Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// Err returns the failure that moved the session to Error, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Snapshot returns the ordered timeline for rendering. Nil once closed.
func (s *Session) Snapshot() []Message {
	s.mu.Lock()
	tl := s.timeline
	s.mu.Unlock()
	if tl == nil {
		return nil
	}
	return tl.Snapshot()
}

// Open runs Idle→Loading: it binds the room's inbound events, then joins
// the room and fetches the backlog concurrently. When both complete the
// timeline is seeded with the backlog and the session is Active. If the
// session was closed while loading (a rapid room switch), the late result
// is discarded instead of applied.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != SessionIdle {
		s.mu.Unlock()
		return NewError(CodeInvalidConfig, "session already opened")
	}
	s.state = SessionLoading
	s.mu.Unlock()

	// Bind before joining: events may start flowing the moment the
	// backend registers the membership.
	s.ch.Bind(s.roomID, s.handleMessage)

	var hist *History
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.ch.JoinRoom(gctx, s.roomID)
	})
	g.Go(func() error {
		h, err := s.loader.Load(gctx, s.roomID)
		if err != nil {
			return err
		}
		hist = h
		return nil
	})

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		if s.state != SessionLoading {
			// Already closed by a room switch; the failure is moot, but
			// the join may still have landed after the close's leave.
			s.mu.Unlock()
			s.undoAbandonedJoin(ctx)
			return err
		}
		s.state = SessionError
		s.err = err
		s.timeline = nil
		s.mu.Unlock()
		s.ch.Unbind(s.roomID)
		s.logger.Warn("room open failed", map[string]any{"room": s.roomID, "error": err.Error()})
		return err
	}

	s.mu.Lock()
	if s.state != SessionLoading {
		// Closed while the backlog was in flight: never apply the stale
		// result to whatever session replaced this one. The close ran its
		// leave already, but if the join only landed afterwards it would
		// linger in the membership set, so undo it here.
		s.mu.Unlock()
		s.undoAbandonedJoin(ctx)
		return nil
	}
	s.room = hist.Room
	s.timeline.Seed(hist.Messages)
	s.state = SessionActive
	s.mu.Unlock()
	return nil
}

// undoAbandonedJoin withdraws the membership a late-landing join may have
// re-established after Close already issued its leave. LeaveRoom is a no-op
// when the room is not in the membership set, so calling it again is safe.
func (s *Session) undoAbandonedJoin(ctx context.Context) {
	s.ch.Unbind(s.roomID)
	if err := s.ch.LeaveRoom(ctx, s.roomID); err != nil {
		s.logger.Debug("leave after abandoned open failed", map[string]any{"room": s.roomID, "error": err.Error()})
	}
}

// Close runs Active→Closing→Closed (or abandons a Loading open): unbinds
// the room's events, then leaves the room on the channel. Always called
// before a session for a different room may join.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case SessionClosing, SessionClosed:
		s.mu.Unlock()
		return nil
	}
	s.state = SessionClosing
	s.mu.Unlock()

	s.ch.Unbind(s.roomID)
	err := s.ch.LeaveRoom(ctx, s.roomID)

	s.mu.Lock()
	s.state = SessionClosed
	s.timeline = nil
	s.mu.Unlock()
	return err
}

// handleMessage appends an inbound event in arrival order. Events that
// race ahead of the backlog while still Loading are appended and then
// replaced wholesale when the seed lands, matching the backend's echo
// semantics.
func (s *Session) handleMessage(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case SessionLoading, SessionActive:
		s.timeline.Append(m)
	}
}
