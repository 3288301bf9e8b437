package driftchat

import (
	"context"
	"errors"
	"net/http"

	"github.com/driftchat/driftchat-sdk-go/driftchat/rest"

	"golang.org/x/sync/errgroup"
)

// HistoryAPI is the slice of the REST collaborator the loader consumes.
type HistoryAPI interface {
	GetRoom(ctx context.Context, roomID string) (*rest.Room, error)
	GetMessages(ctx context.Context, roomID string) ([]rest.Message, error)
}

// History is a complete room-open result: metadata plus the ordered
// backlog, oldest first.
type History struct {
	Room     Room
	Messages []Message
}

// HistoryLoader fetches the backlog and room metadata for a room in one
// logical operation. Stateless; every call is idempotent and retryable.
type HistoryLoader struct {
	api HistoryAPI
}

// NewHistoryLoader wraps a REST client (or a fake) into a loader.
func NewHistoryLoader(api HistoryAPI) *HistoryLoader {
	return &HistoryLoader{api: api}
}

// Load retrieves metadata and backlog concurrently. Both must succeed;
// a failure of either discards the other, so a caller never applies a
// partial result.
func (l *HistoryLoader) Load(ctx context.Context, roomID string) (*History, error) {
	var (
		room *rest.Room
		msgs []rest.Message
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := l.api.GetRoom(gctx, roomID)
		if err != nil {
			return err
		}
		room = r
		return nil
	})
	g.Go(func() error {
		m, err := l.api.GetMessages(gctx, roomID)
		if err != nil {
			return err
		}
		msgs = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, mapRESTError(err)
	}

	out := &History{
		Room:     roomFromREST(*room),
		Messages: make([]Message, 0, len(msgs)),
	}
	for _, m := range msgs {
		out.Messages = append(out.Messages, messageFromREST(m))
	}
	return out, nil
}

// mapRESTError translates collaborator failures onto the SDK taxonomy.
func mapRESTError(err error) error {
	var apiErr *rest.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return WrapError(CodeUnauthorized, apiErr.Message, err)
		case http.StatusNotFound:
			return WrapError(CodeNotFound, apiErr.Message, err)
		default:
			return WrapError(CodeTransient, apiErr.Message, err)
		}
	}
	return WrapError(CodeTransient, "request failed", err)
}

func roomFromREST(r rest.Room) Room {
	room := Room{
		ID:   r.ID,
		Name: r.Name,
		Type: RoomKind(r.Type),
	}
	for _, p := range r.Participants {
		room.Participants = append(room.Participants, Participant{
			ID:     p.ID,
			Name:   p.Name,
			Avatar: p.Avatar,
			Status: Presence(p.Status),
		})
	}
	if r.LastMessage != nil {
		room.LastMessage = &LastMessage{
			Content:   r.LastMessage.Content,
			CreatedAt: r.LastMessage.CreatedAt,
		}
	}
	return room
}

func messageFromREST(m rest.Message) Message {
	return Message{
		ID: m.ID,
		Sender: Sender{
			ID:     m.Sender.ID,
			Name:   m.Sender.Name,
			Avatar: m.Sender.Avatar,
		},
		Content:   m.Content,
		Type:      MessageKind(m.Type),
		FileURL:   m.FileURL,
		FileName:  m.FileName,
		FileSize:  m.FileSize,
		CreatedAt: m.CreatedAt,
	}
}

func userFromREST(u rest.User) User {
	return User{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Status: Presence(u.Status),
	}
}
