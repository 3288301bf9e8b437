package driftchat

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/driftchat/driftchat-sdk-go/driftchat/rest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistoryAPI struct {
	room        *rest.Room
	roomErr     error
	messages    []rest.Message
	messagesErr error
}

func (f *fakeHistoryAPI) GetRoom(context.Context, string) (*rest.Room, error) {
	return f.room, f.roomErr
}

func (f *fakeHistoryAPI) GetMessages(context.Context, string) ([]rest.Message, error) {
	return f.messages, f.messagesErr
}

func TestHistoryLoaderLoad(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	api := &fakeHistoryAPI{
		room: &rest.Room{
			ID:   "a",
			Type: "private",
			Participants: []rest.Participant{
				{ID: "u2", Name: "Bob", Status: "online"},
			},
		},
		messages: []rest.Message{
			{ID: "m1", Sender: rest.Sender{ID: "u2", Name: "Bob"}, Content: "hi", Type: "text", CreatedAt: created},
			{ID: "m2", Sender: rest.Sender{ID: "u1", Name: "Alice"}, Content: "photo.png", Type: "image", FileURL: "/up/1", CreatedAt: created.Add(time.Minute)},
		},
	}

	h, err := NewHistoryLoader(api).Load(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, "a", h.Room.ID)
	assert.Equal(t, RoomPrivate, h.Room.Type)
	require.Len(t, h.Room.Participants, 1)
	assert.Equal(t, PresenceOnline, h.Room.Participants[0].Status)

	require.Len(t, h.Messages, 2)
	assert.Equal(t, "m1", h.Messages[0].ID)
	assert.Equal(t, KindImage, h.Messages[1].Type)
	assert.Equal(t, "/up/1", h.Messages[1].FileURL)
	assert.Equal(t, created, h.Messages[0].CreatedAt)
}

func TestHistoryLoaderNoPartialResult(t *testing.T) {
	tests := []struct {
		name     string
		api      *fakeHistoryAPI
		wantCode Code
	}{
		{
			name: "room not found",
			api: &fakeHistoryAPI{
				roomErr:  &rest.APIError{StatusCode: http.StatusNotFound, Message: "no such chat"},
				messages: []rest.Message{{ID: "m1"}},
			},
			wantCode: CodeNotFound,
		},
		{
			name: "unauthorized",
			api: &fakeHistoryAPI{
				room:        &rest.Room{ID: "a"},
				messagesErr: &rest.APIError{StatusCode: http.StatusUnauthorized, Message: "expired"},
			},
			wantCode: CodeUnauthorized,
		},
		{
			name: "network failure",
			api: &fakeHistoryAPI{
				room:        &rest.Room{ID: "a"},
				messagesErr: errors.New("connection refused"),
			},
			wantCode: CodeTransient,
		},
		{
			name: "server error",
			api: &fakeHistoryAPI{
				roomErr:  &rest.APIError{StatusCode: http.StatusBadGateway, Message: "upstream"},
				messages: []rest.Message{{ID: "m1"}},
			},
			wantCode: CodeTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHistoryLoader(tt.api).Load(context.Background(), "a")
			require.Error(t, err)
			assert.Nil(t, h, "a failed load must not return a partial result")
			assert.Equal(t, tt.wantCode, CodeOf(err))
		})
	}
}
