package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token")
}

func TestGetRoom(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/chats/room-1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"_id":  "room-1",
			"type": "private",
			"participants": []map[string]any{
				{"_id": "u2", "name": "Bob", "status": "offline"},
			},
		})
	})

	room, err := c.GetRoom(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, "room-1", room.ID)
	assert.Equal(t, "private", room.Type)
	require.Len(t, room.Participants, 1)
	assert.Equal(t, "Bob", room.Participants[0].Name)
}

func TestGetMessagesPreservesOrder(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages/room-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"_id": "m1", "content": "first", "type": "text", "createdAt": time.Now().UTC().Format(time.RFC3339)},
			{"_id": "m2", "content": "second", "type": "text", "createdAt": time.Now().UTC().Format(time.RFC3339)},
		})
	})

	msgs, err := c.GetMessages(context.Background(), "room-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
}

func TestAPIError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"chat not found"}`, http.StatusNotFound)
	})

	_, err := c.GetRoom(context.Background(), "nope")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "chat not found", apiErr.Message)
}

func TestAPIErrorPlainBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.GetMessages(context.Background(), "r")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestUpload(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "cat.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		body, _ := io.ReadAll(file)
		assert.Equal(t, "png-bytes", string(body))

		_ = json.NewEncoder(w).Encode(UploadResponse{FileURL: "/uploads/cat.png", FileName: "cat.png"})
	})

	resp, err := c.Upload(context.Background(), "cat.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/cat.png", resp.FileURL)
	assert.Equal(t, "cat.png", resp.FileName)
}

func TestCreateGroup(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chats/group", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateGroupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Weekend Trip", req.Name)
		assert.Equal(t, []string{"u2", "u3"}, req.Participants)

		_ = json.NewEncoder(w).Encode(map[string]any{"_id": "g1", "name": req.Name, "type": "group"})
	})

	room, err := c.CreateGroup(context.Background(), CreateGroupRequest{
		Name:         "Weekend Trip",
		Participants: []string{"u2", "u3"},
	})
	require.NoError(t, err)
	assert.Equal(t, "g1", room.ID)
	assert.Equal(t, "group", room.Type)
}

func TestUpdateProfile(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/users/profile", r.URL.Path)

		var req UpdateProfileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Alice B", req.Name)
		assert.Equal(t, "hunter2", req.CurrentPassword)

		_ = json.NewEncoder(w).Encode(map[string]any{"_id": "u1", "name": req.Name, "email": "alice@example.com"})
	})

	user, err := c.UpdateProfile(context.Background(), UpdateProfileRequest{
		Name:            "Alice B",
		CurrentPassword: "hunter2",
		NewPassword:     "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", user.Name)
}

func TestGetFriends(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/friends", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"_id": "u2", "name": "Bob", "email": "bob@example.com", "status": "online"},
			{"_id": "u3", "name": "Carol", "email": "carol@example.com", "status": "offline"},
		})
	})

	friends, err := c.GetFriends(context.Background())
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "online", friends[0].Status)
}
