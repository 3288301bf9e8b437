package rest

import "time"

// Wire shapes of the REST collaborator. Field names follow the backend's
// JSON exactly; the core package converts these into its own model.

// Sender identifies the author of a message.
type Sender struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Message is one backlog entry.
type Message struct {
	ID        string    `json:"_id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	FileURL   string    `json:"fileUrl,omitempty"`
	FileName  string    `json:"fileName,omitempty"`
	FileSize  int64     `json:"fileSize,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Participant is a room member with presence.
type Participant struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Status string `json:"status"`
}

// LastMessage is the chat-list preview.
type LastMessage struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Room is room metadata.
type Room struct {
	ID           string        `json:"_id"`
	Name         string        `json:"name,omitempty"`
	Type         string        `json:"type"`
	Participants []Participant `json:"participants"`
	LastMessage  *LastMessage  `json:"lastMessage,omitempty"`
}

// User is a contact or profile entry.
type User struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	Status string `json:"status,omitempty"`
}

// UploadResponse is returned by the file store after a multipart upload.
type UploadResponse struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}

// CreateGroupRequest creates a group room.
type CreateGroupRequest struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
	Avatar       string   `json:"avatar,omitempty"`
}

// UpdateProfileRequest updates the authenticated user's profile. The
// password fields are optional and must be set together.
type UpdateProfileRequest struct {
	Name            string `json:"name"`
	Avatar          string `json:"avatar,omitempty"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
}

// errorResponse is the backend's error body.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
