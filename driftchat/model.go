package driftchat

import "time"

// MessageKind discriminates message content.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindFile  MessageKind = "file"
	KindVideo MessageKind = "video"
)

// Presence is a participant's connectivity state as reported by the backend.
type Presence string

const (
	PresenceOnline  Presence = "online"
	PresenceOffline Presence = "offline"
)

// RoomKind discriminates two-party and group rooms.
type RoomKind string

const (
	RoomPrivate RoomKind = "private"
	RoomGroup   RoomKind = "group"
)

// Sender identifies the author of a message.
type Sender struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Message is a single timeline entry. Content is empty for file-typed
// messages; the file fields carry the uploaded reference instead.
type Message struct {
	ID        string      `json:"_id"`
	Sender    Sender      `json:"sender"`
	Content   string      `json:"content"`
	Type      MessageKind `json:"type"`
	FileURL   string      `json:"fileUrl,omitempty"`
	FileName  string      `json:"fileName,omitempty"`
	FileSize  int64       `json:"fileSize,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Participant is a member of a room.
type Participant struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Avatar string   `json:"avatar,omitempty"`
	Status Presence `json:"status"`
}

// LastMessage is the preview shown in the chat list.
type LastMessage struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Room is a private or group messaging context. Name may be absent; see
// DisplayName for the fallback.
type Room struct {
	ID           string        `json:"_id"`
	Name         string        `json:"name,omitempty"`
	Type         RoomKind      `json:"type"`
	Participants []Participant `json:"participants"`
	LastMessage  *LastMessage  `json:"lastMessage,omitempty"`
}

// DisplayName returns the room's explicit name, or the first participant's
// name when none is set. For private rooms the backend lists the
// counterpart first, so the fallback yields the other party's name.
func (r Room) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	if len(r.Participants) > 0 {
		return r.Participants[0].Name
	}
	return ""
}

// User is a contact or profile entry.
type User struct {
	ID     string   `json:"_id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Avatar string   `json:"avatar,omitempty"`
	Status Presence `json:"status,omitempty"`
}
