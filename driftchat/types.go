package driftchat

import "encoding/json"

// Wire event names. The protocol is a flat event envelope in both
// directions; inbound messages arrive on the single "message" event
// regardless of room, carrying the room id in the payload.
const (
	eventJoinRoom    = "joinRoom"
	eventLeaveRoom   = "leaveRoom"
	eventSendMessage = "sendMessage"
	eventMessage     = "message"
	eventError       = "error"
)

// clientEvent is the envelope from client to server.
type clientEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// serverEvent is the envelope from server to client.
type serverEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *wireError      `json:"error,omitempty"`
}

// roomPayload addresses joinRoom/leaveRoom.
type roomPayload struct {
	ChatID string `json:"chatId"`
}

// sendMessagePayload is the body of a sendMessage event. File fields are
// present only for uploaded content.
type sendMessagePayload struct {
	ChatID   string      `json:"chatId"`
	Content  string      `json:"content"`
	Type     MessageKind `json:"type"`
	FileURL  string      `json:"fileUrl,omitempty"`
	FileName string      `json:"fileName,omitempty"`
	FileSize int64       `json:"fileSize,omitempty"`
}

// wireError describes a protocol-level error from the server.
type wireError struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

func (e *wireError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Msg
}

// toError maps a protocol error onto the SDK taxonomy.
func (e *wireError) toError() *Error {
	if e == nil {
		return nil
	}
	code := CodeUnknown
	switch e.Code {
	case "unauthorized":
		code = CodeAuthRejected
	case "not_found", "room_not_found":
		code = CodeNotFound
	}
	return NewError(code, e.Msg)
}

// unmarshalData decodes a RawMessage payload into target.
func unmarshalData(data json.RawMessage, v any) error {
	return json.Unmarshal(data, v)
}
