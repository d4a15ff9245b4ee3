package ws

import (
	"encoding/json"

	"chatroomgo/internal/registry"
)

// Event names carried in the envelope.
const (
	EventRoomMessage = "rooms/message"
	EventRoomHistory = "rooms/history"
)

// System notice bodies, broadcast on join and leave.
const (
	noticeEntered = "has entered the room"
	noticeLeft    = "has left the room"
)

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "rooms/message"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// ChatMessageBody is the body for "rooms/message".
type ChatMessageBody struct {
	Body string `json:"body"`
}

// HistoryBody carries the room history pushed to a freshly joined connection.
type HistoryBody struct {
	Messages []registry.Message `json:"messages"`
}

// Empty ACK body.
type AckBody struct{}

// ErrorBody is returned for failures.
type ErrorBody struct {
	Error string `json:"error"`
}

// envelopeBytes marshals an outbound event the same way for broadcasts and
// direct writes, so every frame on the wire respects the envelope contract.
func envelopeBytes(event string, body any) ([]byte, error) {
	return json.Marshal(map[string]any{
		"event": event,
		"body":  body,
	})
}
