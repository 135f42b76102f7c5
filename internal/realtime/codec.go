package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Frame type discriminators stamped on server-pushed frames so clients can
// demultiplex chat, presence and notification payloads on one socket.
const (
	FrameChat         = "chat"
	FramePresence     = "presence"
	FrameNotification = "notification"
)

// InboundMessage is one decoded chat frame. Receiver selects a direct message;
// an empty receiver means broadcast. Sender is overwritten by the server from
// the registered connection identity, so clients cannot spoof it.
type InboundMessage struct {
	Type       string `json:"type,omitempty"`
	Sender     string `json:"sender"`
	SenderName string `json:"senderName,omitempty"`
	Body       string `json:"body"`
	Receiver   string `json:"receiver,omitempty"`
}

// Broadcast reports whether the message has no explicit receiver.
func (m InboundMessage) Broadcast() bool {
	return m.Receiver == ""
}

// Notification is a server-originated push payload.
type Notification struct {
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// PresenceEvent announces an identity's online/offline transition to peers.
type PresenceEvent struct {
	Type       string    `json:"type"`
	Identity   string    `json:"identity"`
	Online     bool      `json:"online"`
	OccurredAt time.Time `json:"occurredAt"`
}

// DecodeError reports a malformed inbound frame. It is recoverable: the read
// loop logs it and keeps the connection open.
type DecodeError struct {
	cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode frame: %v", e.cause)
}

func (e *DecodeError) Unwrap() error {
	return e.cause
}

// DecodeMessage parses one text frame into an InboundMessage. Unknown fields
// are ignored and optional fields may be absent; anything that is not a JSON
// object yields a *DecodeError.
func DecodeMessage(data []byte) (InboundMessage, error) {
	// json.Unmarshal accepts "null" and bare scalars into a struct without
	// complaint, so object-ness has to be checked up front.
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return InboundMessage{}, &DecodeError{cause: errors.New("frame is not a JSON object")}
	}
	var m InboundMessage
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return InboundMessage{}, &DecodeError{cause: err}
	}
	return m, nil
}

// EncodeMessage renders a chat frame for the wire.
func EncodeMessage(m InboundMessage) []byte {
	m.Type = FrameChat
	return mustMarshal(m)
}

// EncodeNotification renders a notification frame for the wire.
func EncodeNotification(n Notification) []byte {
	n.Type = FrameNotification
	return mustMarshal(n)
}

// EncodePresence renders a presence frame for the wire.
func EncodePresence(ev PresenceEvent) []byte {
	ev.Type = FramePresence
	return mustMarshal(ev)
}

// Encoding an internal struct must not fail; a marshal error here is a broken
// contract, not a runtime condition.
func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("realtime: encode frame: %v", err))
	}
	return data
}
