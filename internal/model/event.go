package model

import "time"

// MessageEventType kind of change published for downstream consumers
type MessageEventType string

const (
	MessageEventCreated MessageEventType = "created"
	MessageEventRead    MessageEventType = "read"
	MessageEventDeleted MessageEventType = "deleted"
)

// MessageEvent notification that messaging state changed.
// For read events SenderID is the party whose messages were read.
type MessageEvent struct {
	Type       MessageEventType `json:"type"`
	MessageID  int64            `json:"message_id,omitempty"`
	SenderID   int64            `json:"sender_id"`
	ReceiverID int64            `json:"receiver_id"`
	Count      int64            `json:"count,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}
