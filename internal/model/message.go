package model

import "time"

// Message direct message between two users
type Message struct {
	ID         int64     `json:"id" db:"id"`
	SenderID   int64     `json:"sender_id" db:"sender_id"`
	ReceiverID int64     `json:"receiver_id" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	IsRead     bool      `json:"is_read" db:"is_read"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// IsUnreadFor reports whether the message is still unread by userID
func (m *Message) IsUnreadFor(userID int64) bool {
	return m.ReceiverID == userID && !m.IsRead
}

// MessageWithSender message annotated with the sender's display identity
type MessageWithSender struct {
	Message
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}
