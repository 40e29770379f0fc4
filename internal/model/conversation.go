package model

import "time"

// ConversationSummary derived view of a thread, one per partner. Never stored.
type ConversationSummary struct {
	ID              int64     `json:"id"` // partner user id
	Username        string    `json:"username"`
	FullName        string    `json:"full_name"`
	AvatarURL       string    `json:"avatar_url"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}
