package service

import (
	"context"

	"vibecircles.web/internal/model"
)

// MessageStore persistence the messaging core needs.
// *repository.MessageRepository is the Postgres implementation.
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	GetByID(ctx context.Context, id int64) (*model.Message, error)
	GetWithSender(ctx context.Context, id int64) (*model.MessageWithSender, error)
	ListConversations(ctx context.Context, userID int64) ([]*model.ConversationSummary, error)
	ListThread(ctx context.Context, userID, otherUserID int64) ([]*model.MessageWithSender, error)
	MarkRead(ctx context.Context, receiverID, senderID, upToID int64) (int64, error)
	CountUnread(ctx context.Context, receiverID int64) (int64, error)
	DeleteBySender(ctx context.Context, id, senderID int64) error
}

// UserStore account lookups
type UserStore interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// EventPublisher fan-out of message events to the notification side
type EventPublisher interface {
	Publish(ctx context.Context, event *model.MessageEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, *model.MessageEvent) error { return nil }
