package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"vibecircles.web/internal/model"
	"vibecircles.web/internal/repository"
	appErrors "vibecircles.web/pkg/errors"
)

// client messages for storage failures, one per route
const (
	msgFetchConversations = "Failed to fetch conversations"
	msgFetchMessages      = "Failed to fetch messages"
	msgMarkRead           = "Failed to mark messages as read"
	msgSend               = "Failed to send message"
	msgUnreadCount        = "Failed to get unread count"
	msgDelete             = "Failed to delete message"
)

// SendMessageRequest body of POST /send
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiverId" example:"2"`
	Content    string `json:"content" example:"hi"`
}

// UnreadCountResponse global unread badge
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

// MessageService direct messaging: conversations, threads, read state
type MessageService struct {
	messages  MessageStore
	users     UserStore
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewMessageService creates the messaging service. publisher may be nil.
func NewMessageService(messages MessageStore, users UserStore, publisher EventPublisher) *MessageService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &MessageService{
		messages:  messages,
		users:     users,
		publisher: publisher,
		logger:    slog.Default(),
		now:       time.Now,
	}
}

// GetThread returns the chronological thread between userID and otherUserID
// and marks the other party's messages in it as read. Unknown but well-formed
// ids yield an empty thread.
func (s *MessageService) GetThread(ctx context.Context, userID, otherUserID int64) ([]*model.MessageWithSender, error) {
	if otherUserID <= 0 {
		return nil, appErrors.Validation("Valid user ID is required")
	}

	msgs, err := s.messages.ListThread(ctx, userID, otherUserID)
	if err != nil {
		s.logger.Error("Failed to fetch thread", "userId", userID, "otherUserId", otherUserID, "error", err)
		return nil, appErrors.ErrRetrieval.WithMessage(msgFetchMessages).Wrap(err)
	}
	if msgs == nil {
		msgs = []*model.MessageWithSender{}
	}

	// only what the reader was shown gets marked
	var upToID int64
	for _, m := range msgs {
		if m.SenderID == otherUserID && m.IsUnreadFor(userID) && m.ID > upToID {
			upToID = m.ID
		}
	}
	if upToID == 0 {
		return msgs, nil
	}

	count, err := s.messages.MarkRead(ctx, userID, otherUserID, upToID)
	if err != nil {
		s.logger.Error("Failed to mark thread read", "userId", userID, "otherUserId", otherUserID, "error", err)
		return nil, appErrors.ErrPersistence.WithMessage(msgFetchMessages).Wrap(err)
	}
	for _, m := range msgs {
		if m.SenderID == otherUserID && m.ReceiverID == userID && m.ID <= upToID {
			m.IsRead = true
		}
	}

	s.publishRead(ctx, userID, otherUserID, count)
	return msgs, nil
}

// MarkThreadRead marks every unread message from otherUserID to userID as read
func (s *MessageService) MarkThreadRead(ctx context.Context, userID, otherUserID int64) (int64, error) {
	if otherUserID <= 0 {
		return 0, appErrors.Validation("Valid user ID is required")
	}

	count, err := s.messages.MarkRead(ctx, userID, otherUserID, 0)
	if err != nil {
		s.logger.Error("Failed to mark messages read", "userId", userID, "otherUserId", otherUserID, "error", err)
		return 0, appErrors.ErrPersistence.WithMessage(msgMarkRead).Wrap(err)
	}

	s.publishRead(ctx, userID, otherUserID, count)
	return count, nil
}

// SendMessage validates and stores a new message from senderID
func (s *MessageService) SendMessage(ctx context.Context, senderID int64, req *SendMessageRequest) (*model.MessageWithSender, error) {
	content := strings.TrimSpace(req.Content)
	if req.ReceiverID == 0 || content == "" {
		return nil, appErrors.Validation("Receiver ID and content are required")
	}
	if req.ReceiverID < 0 {
		return nil, appErrors.Validation("Valid receiver ID is required")
	}
	if senderID == req.ReceiverID {
		return nil, appErrors.Validation("Cannot send message to yourself")
	}

	exists, err := s.users.Exists(ctx, req.ReceiverID)
	if err != nil {
		s.logger.Error("Failed to look up receiver", "receiverId", req.ReceiverID, "error", err)
		return nil, appErrors.ErrRetrieval.WithMessage(msgSend).Wrap(err)
	}
	if !exists {
		return nil, appErrors.ErrReceiverNotFound
	}

	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    content,
		IsRead:     false,
		CreatedAt:  s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		// receiver deleted between the check and the insert
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, appErrors.ErrReceiverNotFound.Wrap(err)
		}
		s.logger.Error("Failed to save message", "senderId", senderID, "receiverId", req.ReceiverID, "error", err)
		return nil, appErrors.ErrPersistence.WithMessage(msgSend).Wrap(err)
	}

	s.logger.Debug("Message saved", "messageId", msg.ID, "senderId", senderID, "receiverId", req.ReceiverID)

	s.publish(ctx, &model.MessageEvent{
		Type:       model.MessageEventCreated,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Timestamp:  msg.CreatedAt,
	})

	full, err := s.messages.GetWithSender(ctx, msg.ID)
	if err != nil {
		s.logger.Error("Failed to load sent message", "messageId", msg.ID, "error", err)
		return nil, appErrors.ErrRetrieval.WithMessage(msgSend).Wrap(err)
	}
	return full, nil
}

// UnreadCount total unread messages addressed to userID
func (s *MessageService) UnreadCount(ctx context.Context, userID int64) (*UnreadCountResponse, error) {
	count, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count unread messages", "userId", userID, "error", err)
		return nil, appErrors.ErrRetrieval.WithMessage(msgUnreadCount).Wrap(err)
	}
	return &UnreadCountResponse{UnreadCount: count}, nil
}

// DeleteMessage permanently removes a message sent by requesterID. Absent and
// not-owned messages are reported the same way.
func (s *MessageService) DeleteMessage(ctx context.Context, requesterID, messageID int64) error {
	if messageID <= 0 {
		return appErrors.Validation("Valid message ID is required")
	}

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return appErrors.ErrMessageNotFound
		}
		s.logger.Error("Failed to fetch message", "messageId", messageID, "error", err)
		return appErrors.ErrRetrieval.WithMessage(msgDelete).Wrap(err)
	}
	if msg.SenderID != requesterID {
		return appErrors.ErrMessageNotFound
	}

	if err := s.messages.DeleteBySender(ctx, messageID, requesterID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return appErrors.ErrMessageNotFound
		}
		s.logger.Error("Failed to delete message", "messageId", messageID, "error", err)
		return appErrors.ErrPersistence.WithMessage(msgDelete).Wrap(err)
	}

	s.publish(ctx, &model.MessageEvent{
		Type:       model.MessageEventDeleted,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Timestamp:  s.now(),
	})
	return nil
}

func (s *MessageService) publishRead(ctx context.Context, readerID, senderID, count int64) {
	if count == 0 {
		return
	}
	s.publish(ctx, &model.MessageEvent{
		Type:       model.MessageEventRead,
		SenderID:   senderID,
		ReceiverID: readerID,
		Count:      count,
		Timestamp:  s.now(),
	})
}

// publish failures never fail the request; the write already happened
func (s *MessageService) publish(ctx context.Context, event *model.MessageEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish message event", "type", event.Type, "messageId", event.MessageID, "error", err)
	}
}
