package service

import (
	"context"

	"vibecircles.web/internal/model"
	appErrors "vibecircles.web/pkg/errors"
)

// ListConversations returns one summary per partner userID has exchanged
// messages with, most recently active first. One aggregate query.
func (s *MessageService) ListConversations(ctx context.Context, userID int64) ([]*model.ConversationSummary, error) {
	convs, err := s.messages.ListConversations(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list conversations", "userId", userID, "error", err)
		return nil, appErrors.ErrRetrieval.WithMessage(msgFetchConversations).Wrap(err)
	}
	if convs == nil {
		convs = []*model.ConversationSummary{}
	}
	return convs, nil
}
