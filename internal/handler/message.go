package handler

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"vibecircles.web/internal/middleware"
	"vibecircles.web/internal/model"
	"vibecircles.web/internal/service"
	appErrors "vibecircles.web/pkg/errors"
	"vibecircles.web/pkg/response"
)

// MessageService operations behind the messaging routes.
// *service.MessageService implements it.
type MessageService interface {
	ListConversations(ctx context.Context, userID int64) ([]*model.ConversationSummary, error)
	GetThread(ctx context.Context, userID, otherUserID int64) ([]*model.MessageWithSender, error)
	SendMessage(ctx context.Context, senderID int64, req *service.SendMessageRequest) (*model.MessageWithSender, error)
	MarkThreadRead(ctx context.Context, userID, otherUserID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (*service.UnreadCountResponse, error)
	DeleteMessage(ctx context.Context, requesterID, messageID int64) error
}

var _ MessageService = (*service.MessageService)(nil)

// MessageHandler direct messaging endpoints
type MessageHandler struct {
	messageService MessageService
}

// NewMessageHandler creates the handler
func NewMessageHandler(messageService MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// ListConversations godoc
// @Summary      List conversations
// @Description  One entry per partner, most recent activity first
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ConversationSummary}
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /messages/conversations [get]
func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID := middleware.GetUserID(c)

	convs, err := h.messageService.ListConversations(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, convs)
}

// GetThread godoc
// @Summary      Get conversation thread
// @Description  Messages with a user, oldest first. Their messages to the caller are marked read.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      int  true  "Other user ID"
// @Success      200     {object}  response.Response{data=[]model.MessageWithSender}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Failure      500     {object}  response.Response
// @Router       /messages/conversation/{userId} [get]
func (h *MessageHandler) GetThread(c *gin.Context) {
	userID := middleware.GetUserID(c)

	otherUserID, ok := parseID(c, "userId", "Valid user ID is required")
	if !ok {
		return
	}

	msgs, err := h.messageService.GetThread(c.Request.Context(), userID, otherUserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, msgs)
}

// Send godoc
// @Summary      Send a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      service.SendMessageRequest  true  "Message"
// @Success      201   {object}  response.Response{data=model.MessageWithSender}
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      500   {object}  response.Response
// @Router       /messages/send [post]
func (h *MessageHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)

	// an empty body binds as an empty request and fails field validation
	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Validation("Invalid request body"))
		return
	}

	msg, err := h.messageService.SendMessage(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Message sent successfully", msg)
}

// MarkRead godoc
// @Summary      Mark a conversation read
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      int  true  "Other user ID"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Failure      500     {object}  response.Response
// @Router       /messages/read/{userId} [put]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)

	otherUserID, ok := parseID(c, "userId", "Valid user ID is required")
	if !ok {
		return
	}

	if _, err := h.messageService.MarkThreadRead(c.Request.Context(), userID, otherUserID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMsg(c, "Messages marked as read")
}

// UnreadCount godoc
// @Summary      Unread message count
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.UnreadCountResponse}
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	count, err := h.messageService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, count)
}

// Delete godoc
// @Summary      Delete a message
// @Description  Only the sender may delete a message
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        messageId  path      int  true  "Message ID"
// @Success      200        {object}  response.Response
// @Failure      400        {object}  response.Response
// @Failure      401        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Failure      500        {object}  response.Response
// @Router       /messages/{messageId} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)

	messageID, ok := parseID(c, "messageId", "Valid message ID is required")
	if !ok {
		return
	}

	if err := h.messageService.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMsg(c, "Message deleted successfully")
}

// parseID reads a positive integer path parameter, writing a 400 otherwise
func parseID(c *gin.Context, param, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Validation(message))
		return 0, false
	}
	return id, true
}
