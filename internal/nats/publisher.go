package nats

import (
	"context"
	"encoding/json"
	"log/slog"

	"vibecircles.web/internal/model"
)

// Subjects message events are published on
const (
	SubjectMessagesPrefix = "vibecircles.messages."

	SubjectMessageCreated = SubjectMessagesPrefix + string(model.MessageEventCreated)
	SubjectMessageRead    = SubjectMessagesPrefix + string(model.MessageEventRead)
	SubjectMessageDeleted = SubjectMessagesPrefix + string(model.MessageEventDeleted)

	// SubjectMessagesAll wildcard for consumers of every message event
	SubjectMessagesAll = SubjectMessagesPrefix + "*"
)

// BuildMessageSubject subject for an event type
func BuildMessageSubject(eventType model.MessageEventType) string {
	return SubjectMessagesPrefix + string(eventType)
}

// Conn publishing side of *nats.Conn
type Conn interface {
	Publish(subject string, data []byte) error
}

// MessagePublisher publishes message events as JSON
type MessagePublisher struct {
	nc     Conn
	logger *slog.Logger
}

// NewMessagePublisher creates the publisher
func NewMessagePublisher(nc Conn) *MessagePublisher {
	return &MessagePublisher{
		nc:     nc,
		logger: slog.Default(),
	}
}

// Publish sends event on its type's subject. Delivery is fire-and-forget.
func (p *MessagePublisher) Publish(ctx context.Context, event *model.MessageEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := BuildMessageSubject(event.Type)
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal message event", "type", event.Type, "error", err)
		return err
	}

	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish message event", "subject", subject, "error", err)
		return err
	}

	p.logger.Debug("Published message event", "subject", subject, "messageId", event.MessageID)
	return nil
}
