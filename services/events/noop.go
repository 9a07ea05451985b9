package events

import (
	"context"

	"github.com/customeros/recipestack/internal/enum"
	"github.com/customeros/recipestack/internal/logger"
)

// NoopPublisher is used when no broker is configured. Events are only logged at debug level.
type NoopPublisher struct {
	logger logger.Logger
}

func NewNoopPublisher(logger logger.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) PublishFanoutEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	if p.logger != nil {
		p.logger.Debugf("event not published, no broker configured: %s %s %T", entityType, entityId, message)
	}
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
