package events

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/recipestack/interfaces"
	"github.com/customeros/recipestack/internal/enum"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/metrics"
	"github.com/customeros/recipestack/internal/tracing"
)

type EventsService struct {
	Publisher interfaces.EventPublisher
	logger    logger.Logger
}

// NewEventsService connects to RabbitMQ, or falls back to a NoopPublisher when rabbitmqURL is empty.
func NewEventsService(rabbitmqURL string, log logger.Logger, publisherConfig *PublisherConfig) (*EventsService, error) {
	if rabbitmqURL == "" {
		log.Warn("RABBITMQ_URL not set, domain events will not be published")
		return NewEventsServiceWithPublisher(NewNoopPublisher(log), log), nil
	}

	publisher, err := NewRabbitMQPublisher(rabbitmqURL, log, publisherConfig)
	if err != nil {
		return nil, err
	}

	return NewEventsServiceWithPublisher(publisher, log), nil
}

func NewEventsServiceWithPublisher(publisher interfaces.EventPublisher, log logger.Logger) *EventsService {
	return &EventsService{
		Publisher: publisher,
		logger:    log,
	}
}

// Publish sends a domain event. Failures are traced and logged, never returned:
// the mutation that produced the event has already been committed.
func (s *EventsService) Publish(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EventsService.Publish")
	defer span.Finish()
	tracing.TagComponent(span, tracing.ComponentPublisher)
	tracing.TagEntity(span, entityId)

	eventType := eventTypeName(message)
	if err := s.Publisher.PublishFanoutEvent(ctx, entityId, entityType, message); err != nil {
		tracing.TraceErr(span, err)
		metrics.EventsPublished.WithLabelValues(eventType, metrics.OutcomeError).Inc()
		s.logger.Errorf("Failed to publish %s for %s %s: %v", eventType, entityType, entityId, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(eventType, metrics.OutcomeSuccess).Inc()
}

func (s *EventsService) Close() error {
	if s.Publisher == nil {
		return nil
	}
	return s.Publisher.Close()
}
