package events

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/customeros/recipestack/config"
	"github.com/customeros/recipestack/dto"
	"github.com/customeros/recipestack/internal/enum"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/tracing"
	"github.com/customeros/recipestack/internal/utils"
)

const (
	ExchangeRecipestack = "recipestack"
	ExchangeDeadLetter  = "dead-letter"

	QueueRecipestack = "events-recipestack"
	DLQRecipestack   = QueueRecipestack + "-dlq"

	RoutingKeyDeadLetter = "dead-letter"

	DefaultMessageTTL          = 240 * time.Hour // after TTL message moves to DLQ
	DefaultMaxRetries          = 3
	DefaultPublishTimeout      = 5 * time.Second
	DefaultReconnectBackoff    = time.Second
	DefaultMaxReconnectBackoff = 30 * time.Second

	retryBackoffStep = 100 * time.Millisecond
)

type exchange struct {
	name string
	kind string
}

// queueBinding is a durable queue bound to an exchange. When deadLetter is set the
// queue routes expired and rejected messages to the dead-letter exchange.
type queueBinding struct {
	queue      string
	exchange   string
	routingKey string
	deadLetter string
}

var (
	topologyExchanges = []exchange{
		{name: ExchangeDeadLetter, kind: amqp091.ExchangeDirect},
		{name: ExchangeRecipestack, kind: amqp091.ExchangeFanout},
	}
	topologyQueues = []queueBinding{
		{queue: DLQRecipestack, exchange: ExchangeDeadLetter, routingKey: RoutingKeyDeadLetter},
		{queue: QueueRecipestack, exchange: ExchangeRecipestack, deadLetter: ExchangeDeadLetter},
	}
)

type PublisherConfig struct {
	MessageTTL          time.Duration
	MaxRetries          int
	PublishTimeout      time.Duration
	ReconnectBackoff    time.Duration
	MaxReconnectBackoff time.Duration
}

func DefaultPublisherConfig() *PublisherConfig {
	return &PublisherConfig{
		MessageTTL:          DefaultMessageTTL,
		MaxRetries:          DefaultMaxRetries,
		PublishTimeout:      DefaultPublishTimeout,
		ReconnectBackoff:    DefaultReconnectBackoff,
		MaxReconnectBackoff: DefaultMaxReconnectBackoff,
	}
}

// PublisherConfigFrom overlays the env settings on the defaults. Zero values keep the default.
func PublisherConfigFrom(cfg *config.EventsConfig) *PublisherConfig {
	publisherConfig := DefaultPublisherConfig()
	if cfg == nil {
		return publisherConfig
	}
	if cfg.MessageTTLHours > 0 {
		publisherConfig.MessageTTL = time.Duration(cfg.MessageTTLHours) * time.Hour
	}
	if cfg.PublishMaxRetries > 0 {
		publisherConfig.MaxRetries = cfg.PublishMaxRetries
	}
	if cfg.PublishTimeoutSeconds > 0 {
		publisherConfig.PublishTimeout = time.Duration(cfg.PublishTimeoutSeconds) * time.Second
	}
	return publisherConfig
}

var ErrPublisherClosed = errors.New("publisher is closed")

// RabbitMQPublisher publishes domain events with publisher confirms and reconnects
// in the background when the broker drops the connection. mu guards the connection,
// the publish channel and its confirms, and serializes publishes.
type RabbitMQPublisher struct {
	mu             sync.Mutex
	connection     *amqp091.Connection
	publishChannel *amqp091.Channel
	confirms       chan amqp091.Confirmation
	url            string
	logger         logger.Logger
	config         PublisherConfig
	closed         chan struct{}
}

func NewRabbitMQPublisher(rabbitmqURL string, log logger.Logger, cfg *PublisherConfig) (*RabbitMQPublisher, error) {
	if cfg == nil {
		cfg = DefaultPublisherConfig()
	}

	publisher := &RabbitMQPublisher{
		url:    rabbitmqURL,
		logger: log,
		config: *cfg,
		closed: make(chan struct{}),
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	if err := publisher.connectLocked(); err != nil {
		return nil, err
	}
	return publisher, nil
}

// PublishFanoutEvent wraps message in an event envelope and publishes it on the recipestack exchange.
func (r *RabbitMQPublisher) PublishFanoutEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.PublishFanoutEvent")
	defer span.Finish()
	tracing.TagComponent(span, tracing.ComponentPublisher)
	tracing.TagEntity(span, entityId)

	event := NewEvent(ctx, span, entityId, entityType, message)
	tracing.LogObjectAsJson(span, "event", event)

	if err := r.publishWithRetry(ctx, event, ExchangeRecipestack, ""); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

// NewEvent builds the envelope published for every domain event. The event type is
// the name of the payload type, e.g. "RecipeCreated".
func NewEvent(ctx context.Context, span opentracing.Span, entityId string, entityType enum.EntityType, message interface{}) dto.Event {
	tracingData := tracing.ExtractTextMapCarrier(span.Context())
	customContext := utils.GetContext(ctx)

	return dto.Event{
		Event: dto.EventDetails{
			Id:         utils.GenerateNanoIDWithPrefix("event", 21),
			EntityId:   entityId,
			EntityType: entityType,
			EventType:  eventTypeName(message),
			Data:       message,
		},
		Metadata: dto.EventMetadata{
			UberTraceId: tracingData["uber-trace-id"],
			AppSource:   customContext.AppSource,
			RequestId:   customContext.RequestId,
			UserId:      customContext.UserId,
			UserEmail:   customContext.UserEmail,
			Timestamp:   utils.Now().Format(time.RFC3339),
		},
	}
}

func eventTypeName(message interface{}) string {
	messageType := reflect.TypeOf(message)
	if messageType == nil {
		return ""
	}
	if messageType.Kind() == reflect.Ptr {
		messageType = messageType.Elem()
	}
	return messageType.Name()
}

func (r *RabbitMQPublisher) isClosed() bool {
	select {
	case <-r.closed:
		return true
	default:
		return false
	}
}

// connectLocked dials and declares the topology unless the publisher is closed or
// already holds a live connection. Callers hold r.mu.
func (r *RabbitMQPublisher) connectLocked() error {
	if r.isClosed() {
		return ErrPublisherClosed
	}
	if r.connection != nil && !r.connection.IsClosed() {
		if r.publishChannel == nil || r.publishChannel.IsClosed() {
			return r.openPublishChannelLocked()
		}
		return nil
	}

	connection, err := amqp091.Dial(r.url)
	if err != nil {
		return errors.Wrap(err, "Failed to connect to RabbitMQ")
	}
	r.connection = connection
	r.publishChannel = nil

	if err := r.declareTopology(connection); err != nil {
		connection.Close()
		return errors.Wrap(err, "Failed to setup exchanges and queues")
	}
	if err := r.openPublishChannelLocked(); err != nil {
		connection.Close()
		return errors.Wrap(err, "Failed to setup publish channel")
	}

	go r.watchConnection(connection)
	return nil
}

func (r *RabbitMQPublisher) declareTopology(connection *amqp091.Connection) error {
	channel, err := connection.Channel()
	if err != nil {
		return errors.Wrap(err, "Failed to open channel for exchange/queue setup")
	}
	defer channel.Close()

	for _, ex := range topologyExchanges {
		// durable, not auto-deleted, not internal
		if err := channel.ExchangeDeclare(ex.name, ex.kind, true, false, false, false, nil); err != nil {
			return errors.Wrapf(err, "Failed to declare exchange %s", ex.name)
		}
	}

	for _, binding := range topologyQueues {
		var args amqp091.Table
		if binding.deadLetter != "" {
			args = amqp091.Table{
				"x-dead-letter-exchange":    binding.deadLetter,
				"x-dead-letter-routing-key": RoutingKeyDeadLetter,
				"x-message-ttl":             r.config.MessageTTL.Milliseconds(),
			}
		}
		if _, err := channel.QueueDeclare(binding.queue, true, false, false, false, args); err != nil {
			return errors.Wrapf(err, "Failed to declare queue %s", binding.queue)
		}
		if err := channel.QueueBind(binding.queue, binding.routingKey, binding.exchange, false, nil); err != nil {
			return errors.Wrapf(err, "Failed to bind queue %s to exchange %s", binding.queue, binding.exchange)
		}
	}

	return nil
}

func (r *RabbitMQPublisher) openPublishChannelLocked() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "Failed to open publish channel")
	}

	if err := channel.Confirm(false); err != nil {
		channel.Close()
		return errors.Wrap(err, "Failed to enable publisher confirms")
	}

	r.confirms = channel.NotifyPublish(make(chan amqp091.Confirmation, 1))
	r.publishChannel = channel
	return nil
}

// resetPublishChannelLocked drops a channel whose confirm state is unknown, so the
// next publish starts on a fresh channel with its own delivery tags.
func (r *RabbitMQPublisher) resetPublishChannelLocked() {
	if r.publishChannel != nil {
		r.publishChannel.Close()
	}
	r.publishChannel = nil
	r.confirms = nil
}

// watchConnection reconnects with exponential backoff once the broker closes connection.
// It exits when the publisher is closed or another caller already reconnected.
func (r *RabbitMQPublisher) watchConnection(connection *amqp091.Connection) {
	notifyClose := connection.NotifyClose(make(chan *amqp091.Error, 1))

	select {
	case closeErr := <-notifyClose:
		if r.isClosed() {
			return
		}
		r.logger.Warnf("RabbitMQ connection closed: %v, attempting to reconnect", closeErr)
	case <-r.closed:
		return
	}

	backoff := r.config.ReconnectBackoff
	for {
		r.mu.Lock()
		if r.connection != connection && r.connection != nil && !r.connection.IsClosed() {
			r.mu.Unlock()
			return
		}
		err := r.connectLocked()
		r.mu.Unlock()

		switch {
		case err == nil:
			r.logger.Info("Successfully reconnected to RabbitMQ")
			return
		case errors.Is(err, ErrPublisherClosed):
			return
		}
		r.logger.Errorf("Failed to reconnect: %v, retrying in %v", err, backoff)

		select {
		case <-r.closed:
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > r.config.MaxReconnectBackoff {
			backoff = r.config.MaxReconnectBackoff
		}
	}
}

func (r *RabbitMQPublisher) publishWithRetry(ctx context.Context, message interface{}, exchange, routingKey string) error {
	body, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "Failed to marshal message")
	}

	var lastErr error
	for attempt := 1; attempt <= r.config.MaxRetries; attempt++ {
		lastErr = r.publishWithConfirm(ctx, body, exchange, routingKey)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrPublisherClosed) {
			return lastErr
		}
		r.logger.Warnf("Publish attempt %d failed: %v", attempt, lastErr)

		if attempt == r.config.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "Publish cancelled")
		case <-time.After(retryBackoffStep * time.Duration(attempt)):
		}
	}

	return errors.Wrap(lastErr, "Failed to publish message after all retries")
}

func (r *RabbitMQPublisher) publishWithConfirm(ctx context.Context, body []byte, exchange, routingKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.connectLocked(); err != nil {
		return err
	}

	deliveryTag := r.publishChannel.GetNextPublishSeqNo()
	err := r.publishChannel.PublishWithContext(ctx, exchange, routingKey,
		true,  // mandatory
		false, // immediate
		amqp091.Publishing{
			DeliveryMode: amqp091.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    utils.Now(),
		})
	if err != nil {
		return errors.Wrap(err, "Failed to publish message")
	}

	if err := awaitConfirm(ctx, r.confirms, deliveryTag, r.config.PublishTimeout); err != nil {
		r.resetPublishChannelLocked()
		return err
	}
	return nil
}

// awaitConfirm waits for the confirmation of deliveryTag. Confirmations for earlier
// tags belong to publishes that already gave up and are skipped.
func awaitConfirm(ctx context.Context, confirms <-chan amqp091.Confirmation, deliveryTag uint64, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case confirm, ok := <-confirms:
			if !ok {
				return errors.New("Publish channel closed before confirmation")
			}
			if confirm.DeliveryTag < deliveryTag {
				continue
			}
			if !confirm.Ack {
				return errors.New("Message was not confirmed by server")
			}
			return nil
		case <-timer.C:
			return errors.New("Publish confirmation timeout")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops reconnection and closes the channel and connection. Safe to call twice.
func (r *RabbitMQPublisher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isClosed() {
		return nil
	}
	close(r.closed)

	var err error
	if r.publishChannel != nil {
		if err = r.publishChannel.Close(); err != nil {
			r.logger.Errorf("Error closing publish channel: %v", err)
		}
	}
	if r.connection != nil {
		if closeErr := r.connection.Close(); closeErr != nil {
			r.logger.Errorf("Error closing connection: %v", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}
	r.publishChannel = nil
	r.confirms = nil
	r.connection = nil
	return err
}
