package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName is the topic exchange planning events are published to.
	ExchangeName = "tempo.planning.events"

	// DefaultConsumerQueueName is the durable queue the worker consumes from.
	DefaultConsumerQueueName = "tempo.planning.worker"

	// DefaultPrefetch bounds unacknowledged deliveries per consumer.
	DefaultPrefetch = 8
)

// RabbitMQConfig describes a broker connection.
type RabbitMQConfig struct {
	URL       string
	Exchange  string
	QueueName string
	Prefetch  int
	Logger    *slog.Logger
}

func (c *RabbitMQConfig) applyDefaults() {
	if c.Exchange == "" {
		c.Exchange = ExchangeName
	}
	if c.QueueName == "" {
		c.QueueName = DefaultConsumerQueueName
	}
	if c.Prefetch <= 0 {
		c.Prefetch = DefaultPrefetch
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

func dialExchange(cfg RabbitMQConfig) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	return conn, ch, nil
}

// RabbitMQPublisher publishes envelopes to the topic exchange.
type RabbitMQPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
}

// NewRabbitMQPublisher connects and declares the exchange.
func NewRabbitMQPublisher(cfg RabbitMQConfig) (*RabbitMQPublisher, error) {
	cfg.applyDefaults()

	conn, ch, err := dialExchange(cfg)
	if err != nil {
		return nil, err
	}

	cfg.Logger.Info("rabbitmq publisher connected", "exchange", cfg.Exchange)
	return &RabbitMQPublisher{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		logger:   cfg.Logger,
	}, nil
}

// Publish sends a persistent JSON message with the given routing key.
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         routingKey,
		Body:         payload,
	}
	if event, err := DecodeEvent(payload, routingKey); err == nil {
		msg.MessageId = event.EventID.String()
		msg.CorrelationId = event.Metadata.CorrelationID
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.logger.Debug("message published", "routing_key", routingKey, "size", len(payload))
	return nil
}

// Close closes the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Warn("close channel", "error", err)
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// deliveryOutcome is what to do with a delivery after dispatch.
type deliveryOutcome int

const (
	outcomeAck deliveryOutcome = iota
	outcomeRequeue
	outcomeReject
)

// settle decides the fate of a delivery. Undecodable messages are acked and
// dropped. A failed handler gets one redelivery, then the message is
// rejected so it cannot loop forever.
func settle(decodeErr, handleErr error, redelivered bool) deliveryOutcome {
	switch {
	case decodeErr != nil:
		return outcomeAck
	case handleErr == nil:
		return outcomeAck
	case redelivered:
		return outcomeReject
	default:
		return outcomeRequeue
	}
}

// RabbitMQConsumer feeds deliveries from a durable queue into a registry.
type RabbitMQConsumer struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	cfg      RabbitMQConfig
	registry *ConsumerRegistry
	logger   *slog.Logger
	running  bool
	closing  chan struct{}
}

// NewRabbitMQConsumer connects, declares the exchange and the queue.
func NewRabbitMQConsumer(cfg RabbitMQConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	cfg.applyDefaults()
	if registry == nil {
		registry = NewConsumerRegistry(cfg.Logger)
	}

	conn, ch, err := dialExchange(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", cfg.QueueName, err)
	}

	cfg.Logger.Info("rabbitmq consumer connected", "queue", cfg.QueueName, "exchange", cfg.Exchange)
	return &RabbitMQConsumer{
		conn:     conn,
		channel:  ch,
		cfg:      cfg,
		registry: registry,
		logger:   cfg.Logger,
		closing:  make(chan struct{}),
	}, nil
}

// RegisterConsumer registers the consumer and binds its routing keys.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range consumer.EventTypes() {
		if err := c.channel.QueueBind(c.cfg.QueueName, key, c.cfg.Exchange, false, nil); err != nil {
			c.logger.Error("bind queue", "routing_key", key, "error", err)
		}
	}
}

// Start consumes until ctx is done or Close is called.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	if err := c.channel.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := c.channel.Consume(c.cfg.QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.QueueName, err)
	}

	c.logger.Info("consuming events", "queue", c.cfg.QueueName, "prefetch", c.cfg.Prefetch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closing:
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *RabbitMQConsumer) handle(ctx context.Context, d amqp.Delivery) {
	event, decodeErr := DecodeEvent(d.Body, d.RoutingKey)
	var handleErr error
	if decodeErr != nil {
		c.logger.Error("dropping undecodable delivery", "routing_key", d.RoutingKey, "error", decodeErr)
	} else {
		handleErr = c.registry.Dispatch(ctx, event)
	}

	var ackErr error
	switch settle(decodeErr, handleErr, d.Redelivered) {
	case outcomeAck:
		ackErr = d.Ack(false)
	case outcomeRequeue:
		ackErr = d.Nack(false, true)
	case outcomeReject:
		c.logger.Error("rejecting event after redelivery",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			"error", handleErr,
		)
		ackErr = d.Nack(false, false)
	}
	if ackErr != nil {
		c.logger.Error("settle delivery", "routing_key", d.RoutingKey, "error", ackErr)
	}
}

// Close stops Start and closes the connection.
func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.closing:
		return nil
	default:
		close(c.closing)
	}
	c.running = false

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("close channel", "error", err)
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
