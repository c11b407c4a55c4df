package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name        string
		decodeErr   error
		handleErr   error
		redelivered bool
		want        deliveryOutcome
	}{
		{"handled", nil, nil, false, outcomeAck},
		{"handled on redelivery", nil, nil, true, outcomeAck},
		{"undecodable", boom, nil, false, outcomeAck},
		{"first failure requeues", nil, boom, false, outcomeRequeue},
		{"second failure rejects", nil, boom, true, outcomeReject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, settle(tt.decodeErr, tt.handleErr, tt.redelivered))
		})
	}
}

func TestRabbitMQConfig_Defaults(t *testing.T) {
	cfg := RabbitMQConfig{URL: "amqp://localhost"}
	cfg.applyDefaults()

	assert.Equal(t, ExchangeName, cfg.Exchange)
	assert.Equal(t, DefaultConsumerQueueName, cfg.QueueName)
	assert.Equal(t, DefaultPrefetch, cfg.Prefetch)
	assert.NotNil(t, cfg.Logger)
}

type captureConsumer struct {
	mu     sync.Mutex
	events []*ConsumedEvent
}

func (c *captureConsumer) EventTypes() []string { return []string{"planning.task.created"} }

func (c *captureConsumer) Handle(_ context.Context, e *ConsumedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *captureConsumer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestRabbitMQ_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_RABBITMQ_URL")
	if url == "" {
		t.Skip("TEST_RABBITMQ_URL not set, skipping integration test")
	}

	cfg := RabbitMQConfig{
		URL:       url,
		Exchange:  "tempo.test." + uuid.NewString(),
		QueueName: "tempo.test." + uuid.NewString(),
	}

	consumer, err := NewRabbitMQConsumer(cfg, nil)
	require.NoError(t, err)
	defer consumer.Close()

	capture := &captureConsumer{}
	consumer.RegisterConsumer(capture)

	publisher, err := NewRabbitMQPublisher(cfg)
	require.NoError(t, err)
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Start(ctx) }()

	body, err := json.Marshal(ConsumedEvent{EventID: uuid.New(), RoutingKey: "planning.task.created"})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, "planning.task.created", body))

	assert.Eventually(t, func() bool { return capture.count() == 1 }, 5*time.Second, 20*time.Millisecond)
}
