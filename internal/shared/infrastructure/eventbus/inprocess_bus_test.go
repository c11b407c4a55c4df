package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessEventBus_Publish(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil)
	consumer := &mockConsumer{eventTypes: []string{"planning.task.created"}}
	bus.RegisterConsumer(consumer)

	event := taskEvent("")
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), "planning.task.created", payload))

	require.Equal(t, 1, consumer.Received())
	assert.Equal(t, event.EventID, consumer.events[0].EventID)
	assert.Equal(t, "planning.task.created", consumer.events[0].RoutingKey)
}

func TestInProcessEventBus_DropsUndecodablePayload(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil)
	consumer := &mockConsumer{eventTypes: []string{"planning.task.created"}}
	bus.RegisterConsumer(consumer)

	assert.NoError(t, bus.Publish(context.Background(), "planning.task.created", []byte("not json")))
	assert.Equal(t, 0, consumer.Received())
}

func TestInProcessEventBus_ConsumerErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("lenient bus swallows errors", func(t *testing.T) {
		bus := eventbus.NewInProcessEventBus(nil)
		bus.RegisterConsumer(&mockConsumer{eventTypes: []string{"planning.task.split"}, err: boom})
		assert.NoError(t, bus.PublishConsumedEvent(context.Background(), taskEvent("planning.task.split")))
	})

	t.Run("strict bus surfaces errors", func(t *testing.T) {
		bus := eventbus.NewInProcessEventBus(nil).Strict()
		bus.RegisterConsumer(&mockConsumer{eventTypes: []string{"planning.task.split"}, err: boom})
		assert.ErrorIs(t, bus.PublishConsumedEvent(context.Background(), taskEvent("planning.task.split")), boom)
	})
}

func TestInProcessEventBus_StartBlocksUntilCancel(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, bus.Start(ctx), context.DeadlineExceeded)
	assert.NoError(t, bus.Close())
	assert.NotNil(t, bus.Registry())
}
