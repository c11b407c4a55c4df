package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/tempo/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	RoutingKey string
	Payload    []byte
}

// mockPublisher records publishes and fails for configured routing keys.
type mockPublisher struct {
	mu          sync.Mutex
	published   []publishedMessage
	failForKeys map[string]bool
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{failForKeys: make(map[string]bool)}
}

func (p *mockPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failForKeys[routingKey] {
		return errors.New("publish failed")
	}
	p.published = append(p.published, publishedMessage{RoutingKey: routingKey, Payload: payload})
	return nil
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) Published() []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedMessage(nil), p.published...)
}

func createTestMessage(routingKey string) *outbox.Message {
	payload, _ := json.Marshal(map[string]string{"title": "Write report"})
	return &outbox.Message{
		EventID:       uuid.New(),
		AggregateType: "Task",
		AggregateID:   uuid.New(),
		EventType:     routingKey,
		RoutingKey:    routingKey,
		Payload:       payload,
		CreatedAt:     time.Now().Add(-time.Second),
	}
}

func TestProcessor_ProcessOnce(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	publisher := newMockPublisher()
	metrics := observability.NewInMemoryMetrics()
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), nil, outbox.WithMetrics(metrics))

	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{createTestMessage("planning.task.created")}))
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{createTestMessage("planning.task.split")}))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Len(t, publisher.Published(), 2)
	for _, msg := range repo.Messages() {
		assert.True(t, msg.IsPublished())
	}

	stats := processor.GetStats()
	assert.Equal(t, uint64(2), stats.PublishedCount)
	assert.NotNil(t, stats.LastProcessedAt)
	assert.NotNil(t, stats.OldestMessageAt)
	assert.Greater(t, stats.LagSeconds, 0.0)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEventsPublished, observability.T("routing_key", "planning.task.created")))

	// Nothing left to publish.
	require.NoError(t, processor.ProcessOnce(ctx))
	assert.Len(t, publisher.Published(), 2)
}

func TestProcessor_PublishesConsumableEnvelope(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	publisher := newMockPublisher()
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), nil)

	msg := createTestMessage("planning.task.rescheduled")
	userID := uuid.New()
	msg.Metadata, _ = json.Marshal(map[string]string{"UserID": userID.String()})
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{msg}))

	require.NoError(t, processor.ProcessOnce(ctx))
	require.Len(t, publisher.Published(), 1)

	var event eventbus.ConsumedEvent
	require.NoError(t, json.Unmarshal(publisher.Published()[0].Payload, &event))
	assert.Equal(t, msg.EventID, event.EventID)
	assert.Equal(t, msg.AggregateID, event.AggregateID)
	assert.Equal(t, "planning.task.rescheduled", event.RoutingKey)
	assert.Equal(t, userID, event.Metadata.UserID)
	assert.JSONEq(t, `{"title":"Write report"}`, string(event.Payload))
}

func TestProcessor_ProcessOnce_PublishFailure(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	publisher := newMockPublisher()
	publisher.failForKeys["planning.task.deleted"] = true

	fixed := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), nil,
		outbox.WithProcessorClock(func() time.Time { return fixed }))

	ok := createTestMessage("planning.task.created")
	bad := createTestMessage("planning.task.deleted")
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{ok, bad}))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Len(t, publisher.Published(), 1)
	assert.True(t, ok.IsPublished())
	assert.False(t, bad.IsPublished())
	assert.Equal(t, 1, bad.RetryCount)
	require.NotNil(t, bad.NextRetryAt)
	assert.Equal(t, fixed.Add(time.Second), *bad.NextRetryAt)
	require.NotNil(t, bad.LastError)
	assert.Equal(t, "publish failed", *bad.LastError)

	stats := processor.GetStats()
	assert.Equal(t, uint64(1), stats.PublishedCount)
	assert.Equal(t, uint64(1), stats.FailedCount)
	assert.NotNil(t, stats.LastErrorAt)
}

func TestProcessor_ProcessOnce_DeadLettersAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	publisher := newMockPublisher()
	publisher.failForKeys["planning.task.completed"] = true
	metrics := observability.NewInMemoryMetrics()

	config := outbox.DefaultProcessorConfig()
	config.MaxRetries = 1
	processor := outbox.NewProcessor(repo, publisher, config, nil, outbox.WithMetrics(metrics))

	msg := createTestMessage("planning.task.completed")
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{msg}))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Empty(t, publisher.Published())
	assert.Equal(t, 0, msg.RetryCount)
	require.NotNil(t, msg.DeadLetteredAt)
	assert.Equal(t, uint64(1), processor.GetStats().DeadCount)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEventsDeadLettered, observability.T("routing_key", "planning.task.completed")))

	unpublished, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, unpublished)
}

func TestProcessorConfig_Backoff(t *testing.T) {
	config := outbox.ProcessorConfig{
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  10 * time.Second,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{64, 10 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, config.Backoff(tt.attempt), "attempt %d", tt.attempt)
	}

	assert.Equal(t, time.Second, outbox.ProcessorConfig{}.Backoff(1))
}

func TestProcessor_StartStop(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()
	publisher := newMockPublisher()
	config := outbox.ProcessorConfig{
		PollInterval:     10 * time.Millisecond,
		BatchSize:        10,
		MaxRetries:       3,
		RetryBackoffBase: time.Millisecond,
		RetryBackoffMax:  10 * time.Millisecond,
	}
	processor := outbox.NewProcessor(repo, publisher, config, nil)

	require.NoError(t, processor.Start(ctx))
	assert.True(t, processor.IsRunning())
	assert.True(t, processor.GetStats().IsRunning)

	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{createTestMessage("planning.task.created")}))

	assert.Eventually(t, func() bool {
		return len(publisher.Published()) == 1
	}, time.Second, 5*time.Millisecond)

	processor.Stop()
	assert.False(t, processor.IsRunning())
	assert.False(t, processor.GetStats().IsRunning)
}

func TestProcessor_StartAndStopAreIdempotent(t *testing.T) {
	processor := outbox.NewProcessor(outbox.NewInMemoryRepository(), newMockPublisher(), outbox.DefaultProcessorConfig(), nil)

	require.NoError(t, processor.Start(context.Background()))
	require.NoError(t, processor.Start(context.Background()))

	processor.Stop()
	processor.Stop()
	assert.False(t, processor.IsRunning())
}

func TestProcessor_RunReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	processor := outbox.NewProcessor(outbox.NewInMemoryRepository(), newMockPublisher(), outbox.ProcessorConfig{PollInterval: 5 * time.Millisecond}, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- processor.Run(ctx) }()

	assert.Eventually(t, processor.IsRunning, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, processor.IsRunning())
}

func TestInMemoryRepository_DeleteOld(t *testing.T) {
	ctx := context.Background()
	repo := outbox.NewInMemoryRepository()

	old := createTestMessage("planning.task.created")
	fresh := createTestMessage("planning.task.created")
	require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{old, fresh}))

	require.NoError(t, repo.MarkPublished(ctx, old.ID))
	require.NoError(t, repo.MarkPublished(ctx, fresh.ID))
	longAgo := time.Now().AddDate(0, 0, -30)
	old.PublishedAt = &longAgo

	removed, err := repo.DeleteOld(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Len(t, repo.Messages(), 1)
}
