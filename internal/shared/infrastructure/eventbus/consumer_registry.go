package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/tempo/pkg/observability"
)

// ConsumerRegistry routes events to the consumers registered for their
// routing key.
type ConsumerRegistry struct {
	mu        sync.RWMutex
	consumers map[string][]EventConsumer
	logger    *slog.Logger
	metrics   observability.Metrics
}

// NewConsumerRegistry creates an empty registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{
		consumers: make(map[string][]EventConsumer),
		logger:    logger,
		metrics:   observability.NoopMetrics{},
	}
}

// SetMetrics records dispatch counts and durations on m.
func (r *ConsumerRegistry) SetMetrics(m observability.Metrics) {
	if m == nil {
		return
	}
	r.mu.Lock()
	r.metrics = m
	r.mu.Unlock()
}

// Register adds a consumer for its declared event types.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, eventType := range consumer.EventTypes() {
		r.consumers[eventType] = append(r.consumers[eventType], consumer)
		r.logger.Debug("registered consumer", "event_type", eventType)
	}
}

// GetConsumers returns the consumers registered for eventType.
func (r *ConsumerRegistry) GetConsumers(eventType string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]EventConsumer(nil), r.consumers[eventType]...)
}

// GetAllEventTypes returns every routing key with a consumer, sorted.
func (r *ConsumerRegistry) GetAllEventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.consumers))
	for t := range r.consumers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ConsumerCount returns the number of registrations across all event types.
func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, consumers := range r.consumers {
		count += len(consumers)
	}
	return count
}

// Dispatch hands the event to every matching consumer. A failing consumer
// does not stop the others; all failures are joined into the result.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.GetConsumers(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for event", "routing_key", event.RoutingKey)
		return nil
	}

	r.mu.RLock()
	metrics := r.metrics
	r.mu.RUnlock()

	start := time.Now()
	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}

	status := "ok"
	if len(errs) > 0 {
		status = "error"
	}
	tags := []observability.Tag{
		observability.T("routing_key", event.RoutingKey),
		observability.T("status", status),
	}
	metrics.Counter(observability.MetricEventsConsumed, 1, tags...)
	metrics.Timing(observability.MetricOperationDuration, time.Since(start), observability.T("operation", "dispatch"))

	return errors.Join(errs...)
}
