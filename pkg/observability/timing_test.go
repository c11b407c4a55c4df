package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer(t *testing.T) {
	metrics := NewInMemoryMetrics()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	StartTimer("pack").WithLogger(logger).WithMetrics(metrics).WithTags(T("user", "u1")).Stop()

	tags := []Tag{T("user", "u1"), T(OperationKey, "pack")}
	assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationTotal, tags...))
	assert.Equal(t, int64(0), metrics.GetCounter(MetricOperationErrors, tags...))
	assert.Len(t, metrics.GetTimings(MetricOperationDuration, tags...), 1)
	assert.Contains(t, buf.String(), "operation completed")
}

func TestTimeOperation(t *testing.T) {
	metrics := NewInMemoryMetrics()
	boom := errors.New("boom")

	err := TimeOperation(context.Background(), nil, metrics, "rollover", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationErrors, T(OperationKey, "rollover")))

	n, err := TimeOperationResult(context.Background(), nil, metrics, "split", func(context.Context) (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationTotal, T(OperationKey, "split")))
}
