package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Add(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{"daily after midnight", "5 0 * * *", false},
		{"descriptor", "@hourly", false},
		{"interval", "@every 30s", false},
		{"seconds field rejected", "0 5 0 * * *", true},
		{"garbage", "not a spec", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(time.UTC, nil)
			_, err := s.Add("job", tt.spec, func(context.Context) error { return nil })
			if tt.wantErr {
				assert.Error(t, err)
				assert.Error(t, ValidateSpec(tt.spec))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestScheduler_EveryRunsJob(t *testing.T) {
	s := New(time.UTC, nil)
	var runs atomic.Int32
	_, err := s.Every("tick", time.Second, func(context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, err)

	s.Start()
	defer func() { _ = s.Stop(context.Background()) }()

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_EveryRejectsNonPositive(t *testing.T) {
	s := New(nil, nil)
	_, err := s.Every("tick", 0, func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestScheduler_NextAfterStart(t *testing.T) {
	s := New(time.UTC, nil)
	id, err := s.Add("rollover", "@daily", func(context.Context) error { return nil })
	require.NoError(t, err)

	s.Start()
	defer func() { _ = s.Stop(context.Background()) }()

	assert.Eventually(t, func() bool { return !s.Next(id).IsZero() }, time.Second, 10*time.Millisecond)
	next := s.Next(id)
	assert.Equal(t, 0, next.Hour())
	assert.True(t, next.After(time.Now()))
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := New(time.UTC, nil)
	started := make(chan struct{})
	var cancelled atomic.Bool
	_, err := s.Every("long", time.Second, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	})
	require.NoError(t, err)

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.True(t, cancelled.Load())
	assert.NoError(t, s.Stop(ctx))
}

func TestScheduler_RunNowSwallowsError(t *testing.T) {
	s := New(time.UTC, nil)
	var called bool
	s.RunNow("once", func(context.Context) error {
		called = true
		return errors.New("boom")
	})
	assert.True(t, called)
}
