package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleTickerLoop_RunOnStartAndTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ticks atomic.Int32

	stopped := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- SingleTickerLoop(ctx, SingleTickerConfig{
			Name:       "test",
			Interval:   10 * time.Millisecond,
			RunOnStart: true,
			OnTick: func(context.Context) {
				ticks.Add(1)
			},
			OnStop: func() { close(stopped) },
		})
	}()

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	err := <-done
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	select {
	case <-stopped:
	default:
		t.Fatal("OnStop was not called")
	}
}

func TestSingleTickerLoop_RunOnStartIsImmediate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ticks atomic.Int32

	err := SingleTickerLoop(ctx, SingleTickerConfig{
		Name:       "immediate",
		Interval:   time.Hour,
		RunOnStart: true,
		OnTick: func(context.Context) {
			ticks.Add(1)
			cancel()
		},
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), ticks.Load())
}

func TestSingleTickerLoop_InvalidInterval(t *testing.T) {
	err := SingleTickerLoop(context.Background(), SingleTickerConfig{Name: "bad"})
	require.Error(t, err)
}

func TestWait(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), 0))
	assert.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
}

func TestRunWithTimeout(t *testing.T) {
	err := RunWithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()

		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = RunWithTimeout(context.Background(), 0, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.False(t, ok)

		return nil
	})
	assert.NoError(t, err)
}
