package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	iterations := 0

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := Loop(ctx, Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(context.Context) error {
			iterations++
			return nil
		},
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Greater(t, iterations, 0)
}

func TestLoopOnErrorExit(t *testing.T) {
	boom := errors.New("boom")

	err := Loop(context.Background(), Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(context.Context) error {
			return boom
		},
		OnError: func(err error) bool {
			return false
		},
	})

	assert.ErrorIs(t, err, boom)
}

func TestLoopOnErrorContinue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0

	err := Loop(ctx, Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(context.Context) error {
			calls++
			if calls >= 3 {
				cancel()
			}

			return errors.New("transient")
		},
		OnError: func(error) bool { return true },
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestLoopLifecycleHooks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	started := false
	stopped := false

	err := Loop(ctx, Config{
		Name:    "test",
		OnStart: func(context.Context) { started = true },
		OnStop:  func() { stopped = true },
	})

	require.Error(t, err)
	assert.True(t, started)
	assert.True(t, stopped)
}

func TestWait(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, Wait(ctx, time.Second))
}
