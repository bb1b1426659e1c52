package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"SignalBot/internal/exchange"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRun_TicksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	s := NewScheduler(ctx, time.Second, func(context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 20*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	require.GreaterOrEqual(t, s.Runs(), int64(2))
}

func TestRun_FetchErrorsDoNotStopLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	s := NewScheduler(ctx, time.Second, func(context.Context) error {
		calls.Add(1)
		return &exchange.FetchError{Exchange: "mock", Op: "fetch candles", Err: errors.New("timeout")}
	}, zerolog.Nop())

	go func() { _ = s.Run() }()
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 20*time.Millisecond)
	cancel()
}

func TestTick_SkipsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	s := NewScheduler(ctx, time.Second, func(context.Context) error {
		called = true
		return nil
	}, zerolog.Nop())
	s.RunNow()

	require.False(t, called)
	require.Zero(t, s.Runs())
}

func TestRegister_RejectsNonPositiveInterval(t *testing.T) {
	s := NewScheduler(context.Background(), 0, func(context.Context) error { return nil }, zerolog.Nop())
	require.Error(t, s.Register())
}

func TestRunNow_RecoversPanic(t *testing.T) {
	s := NewScheduler(context.Background(), time.Second, func(context.Context) error {
		panic("bad bar")
	}, zerolog.Nop())

	require.NotPanics(t, s.RunNow)
	require.Equal(t, int64(1), s.Runs())
}

func TestRun_FirstCyclePanicKeepsLooping(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	s := NewScheduler(ctx, time.Second, func(context.Context) error {
		if calls.Add(1) == 1 {
			panic("bad bar")
		}
		return nil
	}, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
