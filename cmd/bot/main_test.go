package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SignalBot/internal/analyzer"
	"SignalBot/internal/exchange"
	"SignalBot/internal/notifier"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestStopped_InterruptIsClean(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := &exchange.FetchError{Exchange: "binance", Op: "fetch candles", Err: context.Canceled}
	require.NoError(t, stopped(ctx, zerolog.Nop(), err))
	require.NoError(t, stopped(ctx, zerolog.Nop(), fmt.Errorf("cannot reach exchange: %w", err)))
}

func TestStopped_KeepsRealErrors(t *testing.T) {
	live := context.Background()
	require.NoError(t, stopped(live, zerolog.Nop(), nil))

	boom := errors.New("status 500")
	require.ErrorIs(t, stopped(live, zerolog.Nop(), boom), boom)

	// A cancellation that did not come from our context is still a failure.
	inner := &exchange.FetchError{Exchange: "okx", Op: "ping", Err: context.Canceled}
	require.Error(t, stopped(live, zerolog.Nop(), inner))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, stopped(ctx, zerolog.Nop(), boom), boom)
}

func TestStopped_InterruptDuringCycle(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	src := exchange.NewBinance(exchange.Options{BaseURL: srv.URL})
	sink := notifier.NewConsoleSink(io.Discard, 50, false)
	runner := analyzer.NewRunner(src, sink, nil, analyzer.Settings{
		Symbol: "BTC/USDT", Timeframe: "1h", Limit: 100, EMAWindow: 50, RSIWindow: 14,
		RSIOversold: 30, RSIOverbought: 70,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := runner.RunCycle(ctx)
	var fe *exchange.FetchError
	require.ErrorAs(t, err, &fe)
	require.NoError(t, stopped(ctx, zerolog.Nop(), err))
}
