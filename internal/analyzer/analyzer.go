package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SignalBot/internal/calculator"
	"SignalBot/internal/exchange"
	"SignalBot/internal/metrics"
	"SignalBot/internal/model"
	"SignalBot/internal/notifier"
	"SignalBot/internal/strategy"

	"github.com/rs/zerolog"
)

// Settings is the analysis configuration passed in at construction.
type Settings struct {
	Symbol        string
	Timeframe     string
	Limit         int
	EMAWindow     int
	RSIWindow     int
	RSIOversold   float64
	RSIOverbought float64
}

// Rules returns the evaluator thresholds.
func (s Settings) Rules() strategy.Rules {
	return strategy.Rules{
		EMAWindow:     s.EMAWindow,
		RSIOversold:   s.RSIOversold,
		RSIOverbought: s.RSIOverbought,
	}
}

// Analyze computes indicators and the signal for series. It has no side
// effects and fails only on an empty series.
func Analyze(series *model.PriceSeries, s Settings) (*model.Analysis, error) {
	ind, err := calculator.Compute(series, s.EMAWindow, s.RSIWindow)
	if err != nil {
		return nil, err
	}
	high, low, err := calculator.PriceRange(series.Bars)
	if err != nil {
		return nil, err
	}
	return &model.Analysis{
		Series:     series,
		Indicators: ind,
		Signal:     strategy.Evaluate(series, ind, s.Rules()),
		WindowHigh: high,
		WindowLow:  low,
	}, nil
}

// Runner performs one fetch-analyze-present cycle at a time.
type Runner struct {
	Source   exchange.MarketDataSource
	Sink     notifier.Sink
	Metrics  *metrics.Recorder
	Settings Settings
	Log      zerolog.Logger
}

// NewRunner creates a Runner. metrics may be nil.
func NewRunner(src exchange.MarketDataSource, sink notifier.Sink, m *metrics.Recorder, s Settings, log zerolog.Logger) *Runner {
	return &Runner{
		Source:   src,
		Sink:     sink,
		Metrics:  m,
		Settings: s,
		Log:      log.With().Str("exchange", src.Name()).Str("symbol", s.Symbol).Logger(),
	}
}

// Check pings the exchange and returns the last traded price.
func (r *Runner) Check(ctx context.Context) (float64, error) {
	price, err := r.Source.Ping(ctx, r.Settings.Symbol)
	if err != nil {
		return 0, fmt.Errorf("connectivity check: %w", err)
	}
	r.Log.Info().Float64("price", price).Msg("connected")
	return price, nil
}

// RunCycle fetches the configured window, analyzes it and hands the result
// to the sink. A fetch failure is returned as an *exchange.FetchError.
func (r *Runner) RunCycle(ctx context.Context) (*model.Analysis, error) {
	start := time.Now()
	r.Log.Info().Str("timeframe", r.Settings.Timeframe).Msg("starting analysis")

	series, err := r.Source.FetchCandles(ctx, r.Settings.Symbol, r.Settings.Timeframe, r.Settings.Limit)
	if err != nil {
		if r.Metrics != nil {
			r.Metrics.ObserveFetchError(r.Source.Name(), time.Since(start))
		}
		var fe *exchange.FetchError
		if !errors.As(err, &fe) {
			err = &exchange.FetchError{Exchange: r.Source.Name(), Op: "fetch candles", Err: err}
		}
		return nil, err
	}

	a, err := Analyze(series, r.Settings)
	if err != nil {
		r.observeFailure(start)
		return nil, fmt.Errorf("analyze: %w", err)
	}

	if err := r.Sink.Present(ctx, a); err != nil {
		r.observeFailure(start)
		return nil, fmt.Errorf("present: %w", err)
	}

	if r.Metrics != nil {
		r.Metrics.ObserveAnalysis(a, time.Since(start))
	}
	r.Log.Info().
		Int("bars", series.Len()).
		Str("signal", string(a.Signal.Action)).
		Str("reason", a.Signal.Reason).
		Dur("took", time.Since(start)).
		Msg("analysis complete")
	return a, nil
}

func (r *Runner) observeFailure(start time.Time) {
	if r.Metrics != nil {
		r.Metrics.ObserveFailure(time.Since(start))
	}
}
