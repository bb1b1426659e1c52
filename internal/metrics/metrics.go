package metrics

import (
	"math"
	"time"

	"SignalBot/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes per-cycle observations as Prometheus instruments.
type Recorder struct {
	cycles       *prometheus.CounterVec
	fetchErrors  *prometheus.CounterVec
	signals      *prometheus.CounterVec
	lastSignal   *prometheus.GaugeVec
	lastValue    *prometheus.GaugeVec
	cycleLatency prometheus.Histogram
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_cycles_total",
			Help: "Analysis cycles by outcome",
		}, []string{"outcome"}),
		fetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_fetch_errors_total",
			Help: "Market data fetch failures",
		}, []string{"exchange"}),
		signals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_signals_total",
			Help: "Signals produced by action",
		}, []string{"symbol", "action"}),
		lastSignal: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "signalbot_last_signal",
			Help: "Most recent signal: 1 buy, -1 sell, 0 hold",
		}, []string{"symbol"}),
		lastValue: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "signalbot_last_value",
			Help: "Latest close and indicator values",
		}, []string{"symbol", "series"}),
		cycleLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalbot_cycle_duration_seconds",
			Help:    "Duration of a full fetch and analysis cycle",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveAnalysis records a successful cycle.
func (r *Recorder) ObserveAnalysis(a *model.Analysis, took time.Duration) {
	symbol := a.Series.Symbol
	r.cycles.WithLabelValues("ok").Inc()
	r.cycleLatency.Observe(took.Seconds())
	r.signals.WithLabelValues(symbol, string(a.Signal.Action)).Inc()
	r.lastSignal.WithLabelValues(symbol).Set(actionValue(a.Signal.Action))

	last := a.Series.Len() - 1
	if last < 0 {
		return
	}
	r.setValue(symbol, "close", a.Series.Bars[last].Close)
	r.setValue(symbol, "ema", a.Indicators.EMA[last])
	r.setValue(symbol, "rsi", a.Indicators.RSI[last])
	r.setValue(symbol, "macd", a.Indicators.MACD[last])
	r.setValue(symbol, "macd_signal", a.Indicators.MACDSignal[last])
	r.setValue(symbol, "macd_diff", a.Indicators.MACDDiff[last])
}

// ObserveFetchError records a failed cycle caused by the market data source.
func (r *Recorder) ObserveFetchError(exchange string, took time.Duration) {
	r.cycles.WithLabelValues("fetch_error").Inc()
	r.fetchErrors.WithLabelValues(exchange).Inc()
	r.cycleLatency.Observe(took.Seconds())
}

// ObserveFailure records a cycle that failed after data was fetched.
func (r *Recorder) ObserveFailure(took time.Duration) {
	r.cycles.WithLabelValues("error").Inc()
	r.cycleLatency.Observe(took.Seconds())
}

func (r *Recorder) setValue(symbol, series string, v float64) {
	if math.IsNaN(v) {
		return
	}
	r.lastValue.WithLabelValues(symbol, series).Set(v)
}

func actionValue(a model.Action) float64 {
	switch a {
	case model.ActionBuy:
		return 1
	case model.ActionSell:
		return -1
	default:
		return 0
	}
}
