package exchange

import (
	"context"
	"math"
	"time"

	"SignalBot/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Price float64
	Bars  []model.Candle
	Err   error
	// Now anchors generated bars; zero means time.Now.
	Now time.Time
}

// NewMock creates a mock source that generates bars around price.
func NewMock(price float64) *MockSource {
	return &MockSource{Price: price}
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) FetchCandles(_ context.Context, symbol, timeframe string, limit int) (*model.PriceSeries, error) {
	if m.Err != nil {
		return nil, &FetchError{Exchange: m.Name(), Op: "fetch candles", Err: m.Err}
	}
	bars := m.Bars
	if bars == nil {
		bars = generateMockBars(m.Price, limit, m.now(), timeframeDuration(timeframe))
	}
	return &model.PriceSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Bars:      normalize(append([]model.Candle(nil), bars...), limit),
		FetchedAt: m.now(),
	}, nil
}

func (m *MockSource) Ping(_ context.Context, _ string) (float64, error) {
	if m.Err != nil {
		return 0, &FetchError{Exchange: m.Name(), Op: "ping", Err: m.Err}
	}
	if len(m.Bars) > 0 {
		return m.Bars[len(m.Bars)-1].Close, nil
	}
	return m.Price, nil
}

func (m *MockSource) now() time.Time {
	if m.Now.IsZero() {
		return time.Now()
	}
	return m.Now
}

func generateMockBars(basePrice float64, count int, end time.Time, step time.Duration) []model.Candle {
	if count <= 0 {
		count = 100
	}
	end = end.Truncate(step)
	bars := make([]model.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.02*math.Sin(float64(i)/8) + float64(i-count/2)*0.0005)
		bars[i] = model.Candle{
			Time:   end.Add(-time.Duration(count-1-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000,
		}
	}
	return bars
}

// timeframeDuration converts "15m", "1h", "1d" style names; unknown names map to one hour.
func timeframeDuration(tf string) time.Duration {
	if tf == "1M" {
		return 30 * 24 * time.Hour
	}
	if len(tf) < 2 {
		return time.Hour
	}
	n := 0
	for _, r := range tf[:len(tf)-1] {
		if r < '0' || r > '9' {
			return time.Hour
		}
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		return time.Hour
	}
	switch tf[len(tf)-1] {
	case 'm':
		return time.Duration(n) * time.Minute
	case 'h':
		return time.Duration(n) * time.Hour
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}
