package model

import "time"

// Candle represents a single OHLCV bar as returned by the exchange.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the candles fetched for one analysis cycle, oldest first.
type PriceSeries struct {
	Symbol    string
	Timeframe string
	Bars      []Candle
	FetchedAt time.Time
}

// Len returns the number of bars in the series.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Closes extracts the close prices in series order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, s.Len())
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar. It panics on an empty series.
func (s *PriceSeries) Last() Candle {
	return s.Bars[len(s.Bars)-1]
}
