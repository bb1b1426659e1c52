package model

// IndicatorSet holds per-bar indicator values aligned 1:1 with a PriceSeries.
// Values that are not yet defined for early bars are NaN.
type IndicatorSet struct {
	EMA        []float64
	RSI        []float64
	MACD       []float64
	MACDSignal []float64
	MACDDiff   []float64
}

// Len returns the number of rows in the set.
func (s *IndicatorSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.EMA)
}
