package calculator

import "math"

// MACD windows. These do not follow the configured EMA/RSI windows.
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// CalculateMACD returns the MACD line, its signal line and the histogram.
// The histogram is macd - signal at every index where both are defined.
func CalculateMACD(closes []float64) (macd, signal, diff []float64, err error) {
	fast, err := CalculateEMA(closes, MACDFast)
	if err != nil {
		return nil, nil, nil, err
	}
	slow, err := CalculateEMA(closes, MACDSlow)
	if err != nil {
		return nil, nil, nil, err
	}

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}

	signal, err = CalculateEMA(macd, MACDSignal)
	if err != nil {
		return nil, nil, nil, err
	}

	diff = make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(macd[i]) || math.IsNaN(signal[i]) {
			diff[i] = math.NaN()
			continue
		}
		diff[i] = macd[i] - signal[i]
	}
	return macd, signal, diff, nil
}
