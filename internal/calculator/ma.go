package calculator

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned when there is nothing to compute over.
var ErrInsufficientData = errors.New("insufficient data")

var errNonPositivePeriod = errors.New("period must be positive")

// CalculateSMA computes the simple moving average of the first period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errNonPositivePeriod
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	// Running mean: identical inputs give exactly that value back.
	mean := 0.0
	for i := 0; i < period; i++ {
		mean += (values[i] - mean) / float64(i+1)
	}
	return mean, nil
}

// CalculateEMA computes the exponential moving average of values over period.
//
// The result has the same length as values. With at least period values the
// recurrence is seeded at index period-1 with the SMA of the first period
// values and earlier indices are NaN; with fewer values it is seeded with the
// first value. Leading NaN inputs are skipped and stay NaN in the output.
// A constant input yields exactly that constant from the seed onwards.
func CalculateEMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errNonPositivePeriod
	}
	if len(values) == 0 {
		return nil, ErrInsufficientData
	}

	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}

	start := firstFinite(values)
	if start < 0 {
		return out, nil
	}
	tail := values[start:]

	seedAt := 0
	seed := tail[0]
	if len(tail) >= period {
		seedAt = period - 1
		seed, _ = CalculateSMA(tail, period)
	}
	out[start+seedAt] = seed

	k := 2.0 / float64(period+1)
	for i := seedAt + 1; i < len(tail); i++ {
		prev := out[start+i-1]
		out[start+i] = prev + (tail[i]-prev)*k
	}
	return out, nil
}

func firstFinite(values []float64) int {
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}
