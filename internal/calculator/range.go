package calculator

import (
	"math"

	"SignalBot/internal/model"
)

// PriceRange scans the fetched window and returns its high and low.
func PriceRange(bars []model.Candle) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, ErrInsufficientData
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, nil
}
