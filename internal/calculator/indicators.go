package calculator

import (
	"fmt"

	"SignalBot/internal/model"
)

// Compute derives the full IndicatorSet for a series using the given EMA and
// RSI windows. MACD always uses 12/26/9.
func Compute(series *model.PriceSeries, emaWindow, rsiWindow int) (*model.IndicatorSet, error) {
	if series.Len() == 0 {
		return nil, ErrInsufficientData
	}
	closes := series.Closes()

	ema, err := CalculateEMA(closes, emaWindow)
	if err != nil {
		return nil, fmt.Errorf("ema(%d): %w", emaWindow, err)
	}
	rsi, err := CalculateRSI(closes, rsiWindow)
	if err != nil {
		return nil, fmt.Errorf("rsi(%d): %w", rsiWindow, err)
	}
	macd, signal, diff, err := CalculateMACD(closes)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}

	return &model.IndicatorSet{
		EMA:        ema,
		RSI:        rsi,
		MACD:       macd,
		MACDSignal: signal,
		MACDDiff:   diff,
	}, nil
}
