package strategy

import (
	"strings"

	"SignalBot/internal/model"
)

const (
	// ReasonSeparator joins the triggered clauses of a signal.
	ReasonSeparator = " | "

	ReasonInsufficientData = "insufficient data"
	ReasonNoMatch          = "no matching conditions"

	// BUY needs two triggered clauses, SELL only one.
	minBuyConditions  = 2
	minSellConditions = 1
)

// Rules holds the thresholds the evaluator compares against.
type Rules struct {
	EMAWindow     int
	RSIOversold   float64
	RSIOverbought float64
}

// Evaluate classifies the latest bar of series into BUY, SELL or HOLD.
// Only the last two indicator rows are consulted. A series shorter than the
// EMA window is a HOLD with ReasonInsufficientData.
func Evaluate(series *model.PriceSeries, ind *model.IndicatorSet, rules Rules) model.Signal {
	n := series.Len()
	if n == 0 || n < rules.EMAWindow || ind.Len() < n {
		return model.Signal{Action: model.ActionHold, Reason: ReasonInsufficientData}
	}

	last := n - 1
	s := snapshot{
		Price:   series.Bars[last].Close,
		EMA:     ind.EMA[last],
		RSI:     ind.RSI[last],
		PrevRSI: ind.RSI[last],
	}
	if n > 1 {
		s.PrevRSI = ind.RSI[last-1]
	}

	if buys := buyConditions(s, rules); len(buys) >= minBuyConditions {
		return model.Signal{Action: model.ActionBuy, Reason: strings.Join(buys, ReasonSeparator)}
	}
	if sells := sellConditions(s, rules); len(sells) >= minSellConditions {
		return model.Signal{Action: model.ActionSell, Reason: strings.Join(sells, ReasonSeparator)}
	}
	return model.Signal{Action: model.ActionHold, Reason: ReasonNoMatch}
}
