package model

// Action is the categorical outcome of a signal evaluation.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal is the final output of the strategy evaluator.
type Signal struct {
	Action Action
	Reason string
}

// Analysis bundles everything produced by one cycle for presentation.
type Analysis struct {
	Series     *PriceSeries
	Indicators *IndicatorSet
	Signal     Signal
	WindowHigh float64
	WindowLow  float64
}
