package strategy

import "fmt"

// snapshot is the last-row view the rules look at.
type snapshot struct {
	Price   float64
	EMA     float64
	RSI     float64
	PrevRSI float64
}

// buyConditions returns the triggered buy clauses in fixed order.
func buyConditions(s snapshot, r Rules) []string {
	var out []string
	if s.RSI < r.RSIOversold {
		out = append(out, fmt.Sprintf("RSI oversold (%.2f < %g)", s.RSI, r.RSIOversold))
	}
	if s.Price > s.EMA {
		out = append(out, fmt.Sprintf("price above EMA (%.2f > %.2f)", s.Price, s.EMA))
	}
	// A still-falling RSI is read as approaching a bottom.
	if s.RSI < s.PrevRSI {
		out = append(out, "RSI falling")
	}
	return out
}

// sellConditions returns the triggered sell clauses in fixed order.
func sellConditions(s snapshot, r Rules) []string {
	var out []string
	if s.RSI > r.RSIOverbought {
		out = append(out, fmt.Sprintf("RSI overbought (%.2f > %g)", s.RSI, r.RSIOverbought))
	}
	if s.Price < s.EMA {
		out = append(out, fmt.Sprintf("price below EMA (%.2f < %.2f)", s.Price, s.EMA))
	}
	return out
}
