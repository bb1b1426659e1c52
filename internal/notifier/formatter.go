package notifier

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"SignalBot/internal/model"
)

const (
	rule      = "============================================================"
	tableRows = 5
)

// FormatReport renders one cycle's analysis as a plain-text report.
func FormatReport(a *model.Analysis, emaWindow int) string {
	var b strings.Builder
	s := a.Series
	ind := a.Indicators

	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("Analysis: %s | %s\n", s.Symbol, s.Timeframe))
	b.WriteString(rule + "\n\n")

	if s.Len() == 0 {
		b.WriteString("no data\n")
		return b.String()
	}
	last := s.Len() - 1

	b.WriteString("Latest data:\n")
	b.WriteString(fmt.Sprintf("   Price:   $%.2f\n", s.Bars[last].Close))
	b.WriteString(fmt.Sprintf("   EMA %d:  $%.2f\n", emaWindow, ind.EMA[last]))
	b.WriteString(fmt.Sprintf("   RSI:     %.2f\n", ind.RSI[last]))
	b.WriteString(fmt.Sprintf("   MACD:    %.4f (signal %.4f, hist %+.4f)\n",
		ind.MACD[last], ind.MACDSignal[last], ind.MACDDiff[last]))
	b.WriteString(fmt.Sprintf("   Range:   $%.2f - $%.2f over %d bars\n", a.WindowLow, a.WindowHigh, s.Len()))

	b.WriteString(fmt.Sprintf("\nSignal: %s\n", a.Signal.Action))
	b.WriteString(fmt.Sprintf("   Reason: %s\n", a.Signal.Reason))
	b.WriteString(fmt.Sprintf("\nTime: %s\n", s.Bars[last].Time.UTC().Format(time.DateTime)))

	b.WriteString(fmt.Sprintf("\nLast %d rows:\n", min(tableRows, s.Len())))
	b.WriteString(FormatTable(a, tableRows))
	return b.String()
}

// FormatTable renders the newest n rows of close, EMA, RSI and MACD.
func FormatTable(a *model.Analysis, n int) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "time\tclose\tema\trsi\tmacd\t")

	start := a.Series.Len() - n
	if start < 0 {
		start = 0
	}
	for i := start; i < a.Series.Len(); i++ {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.4f\t\n",
			a.Series.Bars[i].Time.UTC().Format("2006-01-02 15:04"),
			a.Series.Bars[i].Close,
			a.Indicators.EMA[i],
			a.Indicators.RSI[i],
			a.Indicators.MACD[i])
	}
	w.Flush()
	return b.String()
}

// FormatActive is the loop-mode banner for a non-HOLD signal.
func FormatActive(sig model.Signal) string {
	return fmt.Sprintf("Active signal: %s - %s", sig.Action, sig.Reason)
}
