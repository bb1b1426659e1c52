package notifier

import (
	"context"
	"fmt"
	"io"

	"SignalBot/internal/model"
)

// Sink receives the result of every analysis cycle.
type Sink interface {
	Present(ctx context.Context, a *model.Analysis) error
}

// ConsoleSink writes text reports to Out.
type ConsoleSink struct {
	Out       io.Writer
	EMAWindow int
	// Loop adds the active-signal banner used by continuous mode.
	Loop bool
}

// NewConsoleSink creates a sink writing to out.
func NewConsoleSink(out io.Writer, emaWindow int, loop bool) *ConsoleSink {
	return &ConsoleSink{Out: out, EMAWindow: emaWindow, Loop: loop}
}

func (c *ConsoleSink) Present(_ context.Context, a *model.Analysis) error {
	if _, err := io.WriteString(c.Out, FormatReport(a, c.EMAWindow)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if c.Loop && a.Signal.Action != model.ActionHold {
		if _, err := fmt.Fprintf(c.Out, "\n%s\n", FormatActive(a.Signal)); err != nil {
			return fmt.Errorf("write banner: %w", err)
		}
	}
	return nil
}
