package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"SignalBot/internal/exchange"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CycleFunc runs one analysis cycle.
type CycleFunc func(ctx context.Context) error

// Scheduler invokes a cycle at a fixed interval. Cycles never overlap and a
// cancelled context stops it between cycles.
type Scheduler struct {
	Cron     *cron.Cron
	Interval time.Duration
	Cycle    CycleFunc
	Log      zerolog.Logger
	Ctx      context.Context

	job  cron.Job
	runs atomic.Int64
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, interval time.Duration, cycle CycleFunc, log zerolog.Logger) *Scheduler {
	cl := cronLogger{log: log}
	s := &Scheduler{
		Cron:     cron.New(cron.WithLogger(cl)),
		Interval: interval,
		Cycle:    cycle,
		Log:      log,
		Ctx:      ctx,
	}
	// Scheduled and immediate runs share one wrapped job.
	s.job = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.tick))
	return s
}

// Register adds the polling task.
func (s *Scheduler) Register() error {
	if s.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", s.Interval)
	}
	if _, err := s.Cron.AddJob("@every "+s.Interval.String(), s.job); err != nil {
		return fmt.Errorf("register polling task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Dur("interval", s.Interval).Msg("scheduler started")
}

// Stop stops the scheduler and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info().Int64("cycles", s.runs.Load()).Msg("scheduler stopped")
}

// RunNow executes one cycle immediately. A panicking cycle is recovered
// and logged.
func (s *Scheduler) RunNow() {
	s.job.Run()
}

// Run executes a cycle right away, then one per interval until ctx is done.
func (s *Scheduler) Run() error {
	if err := s.Register(); err != nil {
		return err
	}
	s.RunNow()
	s.Start()
	<-s.Ctx.Done()
	s.Stop()
	return nil
}

// Runs reports how many cycles have been started.
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

func (s *Scheduler) tick() {
	if s.Ctx.Err() != nil {
		return
	}
	s.runs.Add(1)

	err := s.Cycle(s.Ctx)
	var fe *exchange.FetchError
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		return
	case errors.As(err, &fe):
		s.Log.Warn().Err(err).Msg("fetch failed, retrying on next tick")
	default:
		s.Log.Error().Err(err).Msg("cycle failed")
	}
	if s.Ctx.Err() == nil {
		s.Log.Info().Dur("interval", s.Interval).Msg("waiting for next check")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
