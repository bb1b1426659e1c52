package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SignalBot/internal/analyzer"
	"SignalBot/internal/config"
	"SignalBot/internal/exchange"
	"SignalBot/internal/logger"
	"SignalBot/internal/metrics"
	"SignalBot/internal/notifier"
	"SignalBot/internal/scheduler"
	"SignalBot/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to YAML config")
	mode := flag.String("mode", "", "run mode: once or loop (overrides config)")
	flag.Parse()

	if err := run(cfgPath, *mode); err != nil {
		fmt.Fprintf(os.Stderr, "signalbot: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, mode string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if mode != "" {
		cfg.Schedule.Mode = mode
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log, closer, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()
	log.Info().Str("config", cfgPath).Msg("SignalBot starting")

	src, err := exchange.New(cfg.Exchange.Name, exchange.Options{
		BaseURL:   cfg.Exchange.BaseURL,
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		Proxy:     cfg.Proxy,
		Timeout:   cfg.Exchange.Timeout,
	})
	if err != nil {
		return &config.ConfigError{Field: "exchange.name", Reason: err.Error()}
	}
	log.Info().Str("exchange", src.Name()).Msg("data source ready")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	if cfg.Metrics.Listen != "" {
		srv := server.New(cfg.Metrics.Listen, reg, log)
		srv.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(ctx); err != nil {
				log.Warn().Err(err).Msg("stop metrics server")
			}
		}()
	}

	loop := cfg.Schedule.Mode == "loop"
	settings := analyzer.Settings{
		Symbol:        cfg.Market.Symbol,
		Timeframe:     cfg.Market.Timeframe,
		Limit:         cfg.Market.Limit,
		EMAWindow:     cfg.Strategy.EMAWindow,
		RSIWindow:     cfg.Strategy.RSIWindow,
		RSIOversold:   cfg.Strategy.RSIOversold,
		RSIOverbought: cfg.Strategy.RSIOverbought,
	}
	sink := notifier.NewConsoleSink(os.Stdout, cfg.Strategy.EMAWindow, loop)
	runner := analyzer.NewRunner(src, sink, rec, settings, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := runner.Check(ctx); err != nil {
		return stopped(ctx, log, fmt.Errorf("cannot reach exchange: %w", err))
	}

	if !loop {
		_, err := runner.RunCycle(ctx)
		return stopped(ctx, log, err)
	}
	return runLoop(ctx, cfg, runner, log)
}

// stopped drops err when it only reports that ctx was cancelled by the user.
func stopped(ctx context.Context, log zerolog.Logger, err error) error {
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		log.Info().Msg("stopped by user")
		return nil
	}
	return err
}

func runLoop(ctx context.Context, cfg *config.Config, runner *analyzer.Runner, log zerolog.Logger) error {
	sched := scheduler.NewScheduler(ctx, cfg.Interval(), func(ctx context.Context) error {
		_, err := runner.RunCycle(ctx)
		return err
	}, log)

	log.Info().Dur("interval", cfg.Interval()).Msg("running continuously, press Ctrl+C to stop")
	if err := sched.Run(); err != nil {
		return err
	}
	log.Info().Msg("stopped by user")
	return nil
}
