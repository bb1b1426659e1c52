package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "binance", cfg.Exchange.Name)
	require.Equal(t, 30*time.Second, cfg.Exchange.Timeout)
	require.Equal(t, "BTC/USDT", cfg.Market.Symbol)
	require.Equal(t, "1h", cfg.Market.Timeframe)
	require.Equal(t, 200, cfg.Market.Limit)
	require.Equal(t, 50, cfg.Strategy.EMAWindow)
	require.Equal(t, 14, cfg.Strategy.RSIWindow)
	require.Equal(t, 30.0, cfg.Strategy.RSIOversold)
	require.Equal(t, 70.0, cfg.Strategy.RSIOverbought)
	require.Equal(t, time.Hour, cfg.Interval())
	require.Equal(t, "once", cfg.Schedule.Mode)
	require.Equal(t, "console", cfg.Log.Format)
	require.Equal(t, "stderr", cfg.Log.Output)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
exchange:
  name: okx
  timeout: 5s
market:
  symbol: ETH/USDT
  timeframe: 4h
  limit: 120
strategy:
  ema_window: 21
  rsi_window: 7
  rsi_oversold: 25
  rsi_overbought: 75
schedule:
  check_interval: 900
  mode: loop
metrics:
  listen: 127.0.0.1:9100
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "okx", cfg.Exchange.Name)
	require.Equal(t, 5*time.Second, cfg.Exchange.Timeout)
	require.Equal(t, "ETH/USDT", cfg.Market.Symbol)
	require.Equal(t, "4h", cfg.Market.Timeframe)
	require.Equal(t, 120, cfg.Market.Limit)
	require.Equal(t, 21, cfg.Strategy.EMAWindow)
	require.Equal(t, 7, cfg.Strategy.RSIWindow)
	require.Equal(t, 25.0, cfg.Strategy.RSIOversold)
	require.Equal(t, 75.0, cfg.Strategy.RSIOverbought)
	require.Equal(t, 15*time.Minute, cfg.Interval())
	require.Equal(t, "loop", cfg.Schedule.Mode)
	require.Equal(t, "127.0.0.1:9100", cfg.Metrics.Listen)
}

func TestLoad_ExplicitZeroKept(t *testing.T) {
	path := writeConfig(t, "strategy:\n  rsi_oversold: 0\n  rsi_overbought: 80\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, 0.0, cfg.Strategy.RSIOversold)
	require.Equal(t, 80.0, cfg.Strategy.RSIOverbought)
	require.Equal(t, 50, cfg.Strategy.EMAWindow)
	require.Equal(t, 14, cfg.Strategy.RSIWindow)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "market:\n  symbol: ETH/USDT\n")
	t.Setenv("SYMBOL", "SOL/USDT")
	t.Setenv("EXCHANGE_NAME", "mock")
	t.Setenv("CHECK_INTERVAL", "60")
	t.Setenv("RUN_MODE", "loop")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "SOL/USDT", cfg.Market.Symbol)
	require.Equal(t, "mock", cfg.Exchange.Name)
	require.Equal(t, time.Minute, cfg.Interval())
	require.Equal(t, "loop", cfg.Schedule.Mode)
}

func TestLoad_BadEnvInteger(t *testing.T) {
	t.Setenv("FETCH_LIMIT", "many")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "FETCH_LIMIT", ce.Field)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "market: [unclosed"))
	require.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"thresholds inverted", "strategy:\n  rsi_oversold: 70\n  rsi_overbought: 30\n", "strategy.rsi_overbought"},
		{"key without secret", "exchange:\n  api_key: abc\n", "exchange.api_secret"},
		{"unknown timeframe", "market:\n  timeframe: 7m\n", "market.timeframe"},
		{"limit too large", "market:\n  limit: 5000\n", "market.limit"},
		{"bad mode", "schedule:\n  mode: forever\n", "schedule.mode"},
		{"bad listen", "metrics:\n  listen: nowhere\n", "metrics.listen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			require.NoError(t, err)

			err = cfg.Validate()
			var ce *ConfigError
			require.True(t, errors.As(err, &ce), "got %v", err)
			require.Equal(t, tt.field, ce.Field)
		})
	}
}
