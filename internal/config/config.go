package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Exchange struct {
		Name      string        `yaml:"name" default:"binance" validate:"required"`
		APIKey    string        `yaml:"api_key"`
		APISecret string        `yaml:"api_secret" validate:"required_with=APIKey"`
		BaseURL   string        `yaml:"base_url" validate:"omitempty,url"`
		Timeout   time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	} `yaml:"exchange"`
	Market struct {
		Symbol    string `yaml:"symbol" default:"BTC/USDT" validate:"required"`
		Timeframe string `yaml:"timeframe" default:"1h" validate:"required,oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 12h 1d 1w 1M"`
		Limit     int    `yaml:"limit" default:"200" validate:"gt=0,lte=1000"`
	} `yaml:"market"`
	Strategy struct {
		EMAWindow     int     `yaml:"ema_window" default:"50" validate:"gt=0"`
		RSIWindow     int     `yaml:"rsi_window" default:"14" validate:"gt=0"`
		RSIOversold   float64 `yaml:"rsi_oversold" default:"30" validate:"gte=0,lte=100"`
		RSIOverbought float64 `yaml:"rsi_overbought" default:"70" validate:"gte=0,lte=100,gtfield=RSIOversold"`
	} `yaml:"strategy"`
	Schedule struct {
		// CheckInterval is the polling period in seconds.
		CheckInterval int    `yaml:"check_interval" default:"3600" validate:"gt=0"`
		Mode          string `yaml:"mode" default:"once" validate:"oneof=once loop"`
	} `yaml:"schedule"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stderr"`
	} `yaml:"log"`
	Metrics struct {
		// Listen is the host:port for /metrics and /healthz; empty disables it.
		Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy" validate:"omitempty,url"`
}

// ConfigError reports an invalid or missing setting. It is fatal at startup.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// Interval returns the polling period.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Schedule.CheckInterval) * time.Second
}

// Load fills in defaults, then the YAML file, then environment variable
// overrides. A missing file yields a default configuration. Values set
// explicitly in the file, zero included, are kept.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"EXCHANGE_NAME":       &cfg.Exchange.Name,
		"EXCHANGE_API_KEY":    &cfg.Exchange.APIKey,
		"EXCHANGE_API_SECRET": &cfg.Exchange.APISecret,
		"EXCHANGE_BASE_URL":   &cfg.Exchange.BaseURL,
		"SYMBOL":              &cfg.Market.Symbol,
		"TIMEFRAME":           &cfg.Market.Timeframe,
		"RUN_MODE":            &cfg.Schedule.Mode,
		"LOG_LEVEL":           &cfg.Log.Level,
		"LOG_FORMAT":          &cfg.Log.Format,
		"METRICS_LISTEN":      &cfg.Metrics.Listen,
		"HTTPS_PROXY":         &cfg.Proxy,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"FETCH_LIMIT":    &cfg.Market.Limit,
		"CHECK_INTERVAL": &cfg.Schedule.CheckInterval,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return &ConfigError{Field: key, Reason: fmt.Sprintf("not an integer: %q", v)}
			}
			*dst = n
		}
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their yaml names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that all settings are present and in range.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigError{Field: "config", Reason: err.Error()}
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	reason := "failed " + fe.Tag()
	if fe.Param() != "" {
		reason += "=" + fe.Param()
	}
	return &ConfigError{Field: field, Reason: reason}
}
