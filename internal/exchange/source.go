package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"SignalBot/internal/model"

	"github.com/shopspring/decimal"
)

// MarketDataSource is implemented by every supported exchange adapter.
type MarketDataSource interface {
	// FetchCandles returns up to limit bars for symbol, oldest first.
	FetchCandles(ctx context.Context, symbol, timeframe string, limit int) (*model.PriceSeries, error)
	// Ping checks connectivity and returns the last traded price of symbol.
	Ping(ctx context.Context, symbol string) (float64, error)
	Name() string
}

// Options configures an adapter. Empty fields fall back to adapter defaults.
type Options struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Proxy     string
	Timeout   time.Duration
}

// Factory builds an adapter from options.
type Factory func(opts Options) (MarketDataSource, error)

// ErrUnknownExchange is returned by New for names missing from the registry.
var ErrUnknownExchange = errors.New("unknown exchange")

var registry = map[string]Factory{
	"binance": func(opts Options) (MarketDataSource, error) { return NewBinance(opts), nil },
	"okx":     func(opts Options) (MarketDataSource, error) { return NewOKX(opts), nil },
	"mock":    func(opts Options) (MarketDataSource, error) { return NewMock(30000), nil },
}

// New looks up the adapter registered under name.
func New(name string, opts Options) (MarketDataSource, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownExchange, name, strings.Join(Names(), ", "))
	}
	return f(opts)
}

// Names lists the registered exchange identifiers in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// FetchError wraps any network, status or decoding failure of an adapter.
type FetchError struct {
	Exchange string
	Op       string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Exchange, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// normalize sorts bars chronologically, drops repeated timestamps and keeps
// the newest limit bars.
func normalize(bars []model.Candle, limit int) []model.Candle {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && out[len(out)-1].Time.Equal(b.Time) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// parsePrice accepts both quoted and bare JSON numbers.
func parsePrice(v any) (float64, error) {
	var d decimal.Decimal
	var err error
	switch n := v.(type) {
	case string:
		d, err = decimal.NewFromString(n)
	case float64:
		d = decimal.NewFromFloat(n)
	case nil:
		return 0, errors.New("missing value")
	default:
		d, err = decimal.NewFromString(fmt.Sprint(n))
	}
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// parseMillis reads a millisecond timestamp from a JSON string or number.
func parseMillis(v any) (time.Time, error) {
	var d decimal.Decimal
	var err error
	switch n := v.(type) {
	case string:
		d, err = decimal.NewFromString(n)
	case float64:
		d = decimal.NewFromFloat(n)
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp %v", v)
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(d.IntPart()).UTC(), nil
}

// splitSymbol turns "BTC/USDT", "btc-usdt" or "BTCUSDT" into base and quote.
// Quote is empty when no separator is present.
func splitSymbol(symbol string) (base, quote string) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, sep := range []string{"/", "-", "_"} {
		if i := strings.Index(s, sep); i >= 0 {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
