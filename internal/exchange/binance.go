package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"SignalBot/internal/model"
)

const binanceBaseURL = "https://api.binance.com"

// binanceMaxLimit is the largest page the klines endpoint serves.
const binanceMaxLimit = 1000

// BinanceSource implements MarketDataSource using the Binance spot REST API.
type BinanceSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewBinance creates a Binance adapter with optional proxy support.
func NewBinance(opts Options) *BinanceSource {
	base := opts.BaseURL
	if base == "" {
		base = binanceBaseURL
	}
	return &BinanceSource{
		BaseURL: base,
		APIKey:  opts.APIKey,
		Client:  newHTTPClient(opts.Proxy, opts.Timeout),
	}
}

func (b *BinanceSource) Name() string { return "binance" }

func binanceSymbol(symbol string) string {
	base, quote := splitSymbol(symbol)
	return base + quote
}

func (b *BinanceSource) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) (*model.PriceSeries, error) {
	if limit <= 0 || limit > binanceMaxLimit {
		limit = binanceMaxLimit
	}
	params := url.Values{}
	params.Set("symbol", binanceSymbol(symbol))
	params.Set("interval", timeframe)
	params.Set("limit", strconv.Itoa(limit))

	var raw [][]any
	if err := b.get(ctx, "/api/v3/klines", params, &raw); err != nil {
		return nil, &FetchError{Exchange: b.Name(), Op: "fetch candles", Err: err}
	}

	bars := make([]model.Candle, 0, len(raw))
	for _, entry := range raw {
		bar, err := binanceCandle(entry)
		if err != nil {
			return nil, &FetchError{Exchange: b.Name(), Op: "decode candles", Err: err}
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, &FetchError{Exchange: b.Name(), Op: "fetch candles", Err: errors.New("no candles returned")}
	}

	return &model.PriceSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Bars:      normalize(bars, limit),
		FetchedAt: time.Now(),
	}, nil
}

// binanceCandle decodes [openTime, open, high, low, close, volume, ...].
func binanceCandle(entry []any) (model.Candle, error) {
	if len(entry) < 6 {
		return model.Candle{}, fmt.Errorf("kline has %d fields, want at least 6", len(entry))
	}
	ts, err := parseMillis(entry[0])
	if err != nil {
		return model.Candle{}, fmt.Errorf("open time: %w", err)
	}
	var vals [5]float64
	for i := range vals {
		v, err := parsePrice(entry[i+1])
		if err != nil {
			return model.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return model.Candle{
		Time:   ts,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func (b *BinanceSource) Ping(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", binanceSymbol(symbol))

	var result struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := b.get(ctx, "/api/v3/ticker/price", params, &result); err != nil {
		return 0, &FetchError{Exchange: b.Name(), Op: "ping", Err: err}
	}
	price, err := parsePrice(result.Price)
	if err != nil {
		return 0, &FetchError{Exchange: b.Name(), Op: "decode price", Err: err}
	}
	return price, nil
}

func (b *BinanceSource) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := b.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if b.APIKey != "" {
		req.Header.Set("X-MBX-APIKEY", b.APIKey)
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
