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

const okxBaseURL = "https://www.okx.com"

// okxMaxLimit is the largest page the market candles endpoint serves.
// Larger requests are split into several pages.
const okxMaxLimit = 300

// okxBars maps common timeframe notation to OKX bar names.
var okxBars = map[string]string{
	"1m":  "1m",
	"3m":  "3m",
	"5m":  "5m",
	"15m": "15m",
	"30m": "30m",
	"1h":  "1H",
	"2h":  "2H",
	"4h":  "4H",
	"6h":  "6H",
	"12h": "12H",
	"1d":  "1D",
	"1w":  "1W",
	"1M":  "1M",
}

// OKXSource implements MarketDataSource using the OKX v5 public market API.
type OKXSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewOKX creates an OKX adapter with optional proxy support.
func NewOKX(opts Options) *OKXSource {
	base := opts.BaseURL
	if base == "" {
		base = okxBaseURL
	}
	return &OKXSource{
		BaseURL: base,
		APIKey:  opts.APIKey,
		Client:  newHTTPClient(opts.Proxy, opts.Timeout),
	}
}

func (o *OKXSource) Name() string { return "okx" }

func okxInstID(symbol string) string {
	base, quote := splitSymbol(symbol)
	if quote == "" {
		return base
	}
	return base + "-" + quote
}

// okxEnvelope is the common response wrapper of the OKX v5 API.
type okxEnvelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (o *OKXSource) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) (*model.PriceSeries, error) {
	bar, ok := okxBars[timeframe]
	if !ok {
		return nil, &FetchError{Exchange: o.Name(), Op: "fetch candles", Err: fmt.Errorf("unsupported timeframe %q", timeframe)}
	}
	if limit <= 0 {
		limit = okxMaxLimit
	}

	// Pages come newest first; each further page asks for bars older than
	// the oldest one seen so far.
	var bars []model.Candle
	after := ""
	for len(bars) < limit {
		size := min(limit-len(bars), okxMaxLimit)
		page, err := o.candlePage(ctx, okxInstID(symbol), bar, size, after)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		bars = append(bars, page...)

		oldest := page[0].Time
		for _, c := range page[1:] {
			if c.Time.Before(oldest) {
				oldest = c.Time
			}
		}
		next := strconv.FormatInt(oldest.UnixMilli(), 10)
		if len(page) < size || next == after {
			break
		}
		after = next
	}
	if len(bars) == 0 {
		return nil, &FetchError{Exchange: o.Name(), Op: "fetch candles", Err: errors.New("no candles returned")}
	}

	// OKX returns newest first; normalize restores chronological order.
	return &model.PriceSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Bars:      normalize(bars, limit),
		FetchedAt: time.Now(),
	}, nil
}

func (o *OKXSource) candlePage(ctx context.Context, instID, bar string, size int, after string) ([]model.Candle, error) {
	params := url.Values{}
	params.Set("instId", instID)
	params.Set("bar", bar)
	params.Set("limit", strconv.Itoa(size))
	if after != "" {
		params.Set("after", after)
	}

	var raw [][]string
	if err := o.get(ctx, "/api/v5/market/candles", params, &raw); err != nil {
		return nil, &FetchError{Exchange: o.Name(), Op: "fetch candles", Err: err}
	}
	page := make([]model.Candle, 0, len(raw))
	for _, entry := range raw {
		c, err := okxCandle(entry)
		if err != nil {
			return nil, &FetchError{Exchange: o.Name(), Op: "decode candles", Err: err}
		}
		page = append(page, c)
	}
	return page, nil
}

// okxCandle decodes [ts, o, h, l, c, vol, ...], all as strings.
func okxCandle(entry []string) (model.Candle, error) {
	if len(entry) < 6 {
		return model.Candle{}, fmt.Errorf("candle has %d fields, want at least 6", len(entry))
	}
	ts, err := parseMillis(entry[0])
	if err != nil {
		return model.Candle{}, fmt.Errorf("timestamp: %w", err)
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

func (o *OKXSource) Ping(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("instId", okxInstID(symbol))

	var tickers []struct {
		InstID string `json:"instId"`
		Last   string `json:"last"`
	}
	if err := o.get(ctx, "/api/v5/market/ticker", params, &tickers); err != nil {
		return 0, &FetchError{Exchange: o.Name(), Op: "ping", Err: err}
	}
	if len(tickers) == 0 {
		return 0, &FetchError{Exchange: o.Name(), Op: "ping", Err: errors.New("no ticker returned")}
	}
	price, err := parsePrice(tickers[0].Last)
	if err != nil {
		return 0, &FetchError{Exchange: o.Name(), Op: "decode price", Err: err}
	}
	return price, nil
}

func (o *OKXSource) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := o.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if o.APIKey != "" {
		req.Header.Set("OK-ACCESS-KEY", o.APIKey)
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}

	var env okxEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if env.Code != "0" {
		return fmt.Errorf("api error %s: %s", env.Code, env.Msg)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
