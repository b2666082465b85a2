package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tradescape/internal/model"
)

// AlphaVantage implements Provider using the Alpha Vantage REST API. The
// backend has no period or extended-hours parameters, so both are ignored.
type AlphaVantage struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantage creates an Alpha Vantage provider.
func NewAlphaVantage(apiKey, proxyURL string) *AlphaVantage {
	return &AlphaVantage{
		BaseURL: "https://www.alphavantage.co",
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (a *AlphaVantage) Name() string { return string(KindAlphaVantage) }

// avFunction maps a canonical interval to the API function and, for
// intraday calls, the backend interval code (10m rounds up to 15min).
func avFunction(interval string) (function, intraday string) {
	switch interval {
	case "5m":
		return "TIME_SERIES_INTRADAY", "5min"
	case "10m":
		return "TIME_SERIES_INTRADAY", "15min"
	case "1h":
		return "TIME_SERIES_INTRADAY", "60min"
	case "1wk":
		return "TIME_SERIES_WEEKLY", ""
	case "1mo":
		return "TIME_SERIES_MONTHLY", ""
	default:
		return "TIME_SERIES_DAILY", ""
	}
}

// avBar is the column-prefixed bar object the API returns.
type avBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// Fetch downloads and normalizes bars for the request.
func (a *AlphaVantage) Fetch(ctx context.Context, req Request) (*model.TimeSeries, error) {
	series, err := a.fetchSeries(ctx, req)
	if err != nil {
		return nil, &FetchError{Provider: a.Name(), Symbol: req.Symbol, Err: err}
	}
	return series, nil
}

func (a *AlphaVantage) fetchSeries(ctx context.Context, req Request) (*model.TimeSeries, error) {
	function, intraday := avFunction(req.Interval)
	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", req.Symbol)
	q.Set("apikey", a.APIKey)
	q.Set("outputsize", "full")
	if intraday != "" {
		q.Set("interval", intraday)
	}
	u := fmt.Sprintf("%s/query?%s", a.BaseURL, q.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return parseAVResponse(req.Symbol, body)
}

// parseAVResponse converts the column-prefixed payload into the canonical
// series: OHLCV names, invalid timestamps dropped, timezone stripped.
func parseAVResponse(symbol string, body []byte) (*model.TimeSeries, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if msg, ok := envelope["Error Message"]; ok {
		return nil, fmt.Errorf("api error: %s", string(msg))
	}
	if note, ok := envelope["Note"]; ok {
		return nil, fmt.Errorf("api throttled: %s", string(note))
	}

	var raw map[string]avBar
	for key, v := range envelope {
		if key == "Meta Data" {
			continue
		}
		if !strings.Contains(key, "Time Series") {
			continue
		}
		if err := json.Unmarshal(v, &raw); err != nil {
			return nil, fmt.Errorf("decode series %q: %w", key, err)
		}
		break
	}
	if raw == nil {
		return nil, fmt.Errorf("no time series in response")
	}

	series := &model.TimeSeries{Symbol: symbol, Bars: make([]model.Bar, 0, len(raw))}
	for stamp, bar := range raw {
		ts, ok := parseTimestamp(stamp)
		if !ok {
			continue // coerced to missing rather than failing the fetch
		}
		series.Bars = append(series.Bars, model.Bar{
			Time:   ts,
			Open:   parseFloat(bar.Open),
			High:   parseFloat(bar.High),
			Low:    parseFloat(bar.Low),
			Close:  parseFloat(bar.Close),
			Volume: parseFloat(bar.Volume),
		})
	}
	series.Normalize()
	return series, nil
}

// parseTimestamp accepts the intraday and daily stamp formats. Any source
// timezone is stripped by reading the wall clock as UTC.
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
