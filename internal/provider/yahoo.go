package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tradescape/internal/model"
)

// Yahoo implements Provider using the Yahoo Finance public chart API.
type Yahoo struct {
	BaseURL string
	Client  *http.Client
}

// NewYahoo creates a Yahoo Finance provider with optional proxy support.
func NewYahoo(proxyURL string) *Yahoo {
	return &Yahoo{
		BaseURL: "https://query1.finance.yahoo.com",
		Client:  newHTTPClient(proxyURL),
	}
}

func (y *Yahoo) Name() string { return string(KindYahoo) }

// yahooIntervals maps canonical interval codes to the chart API vocabulary.
// 10m has no Yahoo code; 15m is the closest granularity.
var yahooIntervals = map[string]string{
	"5m":  "5m",
	"10m": "15m",
	"1h":  "60m",
	"1d":  "1d",
	"1wk": "1wk",
	"1mo": "1mo",
}

// yahooRanges maps canonical time periods to chart API range codes.
var yahooRanges = map[string]string{
	"1d":  "1d",
	"5d":  "5d",
	"1wk": "5d",
	"1mo": "1mo",
	"3mo": "3mo",
	"6mo": "6mo",
	"1y":  "1y",
	"5y":  "5y",
	"max": "max",
}

// yahooChart is the response structure from the chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// Fetch downloads and normalizes bars for the request.
func (y *Yahoo) Fetch(ctx context.Context, req Request) (*model.TimeSeries, error) {
	series, err := y.fetchChart(ctx, req)
	if err != nil {
		return nil, &FetchError{Provider: y.Name(), Symbol: req.Symbol, Err: err}
	}
	return series, nil
}

func (y *Yahoo) fetchChart(ctx context.Context, req Request) (*model.TimeSeries, error) {
	interval, ok := yahooIntervals[req.Interval]
	if !ok {
		interval = "1d"
	}
	rng, ok := yahooRanges[req.Period]
	if !ok {
		rng = "6mo"
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s&includePrePost=%t",
		y.BaseURL, url.PathEscape(req.Symbol), interval, rng, req.ExtendedHours)

	httpReq, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.Client.Do(httpReq)
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

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no data returned")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	series := &model.TimeSeries{Symbol: req.Symbol, Bars: make([]model.Bar, 0, len(result.Timestamp))}

	// Ragged quote arrays: index only up to the shortest column, the tail
	// is treated as missing.
	n := len(result.Timestamp)
	for _, col := range [][]interface{}{quote.Open, quote.High, quote.Low, quote.Close, quote.Volume} {
		if len(col) < n {
			n = len(col)
		}
	}

	for i := 0; i < n; i++ {
		ts := result.Timestamp[i]
		if ts <= 0 {
			continue // unparsable timestamp: coerced to missing, not an error
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bars (holidays etc.)
		}
		series.Bars = append(series.Bars, model.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: toFloat(quote.Volume[i]),
		})
	}

	series.Normalize()
	return series, nil
}
