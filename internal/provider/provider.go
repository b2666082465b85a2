package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"tradescape/internal/model"
)

// Kind selects a provider variant. The set is closed: providers are chosen
// by tag, not by structural typing.
type Kind string

const (
	KindYahoo        Kind = "yahoo"
	KindAlphaVantage Kind = "alpha_vantage"
)

// Request names a canonical fetch: symbol, time period, one of the
// canonical intervals {5m, 10m, 1h, 1d, 1wk, 1mo}, and the extended-hours
// flag. Variants that cannot honor period or extended hours ignore them.
type Request struct {
	Symbol        string
	Period        string
	Interval      string
	ExtendedHours bool
}

// Provider fetches raw bars from one backend and normalizes them into the
// canonical TimeSeries shape.
type Provider interface {
	Fetch(ctx context.Context, req Request) (*model.TimeSeries, error)
	Name() string
}

// FetchError wraps any provider failure: network errors, unknown symbols,
// and unparsable responses.
type FetchError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: fetch %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Options carries variant construction parameters.
type Options struct {
	Proxy  string
	APIKey string // Alpha Vantage only; falls back to ALPHA_VANTAGE_API_KEY, then the public demo key
}

// New constructs the provider for the given kind.
func New(kind Kind, opts Options) (Provider, error) {
	switch kind {
	case KindYahoo:
		return NewYahoo(opts.Proxy), nil
	case KindAlphaVantage:
		key := opts.APIKey
		if key == "" {
			key = os.Getenv("ALPHA_VANTAGE_API_KEY")
		}
		if key == "" {
			key = "demo"
		}
		return NewAlphaVantage(key, opts.Proxy), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", kind)
	}
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
