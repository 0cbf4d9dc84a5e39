package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"StockWatch/internal/model"

	"golang.org/x/time/rate"
)

// FinnhubFetcher implements Fetcher using the Finnhub quote API.
type FinnhubFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewFinnhubFetcher creates a fetcher limited to requestsPerMinute calls, with
// optional proxy support.
func NewFinnhubFetcher(baseURL, apiKey string, requestsPerMinute int, proxyURL string) *FinnhubFetcher {
	return &FinnhubFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
		Limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), 1),
	}
}

func (f *FinnhubFetcher) Name() string { return "finnhub" }

func (f *FinnhubFetcher) FetchQuote(ctx context.Context, symbol string) (*model.RawQuote, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("token", f.APIKey)
	endpoint := fmt.Sprintf("%s/quote?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch quote: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw model.RawQuote
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	return &raw, nil
}

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
