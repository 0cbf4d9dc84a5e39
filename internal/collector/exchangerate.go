package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ExchangeRateFetcher implements RateSource using ExchangeRate-API.
type ExchangeRateFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewExchangeRateFetcher creates a rate source with optional proxy support.
func NewExchangeRateFetcher(baseURL, apiKey, proxyURL string) *ExchangeRateFetcher {
	return &ExchangeRateFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

// exchangeRateResponse is the subset of the /latest response we use.
type exchangeRateResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

func (f *ExchangeRateFetcher) FetchRate(ctx context.Context, base, target string) (float64, error) {
	endpoint := fmt.Sprintf("%s/%s/latest/%s", f.BaseURL, url.PathEscape(f.APIKey), url.PathEscape(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch exchange rate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read exchange rate body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch exchange rate: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result exchangeRateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("decode exchange rate: %w", err)
	}
	if result.ErrorType != "" {
		return 0, fmt.Errorf("exchange rate api error: %s", result.ErrorType)
	}
	r, ok := result.ConversionRates[target]
	if !ok || r <= 0 {
		return 0, fmt.Errorf("no conversion rate for %s/%s", base, target)
	}
	return r, nil
}
