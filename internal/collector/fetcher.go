package collector

import (
	"context"

	"StockWatch/internal/model"
)

// Fetcher defines the interface for fetching quotes.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*model.RawQuote, error)
	Name() string
}

// RateSource returns the conversion rate from one currency to another.
type RateSource interface {
	FetchRate(ctx context.Context, base, target string) (float64, error)
}
