package collector

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"StockWatch/internal/calculator"
	"StockWatch/internal/model"
)

// MockFetcher returns fixed quotes for development and testing. Symbols
// present in Errors fail; symbols missing from Quotes fail too.
type MockFetcher struct {
	Quotes map[string]model.RawQuote
	Errors map[string]error
	Calls  []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (*model.RawQuote, error) {
	m.Calls = append(m.Calls, symbol)
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	q, ok := m.Quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("mock: unknown symbol %s", symbol)
	}
	return &q, nil
}

// MockRateSource returns a fixed rate, or Err if set.
type MockRateSource struct {
	Rate float64
	Err  error
}

func (m *MockRateSource) FetchRate(_ context.Context, _, _ string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Rate, nil
}

// Collector fetches quote batches and converts them to the target currency.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// CollectBatch fetches every symbol once, in order. Symbols whose fetch fails
// are logged and left out of the result.
func (c *Collector) CollectBatch(ctx context.Context, symbols []string, rate float64, tag model.ExecutionTag) []model.Quote {
	quotes := make([]model.Quote, 0, len(symbols))
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			log.Printf("[WARN] collect cancelled, %d of %d symbols fetched", len(quotes), len(symbols))
			break
		}
		raw, err := c.Fetcher.FetchQuote(ctx, symbol)
		if err != nil {
			log.Printf("[WARN] %s: skip %s: %v", c.Fetcher.Name(), symbol, err)
			continue
		}
		quotes = append(quotes, NewQuote(symbol, raw, rate, tag))
	}
	return quotes
}

// NewQuote converts a raw quote with the exchange rate and computes its rise.
func NewQuote(symbol string, raw *model.RawQuote, rate float64, tag model.ExecutionTag) model.Quote {
	open := calculator.ConvertPrice(raw.Open, rate)
	current := calculator.ConvertPrice(raw.Current, rate)
	return model.Quote{
		Symbol:       symbol,
		StockName:    symbol,
		OpenPrice:    open,
		CurrentPrice: current,
		RisePercent:  calculator.RisePercent(open, current),
		Execution:    tag,
	}
}

// ReadSymbols reads one ticker per line. Blank lines and lines starting with
// '#' are ignored. A file that cannot be read is logged and yields no symbols.
func ReadSymbols(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("[WARN] read symbols %s: %v", path, err)
		return nil
	}
	defer f.Close()

	var symbols []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, line)
	}
	if err := sc.Err(); err != nil {
		log.Printf("[WARN] read symbols %s: %v", path, err)
	}
	return symbols
}
