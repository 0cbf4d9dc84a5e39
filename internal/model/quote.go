package model

// ExecutionTag marks whether a row was fetched by the current run or carried
// over from the previous snapshot.
type ExecutionTag string

const (
	ExecutionCurrent  ExecutionTag = "Current"
	ExecutionPrevious ExecutionTag = "Previous"
)

// RawQuote is the unconverted quote returned by the quote API.
type RawQuote struct {
	Open    float64 `json:"o"`
	Current float64 `json:"c"`
}

// Quote is one row of a snapshot. Prices are in the target currency.
type Quote struct {
	Symbol       string       `json:"symbol"`
	StockName    string       `json:"stock_name"`
	OpenPrice    float64      `json:"open_price"`
	CurrentPrice float64      `json:"current_price"`
	RisePercent  float64      `json:"rise_percent"`
	PriceDelta   *float64     `json:"price_delta,omitempty"` // nil when there was no prior row to compare
	Execution    ExecutionTag `json:"execution,omitempty"`
}

// WithExecution returns a copy of q carrying the given tag.
func (q Quote) WithExecution(tag ExecutionTag) Quote {
	q.Execution = tag
	return q
}
