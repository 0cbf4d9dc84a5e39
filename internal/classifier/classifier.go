package classifier

import (
	"StockWatch/internal/calculator"
	"StockWatch/internal/model"
)

// DefaultThreshold is the rise percentage above which a stock counts as new.
const DefaultThreshold = 2.0

// Classify merges the current batch into the prior snapshot rows and splits
// the result by rise threshold.
//
// Current rows are tagged Current and prior rows Previous. A current row that
// has a prior row for the same symbol gets PriceDelta set to the rounded
// difference of the two current prices; when the prior rows hold a symbol
// more than once, the last one is compared against. The combined set is prior
// rows followed by current rows, deduplicated on symbol keeping the last
// occurrence. Rows with RisePercent > threshold go to NewStock, the rest to
// WatchedStock. The inputs are not modified.
func Classify(current, prior []model.Quote, threshold float64) *model.Classification {
	prev := make([]model.Quote, 0, len(prior))
	lastPrior := make(map[string]model.Quote, len(prior))
	for _, p := range prior {
		q := normalize(p, model.ExecutionPrevious)
		prev = append(prev, q)
		lastPrior[q.Symbol] = q
	}

	curr := make([]model.Quote, 0, len(current))
	for _, c := range current {
		q := normalize(c, model.ExecutionCurrent)
		q.PriceDelta = nil
		if p, ok := lastPrior[q.Symbol]; ok {
			d := calculator.PriceDelta(q.CurrentPrice, p.CurrentPrice)
			q.PriceDelta = &d
		}
		curr = append(curr, q)
	}

	combined := dedupKeepLast(append(prev, curr...))

	out := &model.Classification{
		Combined:     combined,
		NewStock:     []model.Quote{},
		WatchedStock: []model.Quote{},
	}
	for _, q := range combined {
		if IsNew(q, threshold) {
			out.NewStock = append(out.NewStock, q)
		} else {
			out.WatchedStock = append(out.WatchedStock, q)
		}
	}
	return out
}

// IsNew reports whether q belongs to the new-stock bucket. A rise exactly at
// the threshold is not new.
func IsNew(q model.Quote, threshold float64) bool {
	return q.RisePercent > threshold
}

// normalize returns a copy of q with its rise rounded to two decimals, the
// given execution tag, and its own PriceDelta value.
func normalize(q model.Quote, tag model.ExecutionTag) model.Quote {
	q.RisePercent = calculator.Round(q.RisePercent, 2)
	q.Execution = tag
	if q.PriceDelta != nil {
		d := *q.PriceDelta
		q.PriceDelta = &d
	}
	return q
}

// dedupKeepLast keeps the last row of every symbol, in the order those rows
// appear in rows.
func dedupKeepLast(rows []model.Quote) []model.Quote {
	last := make(map[string]int, len(rows))
	for i, q := range rows {
		last[q.Symbol] = i
	}
	out := make([]model.Quote, 0, len(last))
	for i, q := range rows {
		if last[q.Symbol] == i {
			out = append(out, q)
		}
	}
	return out
}
