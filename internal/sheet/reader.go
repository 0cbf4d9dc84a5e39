package sheet

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"

	"StockWatch/internal/model"

	"github.com/xuri/excelize/v2"
)

// ReadPrior returns the NewStock rows followed by the WatchedStock rows of the
// workbook at path, tagged Previous. A missing file or sheet yields no rows.
func ReadPrior(path string) ([]model.Quote, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	defer f.Close()

	var prior []model.Quote
	for _, name := range []string{SheetNewStock, SheetWatchedStock} {
		quotes, err := readQuotes(f, name)
		if err != nil {
			return nil, err
		}
		for _, q := range quotes {
			prior = append(prior, q.WithExecution(model.ExecutionPrevious))
		}
	}
	return prior, nil
}

// ReadSnapshot reads a whole snapshot workbook. Rows keep the execution tag
// stored in the file.
func ReadSnapshot(path string) (*model.Snapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	snap := &model.Snapshot{}
	if snap.NewStock, err = readQuotes(f, SheetNewStock); err != nil {
		return nil, err
	}
	if snap.WatchedStock, err = readQuotes(f, SheetWatchedStock); err != nil {
		return nil, err
	}
	if snap.MyStock, err = readQuotes(f, SheetMyStock); err != nil {
		return nil, err
	}
	if hasSheet(f, SheetTimezone) {
		snap.RefreshedAt, _ = f.GetCellValue(SheetTimezone, "A2")
		snap.Timezone, _ = f.GetCellValue(SheetTimezone, "B2")
	}
	return snap, nil
}

// open opens the workbook at path, or returns nil if it does not exist.
func open(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func hasSheet(f *excelize.File, name string) bool {
	return slices.Contains(f.GetSheetList(), name)
}

// readQuotes reads the rows of a quote sheet, locating columns by header.
// Rows without a symbol or with unparseable numbers are skipped.
func readQuotes(f *excelize.File, sheet string) ([]model.Quote, error) {
	if !hasSheet(f, sheet) {
		return []model.Quote{}, nil
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}
	quotes := []model.Quote{}
	if len(rows) == 0 {
		return quotes, nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	if _, ok := cols[ColSymbol]; !ok {
		return nil, fmt.Errorf("read %s: no %q column", sheet, ColSymbol)
	}

	for n, row := range rows[1:] {
		q, err := parseRow(row, cols)
		if err != nil {
			log.Printf("[WARN] %s row %d: %v, skipped", sheet, n+2, err)
			continue
		}
		if q.Symbol == "" {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func parseRow(row []string, cols map[string]int) (model.Quote, error) {
	get := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	q := model.Quote{
		Symbol:    get(ColSymbol),
		StockName: get(ColStockName),
		Execution: model.ExecutionTag(get(ColExecution)),
	}
	if q.Symbol == "" {
		return q, nil
	}
	var err error
	if q.OpenPrice, err = parseNumber(get(ColOpenPrice)); err != nil {
		return q, fmt.Errorf("%s: %w", ColOpenPrice, err)
	}
	if q.CurrentPrice, err = parseNumber(get(ColCurrentPrice)); err != nil {
		return q, fmt.Errorf("%s: %w", ColCurrentPrice, err)
	}
	if q.RisePercent, err = ParseRise(get(ColRise)); err != nil {
		return q, fmt.Errorf("%s: %w", ColRise, err)
	}
	if s := get(ColPriceDelta); s != "" {
		d, err := parseNumber(s)
		if err != nil {
			return q, fmt.Errorf("%s: %w", ColPriceDelta, err)
		}
		q.PriceDelta = &d
	}
	return q, nil
}

// ParseRise parses a rise percentage written either as a number or with a
// trailing percent sign, e.g. "2.5" or "2.5%".
func ParseRise(s string) (float64, error) {
	return parseNumber(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
