package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockWatch/internal/collector"
	"StockWatch/internal/model"
	"StockWatch/internal/recorder"
	"StockWatch/internal/sheet"
)

type mockRecorder struct {
	runs    []*recorder.RunRecord
	buckets map[string]int
}

func (m *mockRecorder) RecordRun(rec *recorder.RunRecord) error {
	m.runs = append(m.runs, rec)
	return nil
}

func (m *mockRecorder) RecordQuotes(_, bucket string, quotes []model.Quote) error {
	if m.buckets == nil {
		m.buckets = map[string]int{}
	}
	m.buckets[bucket] = len(quotes)
	return nil
}

func (m *mockRecorder) LastRun() (*recorder.RunRecord, error) { return nil, nil }
func (m *mockRecorder) Close() error                         { return nil }

type mockNotifier struct {
	texts    []string
	captions []string
	photos   [][]byte
}

func (m *mockNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *mockNotifier) SendPhoto(_ context.Context, png []byte, caption string) error {
	m.photos = append(m.photos, png)
	m.captions = append(m.captions, caption)
	return nil
}

func writeSymbols(t *testing.T, dir, name string, symbols ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(symbols, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRunner(t *testing.T, dir string, fetcher *collector.MockFetcher, rates collector.RateSource) (*Runner, *mockRecorder, *mockNotifier) {
	t.Helper()
	opts := Options{
		NewStockFile:   filepath.Join(dir, "new_stocks.txt"),
		MyStockFile:    filepath.Join(dir, "my_stock.txt"),
		BaseCurrency:   "USD",
		TargetCurrency: "EUR",
		Threshold:      2,
		Timezone:       time.UTC,
		TimezoneName:   "CET",
		Paths:          sheet.Paths{Dir: dir, Prefix: "stock_data_output", Alias: "1"},
	}
	rec := &mockRecorder{}
	n := &mockNotifier{}
	r := New(opts, collector.NewCollector(fetcher), rates, rec, n)
	r.Now = func() time.Time { return time.Date(2024, 11, 20, 16, 4, 5, 0, time.UTC) }
	return r, rec, n
}

func symbolsOf(quotes []model.Quote) []string {
	out := make([]string, len(quotes))
	for i, q := range quotes {
		out[i] = q.Symbol
	}
	return out
}

func TestRun_TwoRunsSameDay(t *testing.T) {
	dir := t.TempDir()
	writeSymbols(t, dir, "new_stocks.txt", "AAA", "BBB")
	writeSymbols(t, dir, "my_stock.txt", "AAA")

	fetcher := &collector.MockFetcher{Quotes: map[string]model.RawQuote{
		"AAA": {Open: 100, Current: 103},
		"BBB": {Open: 100, Current: 101},
	}}
	r, rec, n := newTestRunner(t, dir, fetcher, &collector.MockRateSource{Rate: 1})

	first, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if got := symbolsOf(first.Snapshot.NewStock); strings.Join(got, ",") != "AAA" {
		t.Errorf("first run NewStock = %v", got)
	}
	if got := symbolsOf(first.Snapshot.WatchedStock); strings.Join(got, ",") != "BBB" {
		t.Errorf("first run WatchedStock = %v", got)
	}
	if len(first.Snapshot.MyStock) != 1 || first.Snapshot.MyStock[0].Execution != "" {
		t.Errorf("unexpected MyStock: %+v", first.Snapshot.MyStock)
	}
	if first.Snapshot.RefreshedAt != "2024-11-20 16:04:05 CET" {
		t.Errorf("unexpected RefreshedAt %q", first.Snapshot.RefreshedAt)
	}
	if filepath.Base(first.DatedPath) != "stock_data_output_2024-11-20.xlsx" {
		t.Errorf("unexpected dated path %s", first.DatedPath)
	}
	if _, err := os.Stat(first.AliasPath); err != nil {
		t.Errorf("alias not written: %v", err)
	}

	writeSymbols(t, dir, "new_stocks.txt", "AAA", "CCC")
	fetcher.Quotes["AAA"] = model.RawQuote{Open: 100, Current: 104}
	fetcher.Quotes["CCC"] = model.RawQuote{Open: 100, Current: 105}

	second, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := strings.Join(symbolsOf(second.Snapshot.NewStock), ","); got != "AAA,CCC" {
		t.Errorf("second run NewStock = %s", got)
	}
	watched := second.Snapshot.WatchedStock
	if len(watched) != 1 || watched[0].Symbol != "BBB" || watched[0].Execution != model.ExecutionPrevious {
		t.Errorf("second run WatchedStock = %+v", watched)
	}
	aaa := second.Snapshot.NewStock[0]
	if aaa.Execution != model.ExecutionCurrent || aaa.PriceDelta == nil || *aaa.PriceDelta != 1 {
		t.Errorf("expected AAA current with delta 1, got %+v", aaa)
	}
	if second.Snapshot.NewStock[1].PriceDelta != nil {
		t.Error("CCC has no prior row and should have no delta")
	}

	onDisk, err := sheet.ReadSnapshot(second.AliasPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(onDisk.NewStock) != 2 || len(onDisk.WatchedStock) != 1 {
		t.Errorf("alias does not match second run: new %d watched %d", len(onDisk.NewStock), len(onDisk.WatchedStock))
	}

	if len(rec.runs) != 2 {
		t.Errorf("expected 2 recorded runs, got %d", len(rec.runs))
	}
	if rec.buckets[recorder.BucketNew] != 2 || rec.buckets[recorder.BucketWatched] != 1 || rec.buckets[recorder.BucketMy] != 1 {
		t.Errorf("unexpected recorded buckets: %v", rec.buckets)
	}
	if len(n.texts) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(n.texts))
	}
}

func TestRun_SkipsFailedSymbols(t *testing.T) {
	dir := t.TempDir()
	writeSymbols(t, dir, "new_stocks.txt", "AAA", "BAD")
	fetcher := &collector.MockFetcher{
		Quotes: map[string]model.RawQuote{"AAA": {Open: 10, Current: 10}},
		Errors: map[string]error{"BAD": errors.New("boom")},
	}
	r, _, _ := newTestRunner(t, dir, fetcher, &collector.MockRateSource{Rate: 1})

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Requested != 2 || res.Fetched != 1 || res.Skipped != 1 {
		t.Errorf("unexpected counts: %+v", res)
	}
	if len(res.Snapshot.MyStock) != 0 {
		t.Error("missing my_stock file should give an empty MyStock")
	}
}

func TestRun_ExchangeRateFallback(t *testing.T) {
	dir := t.TempDir()
	writeSymbols(t, dir, "new_stocks.txt", "AAA")
	fetcher := &collector.MockFetcher{Quotes: map[string]model.RawQuote{"AAA": {Open: 100, Current: 110}}}

	r, _, _ := newTestRunner(t, dir, fetcher, &collector.MockRateSource{Err: errors.New("down")})
	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error without fallback rate")
	}
	if _, err := os.Stat(r.Opts.Paths.Dated(r.Now())); !os.IsNotExist(err) {
		t.Error("no snapshot should be written when the rate is unavailable")
	}

	r.Opts.FallbackRate = 0.5
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.ExchangeRate != 0.5 {
		t.Errorf("expected fallback rate, got %v", res.ExchangeRate)
	}
	if q := res.Snapshot.NewStock[0]; q.CurrentPrice != 55 || q.OpenPrice != 50 {
		t.Errorf("prices not converted with fallback rate: %+v", q)
	}
}

func TestRun_CancelledKeepsSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeSymbols(t, dir, "new_stocks.txt", "AAA")
	writeSymbols(t, dir, "my_stock.txt", "MMM")
	fetcher := &collector.MockFetcher{Quotes: map[string]model.RawQuote{
		"AAA": {Open: 100, Current: 103},
		"MMM": {Open: 50, Current: 51},
	}}
	r, rec, n := newTestRunner(t, dir, fetcher, &collector.MockRateSource{Rate: 1})

	first, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := r.Run(ctx)
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got result %+v, err %v", res, err)
	}
	if res != nil {
		t.Error("cancelled run should not return a result")
	}

	for _, path := range []string{first.DatedPath, first.AliasPath} {
		snap, err := sheet.ReadSnapshot(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(snap.MyStock) != 1 || snap.MyStock[0].Symbol != "MMM" {
			t.Errorf("%s: MyStock overwritten: %+v", filepath.Base(path), snap.MyStock)
		}
		if len(snap.NewStock) != 1 || snap.NewStock[0].Execution != model.ExecutionCurrent {
			t.Errorf("%s: NewStock overwritten: %+v", filepath.Base(path), snap.NewStock)
		}
	}
	if len(rec.runs) != 1 || len(n.texts) != 1 {
		t.Errorf("cancelled run should not be recorded or reported: runs %d, messages %d", len(rec.runs), len(n.texts))
	}
}

func TestRun_ScreenshotWithShortCaption(t *testing.T) {
	dir := t.TempDir()
	symbols := make([]string, 0, 30)
	quotes := make(map[string]model.RawQuote, 30)
	for i := 0; i < 30; i++ {
		s := fmt.Sprintf("SYM%02d", i)
		symbols = append(symbols, s)
		quotes[s] = model.RawQuote{Open: 100, Current: 110}
	}
	writeSymbols(t, dir, "new_stocks.txt", symbols...)
	r, _, n := newTestRunner(t, dir, &collector.MockFetcher{Quotes: quotes}, &collector.MockRateSource{Rate: 1})
	r.Opts.Screenshot = true
	var page string
	r.Screenshot = func(_ context.Context, html string) ([]byte, error) {
		page = html
		return []byte("png"), nil
	}

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page, "SYM29") {
		t.Error("dashboard page does not show the written snapshot")
	}
	if len(n.photos) != 1 || string(n.photos[0]) != "png" {
		t.Fatalf("expected one photo, got %d", len(n.photos))
	}
	if len(n.captions[0]) > 1024 || strings.Contains(n.captions[0], "SYM") {
		t.Errorf("caption should be a short summary, got %d bytes", len(n.captions[0]))
	}
	if len(n.texts) != 1 || !strings.Contains(n.texts[0], "SYM00") {
		t.Errorf("full report should follow as text, got %v", n.texts)
	}
}
