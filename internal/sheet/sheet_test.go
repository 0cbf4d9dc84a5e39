package sheet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"StockWatch/internal/model"
)

func ptr(v float64) *float64 { return &v }

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		NewStock: []model.Quote{
			{Symbol: "ABC", StockName: "ABC", OpenPrice: 10, CurrentPrice: 10.5, RisePercent: 5, Execution: model.ExecutionCurrent},
		},
		WatchedStock: []model.Quote{
			{Symbol: "DEF", StockName: "DEF", OpenPrice: 20, CurrentPrice: 20.1, RisePercent: 0.5, PriceDelta: ptr(-0.3), Execution: model.ExecutionPrevious},
			{Symbol: "GHI", StockName: "GHI", OpenPrice: 5, CurrentPrice: 5, RisePercent: 0, PriceDelta: ptr(0.2), Execution: model.ExecutionCurrent},
		},
		MyStock: []model.Quote{
			{Symbol: "MSFT", StockName: "MSFT", OpenPrice: 380.12, CurrentPrice: 381.5, RisePercent: 0.4},
		},
		RefreshedAt: "2024-11-20 16:04:05 CET",
		Timezone:    "CET",
	}
}

func TestWriteReadPrior(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.xlsx")
	if err := Write(path, testSnapshot()); err != nil {
		t.Fatalf("write: %v", err)
	}

	prior, err := ReadPrior(path)
	if err != nil {
		t.Fatalf("read prior: %v", err)
	}
	if len(prior) != 3 {
		t.Fatalf("expected 3 prior rows, got %d", len(prior))
	}
	want := []string{"ABC", "DEF", "GHI"}
	for i, q := range prior {
		if q.Symbol != want[i] {
			t.Errorf("row %d: expected %s, got %s", i, want[i], q.Symbol)
		}
		if q.Execution != model.ExecutionPrevious {
			t.Errorf("row %d: expected Previous, got %q", i, q.Execution)
		}
	}
	if prior[0].CurrentPrice != 10.5 || prior[0].RisePercent != 5 || prior[0].PriceDelta != nil {
		t.Errorf("unexpected ABC row: %+v", prior[0])
	}
	if prior[1].PriceDelta == nil || *prior[1].PriceDelta != -0.3 {
		t.Errorf("expected DEF delta -0.3, got %v", prior[1].PriceDelta)
	}
}

func TestReadPrior_Missing(t *testing.T) {
	prior, err := ReadPrior(filepath.Join(t.TempDir(), "none.xlsx"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if len(prior) != 0 {
		t.Errorf("expected no rows, got %d", len(prior))
	}
}

func TestReadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.xlsx")
	if err := Write(path, testSnapshot()); err != nil {
		t.Fatal(err)
	}
	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.NewStock) != 1 || len(snap.WatchedStock) != 2 || len(snap.MyStock) != 1 {
		t.Fatalf("unexpected bucket sizes: %d/%d/%d", len(snap.NewStock), len(snap.WatchedStock), len(snap.MyStock))
	}
	if snap.WatchedStock[0].Execution != model.ExecutionPrevious || snap.NewStock[0].Execution != model.ExecutionCurrent {
		t.Errorf("execution tags not kept: %+v %+v", snap.WatchedStock[0], snap.NewStock[0])
	}
	if snap.MyStock[0].OpenPrice != 380.12 {
		t.Errorf("expected 380.12, got %v", snap.MyStock[0].OpenPrice)
	}
	if snap.RefreshedAt != "2024-11-20 16:04:05 CET" || snap.Timezone != "CET" {
		t.Errorf("unexpected timezone sheet: %q %q", snap.RefreshedAt, snap.Timezone)
	}
}

func TestReadStyled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.xlsx")
	if err := Write(path, testSnapshot()); err != nil {
		t.Fatal(err)
	}
	grids, err := ReadStyled(path, SheetNewStock, SheetWatchedStock, "Missing")
	if err != nil {
		t.Fatal(err)
	}
	ns := grids[SheetNewStock]
	if len(ns) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(ns))
	}
	if !ns[0][0].Bold || ns[0][0].Value != ColSymbol {
		t.Errorf("expected bold header, got %+v", ns[0][0])
	}
	if ns[1][0].Value != "ABC" || ns[1][0].Color != "008000" {
		t.Errorf("expected green ABC, got %+v", ns[1][0])
	}
	ws := grids[SheetWatchedStock]
	if ws[1][0].Color != "FFA500" || ws[2][0].Color != "008000" {
		t.Errorf("expected orange then green rows, got %+v / %+v", ws[1][0], ws[2][0])
	}
	if len(grids["Missing"]) != 0 {
		t.Errorf("expected empty grid for missing sheet")
	}
}

func TestParseRise(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		err  bool
	}{
		{"2.5", 2.5, false},
		{"2.5%", 2.5, false},
		{" -1.0% ", -1, false},
		{"", 0, false},
		{"n/a", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRise(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("%q: unexpected error state %v", tt.in, err)
		}
		if !tt.err && got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestPaths(t *testing.T) {
	p := Paths{Dir: "data", Prefix: "stock_data_output", Alias: "1"}
	day := time.Date(2024, 11, 20, 23, 0, 0, 0, time.UTC)
	if got := p.Dated(day); got != filepath.Join("data", "stock_data_output_2024-11-20.xlsx") {
		t.Errorf("unexpected dated path %s", got)
	}
	if got := p.AliasPath(); got != filepath.Join("data", "stock_data_output_1.xlsx") {
		t.Errorf("unexpected alias path %s", got)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	dst := filepath.Join(dir, "b")
	os.WriteFile(src, []byte("new"), 0644)
	os.WriteFile(dst, []byte("old"), 0644)
	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "new" {
		t.Errorf("expected new, got %q", data)
	}
	if err := CopyFile(filepath.Join(dir, "missing"), dst); err == nil {
		t.Error("expected error for missing source")
	}
}
