// Package sheet persists snapshots as xlsx workbooks and reads them back,
// both as quotes and as styled cell grids for display.
package sheet

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Sheet names of a snapshot workbook.
const (
	SheetNewStock     = "NewStock"
	SheetWatchedStock = "WatchedStock"
	SheetMyStock      = "MyStock"
	SheetTimezone     = "Timezonesheet"
)

// Column headers.
const (
	ColSymbol       = "symbol"
	ColStockName    = "stock_name"
	ColOpenPrice    = "open_price"
	ColCurrentPrice = "current_price"
	ColRise         = "rise%"
	ColExecution    = "Execution"
	ColPriceDelta   = "curr_ct_price - prev_ct_price"
)

var (
	bucketHeader  = []string{ColSymbol, ColStockName, ColOpenPrice, ColCurrentPrice, ColRise, ColExecution, ColPriceDelta}
	myStockHeader = []string{ColSymbol, ColStockName, ColOpenPrice, ColCurrentPrice, ColRise}
)

// Paths names the snapshot files of a storage directory.
type Paths struct {
	Dir    string
	Prefix string
	Alias  string
}

// Dated returns the path of the snapshot written on t's calendar day.
func (p Paths) Dated(t time.Time) string {
	return filepath.Join(p.Dir, fmt.Sprintf("%s_%s.xlsx", p.Prefix, t.Format("2006-01-02")))
}

// AliasPath returns the fixed-name copy the viewer reads.
func (p Paths) AliasPath() string {
	return filepath.Join(p.Dir, fmt.Sprintf("%s_%s.xlsx", p.Prefix, p.Alias))
}

// FormatRefreshed formats a last-refreshed timestamp, e.g. "2024-11-20 16:04:05 CET".
func FormatRefreshed(t time.Time, tz string) string {
	return t.Format("2006-01-02 15:04:05") + " " + tz
}

// CopyFile copies src over dst. dst is replaced by rename, so readers see
// either the old or the new file.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
