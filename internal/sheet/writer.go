package sheet

import (
	"fmt"

	"StockWatch/internal/model"

	"github.com/xuri/excelize/v2"
)

// Write saves the snapshot as a new workbook at path, replacing any file
// there. Bucket rows are colored by their style tag.
func Write(path string, snap *model.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	w := &writer{f: f, styles: make(map[model.StyleTag]int)}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	w.header = headerStyle

	if err := f.SetSheetName("Sheet1", SheetNewStock); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	for _, name := range []string{SheetWatchedStock, SheetMyStock, SheetTimezone} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	if err := w.writeBucket(SheetNewStock, snap.NewStock); err != nil {
		return err
	}
	if err := w.writeBucket(SheetWatchedStock, snap.WatchedStock); err != nil {
		return err
	}
	if err := w.writeMyStock(snap.MyStock); err != nil {
		return err
	}
	if err := w.writeTimezone(snap.RefreshedAt, snap.Timezone); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

type writer struct {
	f      *excelize.File
	header int
	styles map[model.StyleTag]int
}

func (w *writer) rowStyle(tag model.StyleTag) (int, error) {
	if id, ok := w.styles[tag]; ok {
		return id, nil
	}
	id, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: tag.HexColor()}})
	if err != nil {
		return 0, err
	}
	w.styles[tag] = id
	return id, nil
}

func (w *writer) writeHeader(sheet string, header []string) error {
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := w.f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	return w.f.SetCellStyle(sheet, "A1", last, w.header)
}

func (w *writer) writeBucket(sheet string, quotes []model.Quote) error {
	if err := w.writeHeader(sheet, bucketHeader); err != nil {
		return err
	}
	for i, q := range quotes {
		var d interface{} = ""
		if q.PriceDelta != nil {
			d = *q.PriceDelta
		}
		row := []interface{}{q.Symbol, q.StockName, q.OpenPrice, q.CurrentPrice, q.RisePercent, string(q.Execution), d}
		first, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := w.f.SetSheetRow(sheet, first, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}

		tag := model.StyleOf(q)
		if tag == model.StyleNone {
			continue
		}
		style, err := w.rowStyle(tag)
		if err != nil {
			return fmt.Errorf("row style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(row), i+2)
		if err := w.f.SetCellStyle(sheet, first, last, style); err != nil {
			return fmt.Errorf("%s row %d style: %w", sheet, i+2, err)
		}
	}
	return nil
}

func (w *writer) writeMyStock(quotes []model.Quote) error {
	if err := w.writeHeader(SheetMyStock, myStockHeader); err != nil {
		return err
	}
	for i, q := range quotes {
		row := []interface{}{q.Symbol, q.StockName, q.OpenPrice, q.CurrentPrice, q.RisePercent}
		first, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := w.f.SetSheetRow(SheetMyStock, first, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", SheetMyStock, i+2, err)
		}
	}
	return nil
}

func (w *writer) writeTimezone(refreshed, tz string) error {
	cells := map[string]string{
		"A1": "Last Refreshed Time",
		"A2": refreshed,
		"B1": tz + " timezone",
		"B2": tz,
	}
	for cell, v := range cells {
		if err := w.f.SetCellStr(SheetTimezone, cell, v); err != nil {
			return fmt.Errorf("%s %s: %w", SheetTimezone, cell, err)
		}
	}
	return nil
}
