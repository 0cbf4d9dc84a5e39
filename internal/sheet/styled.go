package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Cell is a displayed cell value with the font formatting stored in the workbook.
type Cell struct {
	Value  string
	Color  string // RGB hex without '#', empty when the font has no RGB color
	Bold   bool
	Italic bool
}

// ReadStyled reads the named sheets of the workbook at path as grids of
// styled cells. A sheet that does not exist yields an empty grid.
func ReadStyled(path string, sheets ...string) (map[string][][]Cell, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	fonts := make(map[int]*excelize.Font)
	out := make(map[string][][]Cell, len(sheets))
	for _, name := range sheets {
		if !hasSheet(f, name) {
			out[name] = nil
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		grid := make([][]Cell, len(rows))
		for r, row := range rows {
			grid[r] = make([]Cell, len(row))
			for c, v := range row {
				cell := Cell{Value: v}
				ref, _ := excelize.CoordinatesToCellName(c+1, r+1)
				font, err := cellFont(f, name, ref, fonts)
				if err != nil {
					return nil, fmt.Errorf("style %s!%s: %w", name, ref, err)
				}
				if font != nil {
					cell.Color = rgb(font.Color)
					cell.Bold = font.Bold
					cell.Italic = font.Italic
				}
				grid[r][c] = cell
			}
		}
		out[name] = grid
	}
	return out, nil
}

func cellFont(f *excelize.File, sheet, ref string, cache map[int]*excelize.Font) (*excelize.Font, error) {
	id, err := f.GetCellStyle(sheet, ref)
	if err != nil {
		return nil, err
	}
	if font, ok := cache[id]; ok {
		return font, nil
	}
	style, err := f.GetStyle(id)
	if err != nil {
		return nil, err
	}
	cache[id] = style.Font
	return style.Font, nil
}

// rgb reduces an ARGB or RGB color to its six RGB hex digits.
func rgb(color string) string {
	color = strings.TrimPrefix(strings.ToUpper(color), "#")
	if len(color) == 8 {
		return color[2:]
	}
	if len(color) == 6 {
		return color
	}
	return ""
}
