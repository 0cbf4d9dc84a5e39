package render

import (
	"html/template"
	"strings"
	"unicode"

	"StockWatch/internal/sheet"
)

// Section titles, in page order.
var sectionTitles = []struct {
	Sheet string
	Title string
}{
	{sheet.SheetNewStock, "NewStock"},
	{sheet.SheetWatchedStock, "Watched Stock"},
	{sheet.SheetMyStock, "MyStock"},
}

// DashboardSheets lists the workbook sheets the dashboard shows.
var DashboardSheets = []string{sheet.SheetTimezone, sheet.SheetNewStock, sheet.SheetWatchedStock, sheet.SheetMyStock}

type cellView struct {
	Value string
	Style template.CSS
}

type sectionView struct {
	Title string
	Rows  [][]cellView
}

type dashboardView struct {
	Timezone [][]cellView
	Status   Status
	Sections []sectionView
}

var dashboardTpl = template.Must(template.New("dashboard").Parse(dashboardHTMLTemplate))

// Dashboard renders the workbook grids as a full HTML page.
func Dashboard(grids map[string][][]sheet.Cell, status Status) (string, error) {
	view := dashboardView{
		Timezone: buildRows(grids[sheet.SheetTimezone]),
		Status:   status,
	}
	for _, s := range sectionTitles {
		view.Sections = append(view.Sections, sectionView{Title: s.Title, Rows: buildRows(grids[s.Sheet])})
	}
	var b strings.Builder
	if err := dashboardTpl.Execute(&b, view); err != nil {
		return "", err
	}
	return b.String(), nil
}

func buildRows(grid [][]sheet.Cell) [][]cellView {
	rows := make([][]cellView, 0, len(grid))
	for _, row := range grid {
		out := make([]cellView, 0, len(row))
		for _, c := range row {
			out = append(out, cellView{Value: c.Value, Style: CellStyle(c)})
		}
		rows = append(rows, out)
	}
	return rows
}

// CellStyle returns the inline CSS for a workbook cell.
func CellStyle(c sheet.Cell) template.CSS {
	var styles []string
	if isHex(c.Color) {
		styles = append(styles, "color: #"+c.Color+";")
	}
	if isUpper(c.Value) {
		styles = append(styles, "text-transform: uppercase;")
	}
	if c.Bold {
		styles = append(styles, "font-weight: bold;")
	}
	if c.Italic {
		styles = append(styles, "font-style: italic;")
	}
	return template.CSS(strings.Join(styles, " "))
}

// isUpper reports whether s has at least one cased letter and no lower-case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func isHex(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

const dashboardHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Stock Dashboard</title>
  <style>
    body {
      font-family: Arial, sans-serif;
      margin: 0;
      padding: 0;
    }
    .container {
      display: flex;
      flex-direction: column;
      align-items: center;
      width: 100%;
      height: 100vh;
    }
    .section-container {
      display: flex;
      justify-content: space-between;
      width: 100%;
      height: calc(100% - 100px);
    }
    .section {
      flex-basis: 33%;
      padding: 10px;
      border: 1px solid #ddd;
      text-align: center;
      overflow-y: auto;
      box-sizing: border-box;
      height: 100%;
    }
    .section h3 { margin-top: 0; }
    table {
      width: 100%;
      table-layout: fixed;
      word-wrap: break-word;
      border-collapse: collapse;
    }
    th, td {
      padding: 8px;
      text-align: left;
      border: 1px solid #ddd;
    }
    .status { text-align: center; margin: 20px; }
    .started { color: red; font-weight: bold; }
    .not-started { color: green; font-weight: bold; }
  </style>
</head>
<body>
  <div class="container">
    <div>
      <table>
        {{range .Timezone}}<tr>{{range .}}<td style="{{.Style}}">{{.Value}}</td>{{end}}</tr>
        {{end}}
      </table>
    </div>
    <div class="status">
      <h2><span class="{{if .Status.Started}}started{{else}}not-started{{end}}">{{.Status.Text}}</span></h2>
    </div>
    <div class="section-container">
      {{range .Sections}}
      <div class="section">
        <h3>{{.Title}}</h3>
        <table>
          {{range .Rows}}<tr>{{range .}}<td style="{{.Style}}">{{.Value}}</td>{{end}}</tr>
          {{end}}
        </table>
      </div>
      {{end}}
    </div>
  </div>
</body>
</html>`
