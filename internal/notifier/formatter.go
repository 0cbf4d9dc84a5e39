package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockWatch/internal/model"
	"StockWatch/internal/recorder"
)

// maxListed caps how many rows a message lists.
const maxListed = 20

// FormatRunReport formats a finished collector run.
func FormatRunReport(res *model.RunResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>StockWatch</b> | %s\n\n", res.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Fetched %d/%d symbols (rate %.4f, threshold %.1f%%)\n",
		res.Fetched, res.Requested, res.ExchangeRate, res.Threshold))
	if res.Snapshot == nil {
		return b.String()
	}
	s := res.Snapshot
	b.WriteString(fmt.Sprintf("New: %d | Watched: %d | MyStock: %d\n\n", len(s.NewStock), len(s.WatchedStock), len(s.MyStock)))
	b.WriteString(FormatBucket("New stock", s.NewStock))
	return b.String()
}

// FormatPhotoCaption is the short caption sent with the dashboard image.
func FormatPhotoCaption(res *model.RunResult) string {
	caption := fmt.Sprintf("📈 StockWatch | %s", res.StartedAt.Format("2006-01-02 15:04"))
	if res.Snapshot != nil {
		caption += fmt.Sprintf(" | new %d", len(res.Snapshot.NewStock))
	}
	return caption
}

// FormatBucket lists the rows of a bucket fetched by the current run.
func FormatBucket(title string, quotes []model.Quote) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(title)))
	n := 0
	for _, q := range quotes {
		if q.Execution != model.ExecutionCurrent {
			continue
		}
		if n == maxListed {
			b.WriteString("  …\n")
			break
		}
		b.WriteString("  " + formatQuote(q) + "\n")
		n++
	}
	if n == 0 {
		b.WriteString("  (none)\n")
	}
	return b.String()
}

func formatQuote(q model.Quote) string {
	line := fmt.Sprintf("%s %.2f → %.2f (%+.1f%%)", html.EscapeString(q.Symbol), q.OpenPrice, q.CurrentPrice, q.RisePercent)
	if q.PriceDelta != nil {
		line += fmt.Sprintf(" Δ%+.1f", *q.PriceDelta)
	}
	return line
}

// FormatLastRun formats a recorded run for the /status command.
func FormatLastRun(rec *recorder.RunRecord) string {
	if rec == nil {
		return "No run recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Last run</b>\n\n")
	b.WriteString(fmt.Sprintf("Started: %s\n", rec.StartedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Fetched: %d/%d (skipped %d)\n", rec.Fetched, rec.Requested, rec.Skipped))
	b.WriteString(fmt.Sprintf("New: %d | Watched: %d | MyStock: %d\n", rec.NewCount, rec.WatchedCount, rec.MyCount))
	b.WriteString(fmt.Sprintf("Output: %s\n", html.EscapeString(rec.OutputPath)))
	return b.String()
}
