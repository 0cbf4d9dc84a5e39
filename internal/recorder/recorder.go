package recorder

import (
	"time"

	"StockWatch/internal/model"
)

// Bucket names used in quote history.
const (
	BucketNew     = "new"
	BucketWatched = "watched"
	BucketMy      = "my"
)

// RunRecord summarizes one collector run.
type RunRecord struct {
	RunID        string
	StartedAt    time.Time
	Threshold    float64
	ExchangeRate float64
	Requested    int
	Fetched      int
	Skipped      int
	NewCount     int
	WatchedCount int
	MyCount      int
	OutputPath   string
}

// NewRunRecord builds the record of a finished run.
func NewRunRecord(res *model.RunResult) *RunRecord {
	rec := &RunRecord{
		RunID:        res.RunID,
		StartedAt:    res.StartedAt,
		Threshold:    res.Threshold,
		ExchangeRate: res.ExchangeRate,
		Requested:    res.Requested,
		Fetched:      res.Fetched,
		Skipped:      res.Skipped,
		OutputPath:   res.DatedPath,
	}
	if s := res.Snapshot; s != nil {
		rec.NewCount = len(s.NewStock)
		rec.WatchedCount = len(s.WatchedStock)
		rec.MyCount = len(s.MyStock)
	}
	return rec
}

// Recorder persists run history for analysis.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	// RecordQuotes stores quotes under a run already passed to RecordRun.
	RecordQuotes(runID, bucket string, quotes []model.Quote) error
	// LastRun returns the most recent run, or nil if none was recorded.
	LastRun() (*RunRecord, error)
	Close() error
}
