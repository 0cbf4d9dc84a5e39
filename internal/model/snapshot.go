package model

import "time"

// Snapshot is the full persisted state of all tracked symbols as of one run.
type Snapshot struct {
	NewStock     []Quote `json:"new_stock"`
	WatchedStock []Quote `json:"watched_stock"`
	MyStock      []Quote `json:"my_stock"`
	RefreshedAt  string  `json:"refreshed_at"`
	Timezone     string  `json:"timezone"`
}

// Classification is the output of the diff-and-classify pipeline.
type Classification struct {
	Combined     []Quote
	NewStock     []Quote
	WatchedStock []Quote
}

// RunResult summarizes one collector run.
type RunResult struct {
	RunID        string
	StartedAt    time.Time
	Threshold    float64
	ExchangeRate float64
	Requested    int
	Fetched      int
	Skipped      int
	DatedPath    string
	AliasPath    string
	Snapshot     *Snapshot
}
