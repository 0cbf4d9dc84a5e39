package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"StockWatch/internal/model"
	"StockWatch/internal/recorder"
	"StockWatch/internal/sheet"
)

type stubJob struct {
	mu      sync.Mutex
	calls   int
	err     error
	release chan struct{}
	started chan struct{}
}

func (j *stubJob) Run(_ context.Context) (*model.RunResult, error) {
	j.mu.Lock()
	j.calls++
	j.mu.Unlock()
	if j.started != nil {
		close(j.started)
	}
	if j.release != nil {
		<-j.release
	}
	if j.err != nil {
		return nil, j.err
	}
	return &model.RunResult{RunID: "r1"}, nil
}

type stubSender struct {
	texts []string
}

func (s *stubSender) SendWithRetry(_ context.Context, text string, _ int) error {
	s.texts = append(s.texts, text)
	return nil
}

type stubRecorder struct {
	recorder.NoopRecorder
	last *recorder.RunRecord
}

func (s *stubRecorder) LastRun() (*recorder.RunRecord, error) { return s.last, nil }

func TestRunNow_ReportsFailure(t *testing.T) {
	job := &stubJob{err: errors.New("rate unavailable")}
	sender := &stubSender{}
	s := NewScheduler(context.Background(), job, nil, sender, "")

	if !s.RunNow() {
		t.Fatal("expected run to start")
	}
	if len(sender.texts) != 1 || !strings.Contains(sender.texts[0], "rate unavailable") {
		t.Errorf("expected failure notification, got %v", sender.texts)
	}
}

func TestRunNow_SkipsWhileRunning(t *testing.T) {
	job := &stubJob{release: make(chan struct{}), started: make(chan struct{})}
	s := NewScheduler(context.Background(), job, nil, nil, "")

	done := make(chan bool)
	go func() { done <- s.RunNow() }()
	<-job.started

	if s.RunNow() {
		t.Error("second run should be skipped while the first is in progress")
	}
	if got := s.HandleCommand("/run"); !strings.Contains(got, "already in progress") {
		t.Errorf("unexpected /run reply %q", got)
	}
	close(job.release)

	select {
	case ok := <-done:
		if !ok {
			t.Error("first run should have run")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not finish")
	}
	if job.calls != 1 {
		t.Errorf("expected 1 call, got %d", job.calls)
	}
}

func TestRegister_InvalidCron(t *testing.T) {
	s := NewScheduler(context.Background(), &stubJob{}, nil, nil, "")
	if err := s.Register("not a cron"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	if err := s.Register("0 */15 15-22 * * 1-5"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandleCommand(t *testing.T) {
	dir := t.TempDir()
	alias := filepath.Join(dir, "stock_data_output_1.xlsx")
	delta := 1.5
	snap := &model.Snapshot{
		NewStock: []model.Quote{
			{Symbol: "AAPL", StockName: "AAPL", OpenPrice: 100, CurrentPrice: 103, RisePercent: 3, Execution: model.ExecutionCurrent, PriceDelta: &delta},
			{Symbol: "OLD", StockName: "OLD", OpenPrice: 10, CurrentPrice: 11, RisePercent: 10, Execution: model.ExecutionPrevious},
		},
		WatchedStock: []model.Quote{},
		MyStock:      []model.Quote{},
		RefreshedAt:  "2024-11-20 16:04:05 CET",
		Timezone:     "CET",
	}
	if err := sheet.Write(alias, snap); err != nil {
		t.Fatal(err)
	}

	rec := &stubRecorder{last: &recorder.RunRecord{RunID: "r1", Requested: 3, Fetched: 2, Skipped: 1}}
	s := NewScheduler(context.Background(), &stubJob{}, rec, nil, alias)

	if got := s.HandleCommand("/status"); !strings.Contains(got, "Fetched: 2/3") {
		t.Errorf("unexpected /status reply %q", got)
	}
	got := s.HandleCommand("/new")
	if !strings.Contains(got, "AAPL") || strings.Contains(got, "OLD") {
		t.Errorf("/new should list current rows only, got %q", got)
	}
	if got := s.HandleCommand("hello"); !strings.Contains(got, "/run") {
		t.Errorf("expected help text, got %q", got)
	}

	missing := NewScheduler(context.Background(), &stubJob{}, nil, nil, filepath.Join(dir, "none.xlsx"))
	if got := missing.HandleCommand("/new"); !strings.Contains(got, "No snapshot") {
		t.Errorf("unexpected reply for missing snapshot %q", got)
	}
	if got := missing.HandleCommand("/status"); !strings.Contains(got, "No run recorded") {
		t.Errorf("unexpected reply without runs %q", got)
	}
}
