package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"StockWatch/internal/model"
	"StockWatch/internal/notifier"
	"StockWatch/internal/recorder"
	"StockWatch/internal/sheet"

	"github.com/robfig/cron/v3"
)

// Job is one collector run.
type Job interface {
	Run(ctx context.Context) (*model.RunResult, error)
}

// Sender delivers text messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the collector on a cron schedule and on demand.
type Scheduler struct {
	Cron      *cron.Cron
	Job       Job
	Recorder  recorder.Recorder
	Sender    Sender
	AliasPath string
	Ctx       context.Context

	// mu serializes runs started by cron and by commands.
	mu sync.Mutex
}

// NewScheduler creates a new Scheduler. sender may be nil.
func NewScheduler(ctx context.Context, job Job, rec recorder.Recorder, sender Sender, aliasPath string) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Job:       job,
		Recorder:  rec,
		Sender:    sender,
		AliasPath: aliasPath,
		Ctx:       ctx,
	}
}

// Register schedules the collector run.
func (s *Scheduler) Register(collectCron string) error {
	if _, err := s.Cron.AddFunc(collectCron, func() { s.RunNow() }); err != nil {
		return fmt.Errorf("register collect task: %w", err)
	}
	log.Printf("[INFO] collect task scheduled: %s", collectCron)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a collector run immediately. It returns false without
// running if another run is in progress.
func (s *Scheduler) RunNow() bool {
	if !s.mu.TryLock() {
		log.Println("[WARN] collector run already in progress, skipped")
		return false
	}
	defer s.mu.Unlock()

	log.Println("[INFO] running collect task")
	res, err := s.Job.Run(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] collect: %v", err)
		s.trySend(fmt.Sprintf("❌ Collector run failed: %v", err))
		return true
	}
	log.Printf("[INFO] run %s finished: %d/%d fetched", res.RunID, res.Fetched, res.Requested)
	return true
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run":
		if !s.RunNow() {
			return "A collector run is already in progress."
		}
		return ""
	case "/status":
		rec, err := s.Recorder.LastRun()
		if err != nil {
			log.Printf("[ERROR] load last run: %v", err)
			return "Could not load the last run."
		}
		return notifier.FormatLastRun(rec)
	case "/new":
		snap, err := sheet.ReadSnapshot(s.AliasPath)
		if err != nil {
			log.Printf("[ERROR] read snapshot: %v", err)
			return "No snapshot available yet."
		}
		return notifier.FormatBucket("New stock", snap.NewStock)
	default:
		return "Available commands:\n• /run collect now\n• /status last run\n• /new current new stocks"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Sender == nil {
		return
	}
	if err := s.Sender.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
