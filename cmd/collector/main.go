package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"StockWatch/internal/collector"
	"StockWatch/internal/config"
	"StockWatch/internal/notifier"
	"StockWatch/internal/recorder"
	"StockWatch/internal/runner"
	"StockWatch/internal/scheduler"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockWatch collector starting...")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetchers
	fetcher := collector.NewFinnhubFetcher(cfg.Finnhub.BaseURL, cfg.Finnhub.APIKey, cfg.Finnhub.RequestsPerMinute, cfg.Proxy)
	rates := collector.NewExchangeRateFetcher(cfg.Exchange.BaseURL, cfg.Exchange.APIKey, cfg.Proxy)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	opts, err := runner.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalf("[FATAL] runner options: %v", err)
	}
	var n runner.Notifier
	if tn != nil {
		n = tn
	}
	run := runner.New(opts, collector.NewCollector(fetcher), rates, rec, n)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Without a schedule, run once and exit
	if cfg.Schedule.CollectCron == "" {
		runOnce(ctx, run)
		return
	}

	var sender scheduler.Sender
	if tn != nil {
		sender = tn
	}
	sched := scheduler.NewScheduler(ctx, run, rec, sender, opts.Paths.AliasPath())
	if err := sched.Register(cfg.Schedule.CollectCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, collecting now")
		go sched.RunNow()
	}

	log.Println("[INFO] StockWatch collector is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] StockWatch collector stopped")
}

// runOnce performs a single run. A failed run is logged; the process still
// exits normally.
func runOnce(ctx context.Context, job scheduler.Job) bool {
	if _, err := job.Run(ctx); err != nil {
		log.Printf("[ERROR] collect: %v", err)
		return false
	}
	log.Println("[INFO] StockWatch collector finished")
	return true
}
