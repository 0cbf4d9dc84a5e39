package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockWatch/internal/classifier"
	"StockWatch/internal/collector"
	"StockWatch/internal/config"
	"StockWatch/internal/model"
	"StockWatch/internal/notifier"
	"StockWatch/internal/recorder"
	"StockWatch/internal/render"
	"StockWatch/internal/sheet"

	"github.com/google/uuid"
)

// Notifier receives run reports. Nil disables notification.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendPhoto(ctx context.Context, png []byte, caption string) error
}

// Options configures a Runner.
type Options struct {
	NewStockFile   string
	MyStockFile    string
	BaseCurrency   string
	TargetCurrency string
	FallbackRate   float64
	Threshold      float64
	Timezone       *time.Location
	TimezoneName   string
	Paths          sheet.Paths
	Screenshot     bool
	MarketName     string
	MarketOpenHour int
}

// OptionsFromConfig builds runner options from the application config.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Options{}, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return Options{
		NewStockFile:   cfg.Symbols.NewStockFile,
		MyStockFile:    cfg.Symbols.MyStockFile,
		BaseCurrency:   cfg.Exchange.BaseCurrency,
		TargetCurrency: cfg.Exchange.TargetCurrency,
		FallbackRate:   cfg.Exchange.FallbackRate,
		Threshold:      cfg.Settings.RiseThreshold,
		Timezone:       loc,
		TimezoneName:   cfg.Timezone,
		Paths:          sheet.Paths{Dir: cfg.Storage.Dir, Prefix: cfg.Storage.Prefix, Alias: cfg.Storage.Alias},
		Screenshot:     cfg.Telegram.SendScreenshot,
		MarketName:     cfg.Viewer.MarketName,
		MarketOpenHour: cfg.Viewer.MarketOpenHour,
	}, nil
}

// Runner performs collector runs.
type Runner struct {
	Opts      Options
	Collector *collector.Collector
	Rates     collector.RateSource
	Recorder  recorder.Recorder
	Notifier  Notifier
	Now       func() time.Time

	// Screenshot renders the dashboard page to PNG.
	Screenshot func(ctx context.Context, html string) ([]byte, error)
}

// New creates a Runner. rec may be nil; n may be nil.
func New(opts Options, col *collector.Collector, rates collector.RateSource, rec recorder.Recorder, n Notifier) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}
	return &Runner{
		Opts:       opts,
		Collector:  col,
		Rates:      rates,
		Recorder:   rec,
		Notifier:   n,
		Now:        time.Now,
		Screenshot: render.RenderPNG,
	}
}

// Run fetches the current batch, merges it into today's prior snapshot and
// writes the new snapshot. Only failures that leave nothing to write are
// returned; copy, record and notify failures are logged.
func (r *Runner) Run(ctx context.Context) (*model.RunResult, error) {
	now := r.Now().In(r.Opts.Timezone)
	res := &model.RunResult{
		RunID:     uuid.NewString(),
		StartedAt: now,
		Threshold: r.Opts.Threshold,
		DatedPath: r.Opts.Paths.Dated(now),
		AliasPath: r.Opts.Paths.AliasPath(),
	}
	log.Printf("[INFO] run %s started, threshold %.2f", res.RunID, res.Threshold)

	rate, err := r.exchangeRate(ctx)
	if err != nil {
		return nil, err
	}
	res.ExchangeRate = rate

	symbols := collector.ReadSymbols(r.Opts.NewStockFile)
	current := r.Collector.CollectBatch(ctx, symbols, rate, model.ExecutionCurrent)
	res.Requested = len(symbols)
	res.Fetched = len(current)
	res.Skipped = res.Requested - res.Fetched
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collect new stock: %w", err)
	}

	prior, err := sheet.ReadPrior(res.DatedPath)
	if err != nil {
		return nil, fmt.Errorf("read prior snapshot: %w", err)
	}
	log.Printf("[INFO] %d current quotes, %d prior rows", len(current), len(prior))

	cls := classifier.Classify(current, prior, r.Opts.Threshold)

	mySymbols := collector.ReadSymbols(r.Opts.MyStockFile)
	myStock := r.Collector.CollectBatch(ctx, mySymbols, rate, "")
	// A cancelled run leaves the existing snapshot in place.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collect my stock: %w", err)
	}

	res.Snapshot = &model.Snapshot{
		NewStock:     cls.NewStock,
		WatchedStock: cls.WatchedStock,
		MyStock:      myStock,
		RefreshedAt:  sheet.FormatRefreshed(now, r.Opts.TimezoneName),
		Timezone:     r.Opts.TimezoneName,
	}

	if err := sheet.Write(res.DatedPath, res.Snapshot); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	log.Printf("[INFO] snapshot written to %s (new %d, watched %d, my %d)",
		res.DatedPath, len(cls.NewStock), len(cls.WatchedStock), len(myStock))

	if err := sheet.CopyFile(res.DatedPath, res.AliasPath); err != nil {
		log.Printf("[ERROR] copy snapshot to %s: %v", res.AliasPath, err)
	} else {
		log.Printf("[INFO] snapshot copied to %s", res.AliasPath)
	}

	r.record(res)
	r.notify(ctx, res)
	return res, nil
}

func (r *Runner) exchangeRate(ctx context.Context) (float64, error) {
	rate, err := r.Rates.FetchRate(ctx, r.Opts.BaseCurrency, r.Opts.TargetCurrency)
	if err == nil {
		return rate, nil
	}
	if r.Opts.FallbackRate > 0 {
		log.Printf("[WARN] fetch exchange rate: %v, using fallback %.4f", err, r.Opts.FallbackRate)
		return r.Opts.FallbackRate, nil
	}
	return 0, fmt.Errorf("fetch exchange rate: %w", err)
}

func (r *Runner) record(res *model.RunResult) {
	if err := r.Recorder.RecordRun(recorder.NewRunRecord(res)); err != nil {
		log.Printf("[ERROR] record run: %v", err)
		return
	}
	buckets := []struct {
		name   string
		quotes []model.Quote
	}{
		{recorder.BucketNew, res.Snapshot.NewStock},
		{recorder.BucketWatched, res.Snapshot.WatchedStock},
		{recorder.BucketMy, res.Snapshot.MyStock},
	}
	for _, b := range buckets {
		if err := r.Recorder.RecordQuotes(res.RunID, b.name, b.quotes); err != nil {
			log.Printf("[ERROR] record %s quotes: %v", b.name, err)
		}
	}
}

func (r *Runner) notify(ctx context.Context, res *model.RunResult) {
	if r.Notifier == nil {
		return
	}
	if r.Opts.Screenshot {
		if err := r.sendScreenshot(ctx, res); err != nil {
			log.Printf("[WARN] send dashboard screenshot: %v", err)
		}
	}
	report := notifier.FormatRunReport(res)
	if err := r.Notifier.SendWithRetry(ctx, report, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

// sendScreenshot sends the dashboard image with a short caption. The full
// report follows as a text message, which has a higher length limit.
func (r *Runner) sendScreenshot(ctx context.Context, res *model.RunResult) error {
	grids, err := sheet.ReadStyled(res.DatedPath, render.DashboardSheets...)
	if err != nil {
		return err
	}
	status := render.MarketStatus(res.StartedAt, r.Opts.Timezone, r.Opts.MarketOpenHour, r.Opts.MarketName)
	page, err := render.Dashboard(grids, status)
	if err != nil {
		return err
	}
	png, err := r.Screenshot(ctx, page)
	if err != nil {
		return err
	}
	return r.Notifier.SendPhoto(ctx, png, notifier.FormatPhotoCaption(res))
}
