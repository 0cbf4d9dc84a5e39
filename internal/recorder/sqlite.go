package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"StockWatch/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id        TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			threshold     REAL,
			exchange_rate REAL,
			requested     INTEGER,
			fetched       INTEGER,
			skipped       INTEGER,
			new_count     INTEGER,
			watched_count INTEGER,
			my_count      INTEGER,
			output_path   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS quote_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			timestamp     INTEGER NOT NULL,
			bucket        TEXT,
			symbol        TEXT,
			open_price    REAL,
			current_price REAL,
			rise_percent  REAL,
			price_delta   REAL,
			execution     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quote_symbol_ts ON quote_history(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(run_id, timestamp, threshold, exchange_rate, requested, fetched, skipped,
		 new_count, watched_count, my_count, output_path)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, rec.StartedAt.Unix(), rec.Threshold, rec.ExchangeRate,
		rec.Requested, rec.Fetched, rec.Skipped,
		rec.NewCount, rec.WatchedCount, rec.MyCount, rec.OutputPath,
	)
	return err
}

func (r *SQLiteRecorder) RecordQuotes(runID, bucket string, quotes []model.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	// History rows share the timestamp of their run.
	var ts int64
	if err := tx.QueryRow(`SELECT timestamp FROM runs WHERE run_id = ?`, runID).Scan(&ts); err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("run %s not recorded", runID)
		}
		return fmt.Errorf("load run %s: %w", runID, err)
	}
	stmt, err := tx.Prepare(`INSERT INTO quote_history
		(run_id, timestamp, bucket, symbol, open_price, current_price, rise_percent, price_delta, execution)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		var d sql.NullFloat64
		if q.PriceDelta != nil {
			d = sql.NullFloat64{Float64: *q.PriceDelta, Valid: true}
		}
		if _, err := stmt.Exec(runID, ts, bucket, q.Symbol, q.OpenPrice, q.CurrentPrice,
			q.RisePercent, d, string(q.Execution)); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", q.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) LastRun() (*RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		rec RunRecord
		ts  int64
	)
	err := r.db.QueryRow(`SELECT run_id, timestamp, threshold, exchange_rate, requested, fetched, skipped,
		new_count, watched_count, my_count, output_path
		FROM runs ORDER BY timestamp DESC, rowid DESC LIMIT 1`).Scan(
		&rec.RunID, &ts, &rec.Threshold, &rec.ExchangeRate, &rec.Requested, &rec.Fetched, &rec.Skipped,
		&rec.NewCount, &rec.WatchedCount, &rec.MyCount, &rec.OutputPath,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.StartedAt = time.Unix(ts, 0)
	return &rec, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
