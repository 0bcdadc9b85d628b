package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Section names stored in ranked_entries.
const (
	SectionGainers   = "gainers"
	SectionLosers    = "losers"
	SectionBelowHigh = "below_high"
	SectionAboveLow  = "above_low"
	SectionReturns   = "returns_30d"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a run is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			duration_ms   INTEGER,
			index_name    TEXT,
			source        TEXT,
			status        TEXT NOT NULL,
			error         TEXT,
			quote_count   INTEGER,
			history_count INTEGER,
			skipped       INTEGER,
			failed        INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS ranked_entries (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL REFERENCES runs(id),
			section       TEXT NOT NULL,
			rank          INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			value         REAL,
			current_price REAL,
			extreme_price REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ranked_run ON ranked_entries(run_id, section)`,
		`CREATE INDEX IF NOT EXISTS idx_ranked_symbol ON ranked_entries(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run row and its ranked entries in one transaction.
func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs
		(id, timestamp, duration_ms, index_name, source, status, error,
		 quote_count, history_count, skipped, failed)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.StartedAt.Unix(), rec.Duration.Milliseconds(), rec.Index, rec.Source,
		rec.Status, rec.Error, rec.QuoteCount, rec.HistoryCount, rec.Skipped, rec.Failed,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if res := rec.Results; res != nil {
		stmt, err := tx.Prepare(`INSERT INTO ranked_entries
			(run_id, section, rank, symbol, value, current_price, extreme_price)
			VALUES (?,?,?,?,?,?,?)`)
		if err != nil {
			return fmt.Errorf("prepare entries: %w", err)
		}
		defer stmt.Close()

		insert := func(section string, rank int, symbol string, value, current, extreme any) error {
			_, err := stmt.Exec(rec.ID, section, rank, symbol, value, current, extreme)
			return err
		}
		for i, e := range res.Gainers {
			if err := insert(SectionGainers, i+1, e.Symbol, e.PercentChange, nil, nil); err != nil {
				return err
			}
		}
		for i, e := range res.Losers {
			if err := insert(SectionLosers, i+1, e.Symbol, e.PercentChange, nil, nil); err != nil {
				return err
			}
		}
		for i, e := range res.BelowHigh {
			if err := insert(SectionBelowHigh, i+1, e.Symbol, e.CurrentPrice/e.ExtremePrice, e.CurrentPrice, e.ExtremePrice); err != nil {
				return err
			}
		}
		for i, e := range res.AboveLow {
			if err := insert(SectionAboveLow, i+1, e.Symbol, e.CurrentPrice/e.ExtremePrice, e.CurrentPrice, e.ExtremePrice); err != nil {
				return err
			}
		}
		for i, e := range res.Returns {
			if err := insert(SectionReturns, i+1, e.Symbol, e.ReturnPercent, nil, nil); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// RunSummary is a stored run as read back from the database.
type RunSummary struct {
	ID      string
	Status  string
	Error   string
	Entries int
}

// RecentRuns returns the latest runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	rows, err := r.db.Query(`SELECT r.id, r.status, COALESCE(r.error, ''),
			(SELECT COUNT(*) FROM ranked_entries e WHERE e.run_id = r.id)
		FROM runs r ORDER BY r.timestamp DESC, r.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.ID, &s.Status, &s.Error, &s.Entries); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
