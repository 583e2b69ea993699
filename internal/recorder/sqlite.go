package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/guregu/null/v6"
	_ "modernc.org/sqlite"

	"MarketLens/internal/logger"
	"MarketLens/internal/model"
)

const dateLayout = "2006-01-02"

// SQLiteRecorder persists analysis runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logger.Entry
}

// StoredCorrelation is one correlations row read back from the journal.
type StoredCorrelation struct {
	RunID     string
	Commodity string
	Value     null.Float
	Pairs     int
	Error     null.String
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

	r := &SQLiteRecorder{db: db, log: logger.GetLogger().WithComponent("recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.WithFields(logger.Fields{"path": dbPath}).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id       TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			start_date   TEXT NOT NULL,
			end_date     TEXT NOT NULL,
			months       INTEGER NOT NULL,
			index_name   TEXT NOT NULL,
			index_error  TEXT,
			selected     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS correlations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES runs(run_id),
			commodity   TEXT NOT NULL,
			value       REAL,
			pairs       INTEGER NOT NULL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_corr_run ON correlations(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", excerpt(s, 40), err)
		}
	}
	return nil
}

// RecordRun stores the run header and one row per correlation in a single
// transaction.
func (r *SQLiteRecorder) RecordRun(report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := report.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	names := make([]string, len(report.Commodities))
	for i, c := range report.Commodities {
		names[i] = c.Instrument.Name
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(run_id, timestamp, start_date, end_date, months, index_name, index_error, selected)
		VALUES (?,?,?,?,?,?,?,?)`,
		report.RunID, ts.Unix(),
		report.Start.Format(dateLayout), report.End.Format(dateLayout),
		len(report.Months), report.Index.Instrument.Name,
		errText(report.Index.Err), strings.Join(names, ","),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, c := range report.Correlations {
		_, err := tx.Exec(`INSERT INTO correlations
			(run_id, commodity, value, pairs, error)
			VALUES (?,?,?,?,?)`,
			report.RunID, c.Commodity, c.Value, c.Pairs, errText(c.Err),
		)
		if err != nil {
			return fmt.Errorf("insert correlation %s: %w", c.Commodity, err)
		}
	}
	return tx.Commit()
}

// Correlations returns the stored results of one run in insertion order.
func (r *SQLiteRecorder) Correlations(runID string) ([]StoredCorrelation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, commodity, value, pairs, error
		FROM correlations WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredCorrelation
	for rows.Next() {
		var c StoredCorrelation
		if err := rows.Scan(&c.RunID, &c.Commodity, &c.Value, &c.Pairs, &c.Error); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}

// excerpt returns at most n leading bytes of s.
func excerpt(s string, n int) string {
	return s[:min(len(s), n)]
}

func errText(err error) null.String {
	if err == nil {
		return null.String{}
	}
	return null.StringFrom(err.Error())
}
