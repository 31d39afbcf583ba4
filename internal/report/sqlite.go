package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/wonny/bist-swing/internal/contracts"
)

// SQLiteRepository stores reports in a single local file
type SQLiteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRepository opens (or creates) the database and runs migrations
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id          TEXT PRIMARY KEY,
			seq         INTEGER NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			total       INTEGER NOT NULL,
			completed   INTEGER NOT NULL,
			cancelled   INTEGER NOT NULL,
			payload     TEXT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_seq ON reports(seq)`,
		`CREATE TABLE IF NOT EXISTS results (
			report_id       TEXT    NOT NULL,
			ticker          TEXT    NOT NULL,
			rank            INTEGER NOT NULL,
			composite_score INTEGER NOT NULL,
			grade           TEXT    NOT NULL,
			result          TEXT    NOT NULL,
			PRIMARY KEY (report_id, ticker)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_ticker ON results(ticker)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Save writes the report and its results in one transaction
func (r *SQLiteRepository) Save(ctx context.Context, report *contracts.ScanReport) error {
	payload, err := encode(report)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// seq orders reports by save order; finished_at can collide at second resolution
	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (id, seq, started_at, finished_at, total, completed, cancelled, payload)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM reports), ?, ?, ?, ?, ?, ?)
	`, report.ID, report.StartedAt.UnixMilli(), report.FinishedAt.UnixMilli(),
		report.Total, report.Completed, report.Cancelled, string(payload))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	for i := range report.Results {
		res := &report.Results[i]
		resultJSON, err := encodeResult(res)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO results (report_id, ticker, rank, composite_score, grade, result)
			VALUES (?, ?, ?, ?, ?, ?)
		`, report.ID, res.Ticker, i+1, res.CompositeScore, string(res.Grade), string(resultJSON))
		if err != nil {
			return fmt.Errorf("insert result %s: %w", res.Ticker, err)
		}
	}

	return tx.Commit()
}

// Latest returns the most recently saved report
func (r *SQLiteRepository) Latest(ctx context.Context) (*contracts.ScanReport, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM reports ORDER BY seq DESC LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest report: %w", err)
	}
	return decodeReport([]byte(payload))
}

// LatestResult returns the ticker's result from the newest report that scored it
func (r *SQLiteRepository) LatestResult(ctx context.Context, ticker string) (*contracts.ScoreResult, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `
		SELECT res.result
		FROM results res
		JOIN reports rep ON rep.id = res.report_id
		WHERE res.ticker = ?
		ORDER BY rep.seq DESC
		LIMIT 1
	`, ticker).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest result: %w", err)
	}
	return decodeResult([]byte(payload))
}
