package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/bist-swing/internal/contracts"
)

// PostgresRepository stores reports in scan.reports and one row per scored ticker in scan.results
// ⭐ SSOT: scan report persistence (Postgres)
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const postgresSchema = `
	CREATE SCHEMA IF NOT EXISTS scan;
	CREATE TABLE IF NOT EXISTS scan.reports (
		id          TEXT PRIMARY KEY,
		seq         BIGSERIAL   NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		total       INT         NOT NULL,
		completed   INT         NOT NULL,
		cancelled   BOOLEAN     NOT NULL,
		payload     JSONB       NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_seq ON scan.reports (seq DESC);
	CREATE TABLE IF NOT EXISTS scan.results (
		report_id       TEXT  NOT NULL REFERENCES scan.reports(id) ON DELETE CASCADE,
		ticker          TEXT  NOT NULL,
		rank            INT   NOT NULL,
		composite_score INT   NOT NULL,
		grade           TEXT  NOT NULL,
		result          JSONB NOT NULL,
		PRIMARY KEY (report_id, ticker)
	);
	CREATE INDEX IF NOT EXISTS idx_results_ticker ON scan.results (ticker);
`

// EnsureSchema creates the scan tables when missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure scan schema: %w", err)
	}
	return nil
}

// Save writes the report and its results in one transaction
func (r *PostgresRepository) Save(ctx context.Context, report *contracts.ScanReport) error {
	payload, err := encode(report)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO scan.reports (id, started_at, finished_at, total, completed, cancelled, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, report.ID, report.StartedAt, report.FinishedAt, report.Total, report.Completed, report.Cancelled, payload)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range report.Results {
		res := &report.Results[i]
		resultJSON, err := encodeResult(res)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO scan.results (report_id, ticker, rank, composite_score, grade, result)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, report.ID, res.Ticker, i+1, res.CompositeScore, string(res.Grade), resultJSON)
	}

	if batch.Len() > 0 {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("insert result: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}
	return nil
}

// Latest returns the most recently saved report
func (r *PostgresRepository) Latest(ctx context.Context) (*contracts.ScanReport, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT payload FROM scan.reports ORDER BY seq DESC LIMIT 1
	`).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest report: %w", err)
	}
	return decodeReport(payload)
}

// LatestResult returns the ticker's result from the newest report that scored it
func (r *PostgresRepository) LatestResult(ctx context.Context, ticker string) (*contracts.ScoreResult, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT res.result
		FROM scan.results res
		JOIN scan.reports rep ON rep.id = res.report_id
		WHERE res.ticker = $1
		ORDER BY rep.seq DESC
		LIMIT 1
	`, ticker).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest result: %w", err)
	}
	return decodeResult(payload)
}
