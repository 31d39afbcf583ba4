package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/bist-swing/internal/contracts"
)

// PriceRepository stores daily bars in data.daily_prices and serves them back as a provider
// ⭐ SSOT: price storage lives here only
type PriceRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool, now: time.Now}
}

const priceSchema = `
	CREATE SCHEMA IF NOT EXISTS data;
	CREATE TABLE IF NOT EXISTS data.daily_prices (
		ticker      TEXT             NOT NULL,
		trade_date  DATE             NOT NULL,
		open_price  DOUBLE PRECISION NOT NULL,
		high_price  DOUBLE PRECISION NOT NULL,
		low_price   DOUBLE PRECISION NOT NULL,
		close_price DOUBLE PRECISION NOT NULL,
		volume      DOUBLE PRECISION NOT NULL,
		updated_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
		PRIMARY KEY (ticker, trade_date)
	);
`

// EnsureSchema creates the price table when missing
func (r *PriceRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, priceSchema); err != nil {
		return fmt.Errorf("ensure price schema: %w", err)
	}
	return nil
}

// Fetch reads stored bars inside the lookback window, oldest first
func (r *PriceRepository) Fetch(ctx context.Context, ticker string, lookback time.Duration) (*contracts.PriceHistory, error) {
	to := r.now()
	bars, err := r.GetRange(ctx, ticker, to.Add(-lookback), to)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: postgres %s: %w", contracts.ErrFetchFailed, ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: postgres %s: no stored bars", contracts.ErrFetchFailed, ticker)
	}
	return &contracts.PriceHistory{Ticker: ticker, Bars: bars}, nil
}

// GetRange retrieves bars for a ticker within [from, to]
func (r *PriceRepository) GetRange(ctx context.Context, ticker string, from, to time.Time) ([]contracts.Bar, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_prices
		WHERE ticker = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []contracts.Bar
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// Latest returns the newest stored bar for a ticker
func (r *PriceRepository) Latest(ctx context.Context, ticker string) (*contracts.Bar, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_prices
		WHERE ticker = $1
		ORDER BY trade_date DESC
		LIMIT 1
	`

	var b contracts.Bar
	err := r.pool.QueryRow(ctx, query, ticker).Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const upsertPrice = `
	INSERT INTO data.daily_prices (ticker, trade_date, open_price, high_price, low_price, close_price, volume)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (ticker, trade_date) DO UPDATE SET
		open_price = EXCLUDED.open_price,
		high_price = EXCLUDED.high_price,
		low_price = EXCLUDED.low_price,
		close_price = EXCLUDED.close_price,
		volume = EXCLUDED.volume,
		updated_at = NOW()
`

// SaveHistory upserts every bar of a history in one batch
func (r *PriceRepository) SaveHistory(ctx context.Context, history *contracts.PriceHistory) error {
	if history == nil || len(history.Bars) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, b := range history.Bars {
		batch.Queue(upsertPrice, history.Ticker, b.Time, b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range history.Bars {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert %s bars: %w", history.Ticker, err)
		}
	}
	return nil
}

var _ contracts.TimeSeriesProvider = (*PriceRepository)(nil)
