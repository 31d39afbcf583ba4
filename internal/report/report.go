// Package report persists scan reports so the latest ranking survives restarts.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/wonny/bist-swing/internal/contracts"
)

func encode(report *contracts.ScanReport) ([]byte, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report %s: %w", report.ID, err)
	}
	return payload, nil
}

func encodeResult(result *contracts.ScoreResult) ([]byte, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result %s: %w", result.Ticker, err)
	}
	return payload, nil
}

func decodeReport(payload []byte) (*contracts.ScanReport, error) {
	var report contracts.ScanReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}

func decodeResult(payload []byte) (*contracts.ScoreResult, error) {
	var result contracts.ScoreResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &result, nil
}

// NoopRepository discards reports
type NoopRepository struct{}

func (NoopRepository) Save(ctx context.Context, report *contracts.ScanReport) error { return nil }

func (NoopRepository) Latest(ctx context.Context) (*contracts.ScanReport, error) {
	return nil, contracts.ErrNotFound
}

func (NoopRepository) LatestResult(ctx context.Context, ticker string) (*contracts.ScoreResult, error) {
	return nil, contracts.ErrNotFound
}

// MemoryRepository keeps only the most recent report in process memory
type MemoryRepository struct {
	mu     sync.RWMutex
	latest *contracts.ScanReport
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Save replaces the held report
func (m *MemoryRepository) Save(ctx context.Context, report *contracts.ScanReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = report
	return nil
}

// Latest returns the held report
func (m *MemoryRepository) Latest(ctx context.Context) (*contracts.ScanReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return nil, contracts.ErrNotFound
	}
	return m.latest, nil
}

// LatestResult finds ticker in the held report
func (m *MemoryRepository) LatestResult(ctx context.Context, ticker string) (*contracts.ScoreResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return nil, contracts.ErrNotFound
	}
	result, ok := m.latest.Find(ticker)
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return result, nil
}

var (
	_ contracts.ReportRepository = NoopRepository{}
	_ contracts.ReportRepository = (*MemoryRepository)(nil)
	_ contracts.ReportRepository = (*PostgresRepository)(nil)
	_ contracts.ReportRepository = (*SQLiteRepository)(nil)
)
