package s4_scan

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/pkg/logger"
)

// ErrScanRunning is returned when a scan is requested while another is in flight
var ErrScanRunning = errors.New("scan already running")

// Runner owns the one-scan-at-a-time lifecycle: resolve universe, scan, persist
type Runner struct {
	scanner  *Scanner
	universe contracts.UniverseBuilder
	repo     contracts.ReportRepository
	logger   *logger.Logger

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	progress contracts.Progress
}

// NewRunner creates a runner
func NewRunner(scanner *Scanner, universe contracts.UniverseBuilder, repo contracts.ReportRepository, log *logger.Logger) *Runner {
	return &Runner{
		scanner:  scanner,
		universe: universe,
		repo:     repo,
		logger:   log.WithComponent("scan_runner"),
	}
}

// Scanner exposes the underlying scanner for single-ticker detail
func (r *Runner) Scanner() *Scanner {
	return r.scanner
}

// Run resolves the universe and scans it synchronously
func (r *Runner) Run(ctx context.Context, onEvent ProgressFunc) (*contracts.ScanReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := r.acquire(cancel); err != nil {
		return nil, err
	}
	defer r.release()

	return r.execute(ctx, onEvent)
}

// Start launches a scan in the background and returns once it owns the run slot.
// ctx must outlive the caller's request; cancel it (or call Cancel) to stop the scan.
func (r *Runner) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	if err := r.acquire(cancel); err != nil {
		cancel()
		return err
	}

	go func() {
		defer cancel()
		defer r.release()

		if _, err := r.execute(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.WithError(err).Error("Background scan failed")
		}
	}()
	return nil
}

// execute saves the report even when cancelled so partial results are never dropped silently
func (r *Runner) execute(ctx context.Context, onEvent ProgressFunc) (*contracts.ScanReport, error) {
	universe, err := r.universe.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build universe: %w", err)
	}

	r.setProgress(contracts.Progress{Total: universe.Count()})

	report, scanErr := r.scanner.Scan(ctx, universe.Tickers, func(e contracts.ScanEvent) {
		r.setProgress(e.Progress)
		if onEvent != nil {
			onEvent(e)
		}
	})

	// the scan context may already be cancelled
	if err := r.repo.Save(context.WithoutCancel(ctx), report); err != nil {
		r.logger.WithError(err).WithField("scan_id", report.ID).Error("Failed to save scan report")
		if scanErr == nil {
			scanErr = fmt.Errorf("save report: %w", err)
		}
	}
	return report, scanErr
}

// Cancel stops the running scan. It reports whether a scan was running.
func (r *Runner) Cancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || r.cancel == nil {
		return false
	}
	r.cancel()
	return true
}

// Running reports whether a scan is in flight
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Progress returns the latest progress and whether a scan is in flight
func (r *Runner) Progress() (contracts.Progress, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress, r.running
}

// Latest returns the most recent stored report
func (r *Runner) Latest(ctx context.Context) (*contracts.ScanReport, error) {
	return r.repo.Latest(ctx)
}

// LatestResult returns a ticker's most recent stored result
func (r *Runner) LatestResult(ctx context.Context, ticker string) (*contracts.ScoreResult, error) {
	return r.repo.LatestResult(ctx, ticker)
}

func (r *Runner) acquire(cancel context.CancelFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrScanRunning
	}
	r.running = true
	r.cancel = cancel
	r.progress = contracts.Progress{}
	return nil
}

func (r *Runner) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.cancel = nil
}

func (r *Runner) setProgress(p contracts.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = p
}
