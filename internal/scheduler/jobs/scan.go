package jobs

import (
	"context"
	"errors"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/internal/s4_scan"
	"github.com/wonny/bist-swing/pkg/logger"
)

// DefaultScanSchedule fires after the Borsa Istanbul close on weekdays
const DefaultScanSchedule = "0 30 18 * * 1-5"

// ScanJob runs a full market scan and stores the report
type ScanJob struct {
	runner   *s4_scan.Runner
	schedule string
	logger   *logger.Logger
}

// NewScanJob creates a scan job. An empty schedule selects DefaultScanSchedule.
func NewScanJob(runner *s4_scan.Runner, schedule string, log *logger.Logger) *ScanJob {
	if schedule == "" {
		schedule = DefaultScanSchedule
	}
	return &ScanJob{
		runner:   runner,
		schedule: schedule,
		logger:   log.WithComponent("scan_job"),
	}
}

func (j *ScanJob) Name() string     { return "market_scan" }
func (j *ScanJob) Schedule() string { return j.schedule }

// Run scans the universe. A scan already in flight is not a failure.
func (j *ScanJob) Run(ctx context.Context) error {
	report, err := j.runner.Run(ctx, nil)
	if errors.Is(err, s4_scan.ErrScanRunning) {
		j.logger.Warn("Scan already running, skipping scheduled run")
		return nil
	}
	if err != nil {
		return err
	}

	top := report.Top(5)
	leaders := make([]string, len(top))
	for i, r := range top {
		leaders[i] = r.Ticker
	}

	j.logger.WithFields(map[string]interface{}{
		"scan_id": report.ID,
		"scored":  len(report.Results),
		"skipped": len(report.Skipped),
		"leaders": leaders,
		"strong":  countGrade(report, contracts.GradeStrong),
	}).Info("Scheduled scan finished")
	return nil
}

func countGrade(report *contracts.ScanReport, grade contracts.Grade) int {
	n := 0
	for _, r := range report.Results {
		if r.Grade == grade {
			n++
		}
	}
	return n
}
