package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bist-swing/pkg/logger"
)

type flakyJob struct {
	name     string
	schedule string
	failures int32 // fail this many times before succeeding
	calls    atomic.Int32
}

func (j *flakyJob) Name() string     { return j.name }
func (j *flakyJob) Schedule() string { return j.schedule }

func (j *flakyJob) Run(ctx context.Context) error {
	if j.calls.Add(1) <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestScheduler() *Scheduler {
	return New(logger.NewNop(), WithRetry(2, time.Millisecond))
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&flakyJob{name: "scan", schedule: "0 30 18 * * 1-5"}))
	assert.Error(t, s.AddJob(&flakyJob{name: "scan", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&flakyJob{name: "broken", schedule: "not a cron"}))

	require.NoError(t, s.RemoveJob("scan"))
	assert.Error(t, s.RemoveJob("scan"))
}

func TestRunJob_Retries(t *testing.T) {
	tests := []struct {
		name         string
		failures     int32
		wantSuccess  bool
		wantAttempts int
	}{
		{"first try", 0, true, 1},
		{"recovers on retry", 2, true, 3},
		{"exhausts retries", 5, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler()
			job := &flakyJob{name: "job", schedule: "@daily", failures: tt.failures}
			require.NoError(t, s.AddJob(job))

			result, err := s.RunJob(context.Background(), "job")
			require.NoError(t, err)

			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.wantAttempts, result.Attempts)
			if !tt.wantSuccess {
				assert.Equal(t, "transient", result.Error)
			}
		})
	}
}

func TestRunJob_Unknown(t *testing.T) {
	_, err := newTestScheduler().RunJob(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRunJob_CancelStopsRetries(t *testing.T) {
	s := New(logger.NewNop(), WithRetry(5, time.Hour))
	job := &flakyJob{name: "job", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := s.RunJob(ctx, "job")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
}

func TestStats(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&flakyJob{name: "b_scan", schedule: "@daily"}))
	require.NoError(t, s.AddJob(&flakyJob{name: "a_backfill", schedule: "@hourly", failures: 10}))

	_, _ = s.RunJob(context.Background(), "b_scan")
	_, _ = s.RunJob(context.Background(), "a_backfill")
	_, _ = s.RunJob(context.Background(), "b_scan")

	stats := s.Stats()
	require.Len(t, stats, 2)

	assert.Equal(t, "a_backfill", stats[0].JobName)
	assert.Equal(t, 1, stats[0].TotalRuns)
	assert.Equal(t, 0.0, stats[0].SuccessRate)
	assert.False(t, stats[0].LastSuccess)

	assert.Equal(t, "b_scan", stats[1].JobName)
	assert.Equal(t, 2, stats[1].TotalRuns)
	assert.Equal(t, 1.0, stats[1].SuccessRate)
	require.NotNil(t, stats[1].LastRun)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()
	job := &flakyJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.AddJob(job))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return job.calls.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()

	stats := s.Stats()
	require.Len(t, stats, 1)
	assert.NotNil(t, stats[0].NextRun)
}

func TestJobHistory_Limit(t *testing.T) {
	var h JobHistory
	for i := 0; i < historyLimit+10; i++ {
		h.AddResult(JobResult{Attempts: i, Success: i%2 == 0})
	}
	assert.Len(t, h.Results, historyLimit)
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, historyLimit+9, last.Attempts)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
}
