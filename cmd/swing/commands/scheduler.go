package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/bist-swing/internal/s0_data/collector"
	"github.com/wonny/bist-swing/internal/scheduler"
	"github.com/wonny/bist-swing/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run scheduled scans",
	Long: `Starts the scheduler or manages its jobs.

Subcommands:
  start   - run the scheduler until Ctrl+C
  list    - registered jobs and their schedules
  run     - execute one job now

Example:
  go run ./cmd/swing scheduler start
  go run ./cmd/swing scheduler list
  go run ./cmd/swing scheduler run market_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler with every registered job.

Registered jobs:
- market_scan: SCAN_SCHEDULE (default weekdays 18:30, after the BIST close)
- price_backfill: weekdays 18:00, only when DATABASE_URL is set

Times use the strategy timezone (Europe/Istanbul by default).`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== BIST Swing Scheduler ===")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, sched, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	sched.Start(ctx)

	fmt.Println("\n✅ Scheduler started successfully")
	printStats(sched.Stats())
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	printStats(sched.Stats())
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, sched, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	fmt.Printf("Running job: %s\n", jobName)

	result, err := sched.RunJob(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %d attempts: %s", jobName, result.Attempts, result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(fmt.Sprintf("%s completed in %.2fs", jobName, result.Duration.Seconds()))
	return nil
}

func printStats(stats []scheduler.JobStats) {
	fmt.Println("\nRegistered jobs:")
	for _, st := range stats {
		fmt.Printf("📊 %s\n", st.JobName)
		PrintKeyValue("Schedule", st.Schedule, 10)
		if st.NextRun != nil {
			PrintKeyValue("Next Run", st.NextRun.Format("2006-01-02 15:04:05 MST"), 10)
		}
	}
}

func initScheduler(ctx context.Context) (*app, *scheduler.Scheduler, error) {
	a, err := bootstrap(ctx, bootOptions{})
	if err != nil {
		return nil, nil, err
	}

	runner, err := a.runner()
	if err != nil {
		a.close()
		return nil, nil, err
	}

	var opts []scheduler.Option
	if tz := a.strategy.Meta.Timezone; tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			a.close()
			return nil, nil, fmt.Errorf("load timezone %s: %w", tz, err)
		}
		opts = append(opts, scheduler.WithLocation(loc))
	}

	sched := scheduler.New(a.log, opts...)

	if err := sched.AddJob(jobs.NewScanJob(runner, a.cfg.Scan.Schedule, a.log)); err != nil {
		a.close()
		return nil, nil, err
	}

	if a.prices != nil {
		col := collector.NewCollector(a.remote, a.prices, a.log)
		backfill := jobs.NewBackfillJob(col, a.universe(), collector.Config{Workers: 2, Lookback: a.lookback()}, a.log)
		if err := sched.AddJob(backfill); err != nil {
			a.close()
			return nil, nil, err
		}
	}

	return a, sched, nil
}
