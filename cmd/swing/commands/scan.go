package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/bist-swing/internal/contracts"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Score the universe and print the ranking",
	Long: `Builds the universe, scores every ticker and prints the ranked table.

Tickers that cannot be scored are listed with the reason (insufficient
history, fetch failure, indicator error). Ctrl+C stops the scan and
prints the partial ranking.

Example:
  go run ./cmd/swing scan
  go run ./cmd/swing scan --tickers THYAO,ASELS,GARAN --top 5
  go run ./cmd/swing scan --concurrency 4`,
	RunE: runScan,
}

var (
	scanTickers     []string
	scanConcurrency int
	scanTop         int
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringSliceVar(&scanTickers, "tickers", nil, "comma separated tickers (default: strategy universe)")
	scanCmd.Flags().IntVar(&scanConcurrency, "concurrency", 0, "parallel fetches (default: SCAN_CONCURRENCY)")
	scanCmd.Flags().IntVar(&scanTop, "top", 0, "print only the top N results")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, bootOptions{tickers: scanTickers, concurrency: scanConcurrency})
	if err != nil {
		return err
	}
	defer a.close()

	runner, err := a.runner()
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("Swing Scan  (%s)", a.strategy.Meta.StrategyID))

	report, err := runner.Run(ctx, func(ev contracts.ScanEvent) {
		line := fmt.Sprintf("[%d/%d] %s", ev.Progress.Completed, ev.Progress.Total, ev.Progress.Ticker)
		if ev.Skip != nil {
			line += fmt.Sprintf("  skipped: %s", ev.Skip.Kind)
		}
		fmt.Fprintln(os.Stderr, line)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scan: %w", err)
	}
	if report == nil {
		return err
	}

	fmt.Println()
	if len(report.Results) == 0 {
		PrintWarning("No ticker could be scored")
	} else {
		PrintResults(report.Top(scanTop))
	}
	PrintReportSummary(report)
	return nil
}
