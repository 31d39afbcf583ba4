package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/bist-swing/internal/s0_data/collector"
)

// backfillCmd represents the backfill command
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Copy price history into PostgreSQL",
	Long: `Fetches daily bars for the universe from the remote provider and
upserts them into data.daily_prices, so PROVIDER=postgres scans can run
without network access.

Requires DATABASE_URL.

Example:
  go run ./cmd/swing backfill
  go run ./cmd/swing backfill --tickers THYAO,ASELS --workers 4`,
	RunE: runBackfill,
}

var (
	backfillTickers []string
	backfillWorkers int
)

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().StringSliceVar(&backfillTickers, "tickers", nil, "comma separated tickers (default: strategy universe)")
	backfillCmd.Flags().IntVar(&backfillWorkers, "workers", 2, "concurrent fetches")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, bootOptions{tickers: backfillTickers, needDatabase: true})
	if err != nil {
		return err
	}
	defer a.close()

	universe, err := a.universe().Build(ctx)
	if err != nil {
		return fmt.Errorf("build universe: %w", err)
	}

	PrintHeader("Price Backfill")
	PrintKeyValue("Tickers", fmt.Sprintf("%d", universe.Count()), 8)
	PrintKeyValue("Window", fmt.Sprintf("%d days", int(a.lookback()/(24*time.Hour))), 8)
	PrintSeparator()

	start := time.Now()
	col := collector.NewCollector(a.remote, a.prices, a.log)
	results := col.Backfill(ctx, universe.Tickers, collector.Config{
		Workers:  backfillWorkers,
		Lookback: a.lookback(),
	})

	failed := 0
	for i, r := range results {
		if r.Error != nil {
			failed++
			fmt.Printf("[%d/%d] %-10s ❌ %v\n", i+1, len(results), r.Ticker, r.Error)
			continue
		}
		fmt.Printf("[%d/%d] %-10s %d bars\n", i+1, len(results), r.Ticker, r.BarCount)
	}

	fmt.Println()
	if failed == len(results) {
		return fmt.Errorf("backfill failed for all %d tickers", failed)
	}
	PrintSuccess(fmt.Sprintf("Backfilled %d/%d tickers in %.2fs", len(results)-failed, len(results), time.Since(start).Seconds()))
	return nil
}
