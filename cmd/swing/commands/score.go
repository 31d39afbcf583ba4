package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/bist-swing/internal/s1_universe"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score [ticker]",
	Short: "Score one ticker with the full rule breakdown",
	Long: `Fetches one ticker, builds its indicator frame and prints every rule.

Bare codes get the strategy suffix (THYAO becomes THYAO.IS).

Example:
  go run ./cmd/swing score THYAO
  go run ./cmd/swing score AAPL --strategy config/strategy/us.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx, bootOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	tickers, excluded := s1_universe.Normalize(args, a.suffix())
	if len(tickers) == 0 {
		return fmt.Errorf("invalid ticker %q: %s", args[0], excluded[args[0]])
	}

	scanner, err := a.scanner()
	if err != nil {
		return err
	}

	result, err := scanner.ScoreTicker(ctx, tickers[0])
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintBreakdown(result)
	return nil
}
