package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/bist-swing/internal/s1_universe"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Print the resolved scan universe",
	Long: `Resolves the universe the way a scan would and prints it.

Precedence: --tickers, SCAN_TICKERS, strategy tickers, strategy source_url,
built-in BIST list.

Example:
  go run ./cmd/swing universe
  go run ./cmd/swing universe --tickers thyao,asels,bad!`,
	RunE: runUniverse,
}

var universeTickers []string

func init() {
	rootCmd.AddCommand(universeCmd)

	universeCmd.Flags().StringSliceVar(&universeTickers, "tickers", nil, "comma separated tickers")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx, bootOptions{tickers: universeTickers})
	if err != nil {
		return err
	}
	defer a.close()

	universe, err := a.universe().Build(ctx)
	if err != nil {
		return fmt.Errorf("build universe: %w", err)
	}

	PrintHeader("Universe")
	PrintKeyValue("Source", universe.Source, 8)
	PrintKeyValue("Tickers", fmt.Sprintf("%d", universe.Count()), 8)
	PrintSeparator()

	codes := make([]string, 0, len(universe.Tickers))
	for _, t := range universe.Tickers {
		codes = append(codes, s1_universe.Display(t))
	}
	for i := 0; i < len(codes); i += 8 {
		end := i + 8
		if end > len(codes) {
			end = len(codes)
		}
		fmt.Printf("   %s\n", strings.Join(codes[i:end], "  "))
	}

	if len(universe.Excluded) > 0 {
		raw := make([]string, 0, len(universe.Excluded))
		for sym := range universe.Excluded {
			raw = append(raw, sym)
		}
		sort.Strings(raw)

		items := make([]string, 0, len(raw))
		for _, sym := range raw {
			items = append(items, fmt.Sprintf("%q %s", sym, universe.Excluded[sym]))
		}
		PrintWarning(fmt.Sprintf("%d symbols excluded", len(items)))
		PrintList(items)
	}
	return nil
}
