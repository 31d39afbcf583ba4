package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile      string
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swing",
	Short: "BIST swing scanner",
	Long: `BIST Swing Scanner CLI

Scores every ticker of the universe with six technical rules
(RSI, MACD, Volume/MFI, ADX, SuperTrend, Bollinger) and ranks them 0-100.

Usage:
  go run ./cmd/swing [command]

Examples:
  go run ./cmd/swing scan --top 10
  go run ./cmd/swing score THYAO
  go run ./cmd/swing universe
  go run ./cmd/swing api --port 8089
  go run ./cmd/swing scheduler start`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return nil
		}
		if err := godotenv.Overload(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	},
}

// Execute runs the root command. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file loaded before config (default is .env)")
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (overrides STRATEGY_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
