package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/internal/s1_universe"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints through these helpers
// ═══════════════════════════════════════════════════════════

const lineWidth = 59

// PrintHeader prints a titled block header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println(strings.Repeat("─", lineWidth))
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println(strings.Repeat("═", lineWidth))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2
		}
	}
	fmt.Println(strings.Repeat("─", total))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

var (
	resultColumns = []string{"#", "TICKER", "SCORE", "GRADE", "CLOSE", "CHG%", "RSI", "SIGNALS"}
	resultWidths  = []int{3, 8, 5, 8, 10, 7, 5, 30}
)

// PrintResults prints ranked results as a table
func PrintResults(results []contracts.ScoreResult) {
	PrintTableHeader(resultColumns, resultWidths)
	for i := range results {
		r := &results[i]
		PrintTableRow([]string{
			strconv.Itoa(i + 1),
			s1_universe.Display(r.Ticker),
			strconv.Itoa(r.CompositeScore),
			string(r.Grade),
			round(r.LastClose, 2),
			signed(r.PctChange),
			round(r.Details.RSI, 1),
			signals(r.Details),
		}, resultWidths)
	}
}

// PrintBreakdown prints every rule of one result
func PrintBreakdown(r *contracts.ScoreResult) {
	PrintHeader(fmt.Sprintf("%s  %d/100  %s", s1_universe.Display(r.Ticker), r.CompositeScore, r.Grade))
	PrintKeyValue("Close", round(r.LastClose, 2), 10)
	PrintKeyValue("Change", signed(r.PctChange)+"%", 10)
	PrintKeyValue("Bar", r.EvaluatedAt.Format("2006-01-02"), 10)
	PrintSeparator()
	for _, c := range r.Components {
		fmt.Printf("   %-11s %2d/%-2d  %s\n", c.Criterion, c.Points, c.MaxPoints, c.Rationale)
	}
	PrintSeparator()
	fmt.Printf("   %s\n", r.Summary)
}

// PrintReportSummary prints the totals and skip reasons of a scan
func PrintReportSummary(report *contracts.ScanReport) {
	PrintSeparator()
	PrintKeyValue("Scan", report.ID, 10)
	PrintKeyValue("Scored", fmt.Sprintf("%d / %d", len(report.Results), report.Total), 10)
	PrintKeyValue("Skipped", strconv.Itoa(len(report.Skipped)), 10)
	PrintKeyValue("Duration", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond).String(), 10)
	if report.Cancelled {
		PrintWarning(fmt.Sprintf("Scan cancelled after %d of %d tickers", report.Completed, report.Total))
	}

	if len(report.Skipped) == 0 {
		return
	}
	items := make([]string, 0, len(report.Skipped))
	for _, s := range report.Skipped {
		items = append(items, fmt.Sprintf("%s [%s] %s", s1_universe.Display(s.Ticker), s.Kind, s.Reason))
	}
	fmt.Println()
	PrintList(items)
}

func round(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).StringFixed(places)
}

func signed(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

func signals(d contracts.ScoreDetails) string {
	var out []string
	if d.MACDBullish {
		out = append(out, "MACD")
	}
	if d.VolumeSurge {
		out = append(out, "VOL")
	}
	if d.ADXTrend {
		out = append(out, "ADX")
	}
	if d.SuperTrendBuy {
		out = append(out, "ST")
	}
	if d.BollingerSqueeze {
		out = append(out, "SQZ")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}
