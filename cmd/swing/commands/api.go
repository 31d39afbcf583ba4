package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/wonny/bist-swing/internal/api"
	"github.com/wonny/bist-swing/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST and WebSocket API.

Endpoints:
  GET    /health                      - Health check
  GET    /metrics                     - Prometheus metrics
  GET    /ws/scans                    - Run a scan, stream progress
  POST   /api/scans                   - Start a background scan
  DELETE /api/scans/current           - Cancel the running scan
  GET    /api/scans/progress          - Progress of the running scan
  GET    /api/scans/latest?top=N      - Latest report
  GET    /api/scans/latest/{ticker}   - One result of the latest report
  GET    /api/score/{ticker}          - Score one ticker now
  GET    /api/rules                   - Rule table

Example:
  go run ./cmd/swing api
  go run ./cmd/swing api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== BIST Swing API Server ===")

	// Background scans outlive requests but stop with the process
	baseCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := bootstrap(baseCtx, bootOptions{memoryReports: true})
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	runner, err := a.runner()
	if err != nil {
		return err
	}

	scanHandler := handlers.NewScanHandler(baseCtx, runner, a.suffix(), a.log)

	var gatherer prometheus.Gatherer
	if a.cfg.MetricsEnabled {
		gatherer = a.registry
	}
	router := api.NewRouter(scanHandler, gatherer, a.log)
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	a.log.Info("Shutting down server...")
	runner.Cancel()
	cancel()

	ctx, done := context.WithTimeout(context.Background(), 30*time.Second)
	defer done()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
