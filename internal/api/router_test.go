package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bist-swing/internal/api/handlers"
	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/internal/metrics"
	"github.com/wonny/bist-swing/internal/report"
	"github.com/wonny/bist-swing/internal/s2_signals"
	"github.com/wonny/bist-swing/internal/s3_scoring"
	"github.com/wonny/bist-swing/internal/s4_scan"
	"github.com/wonny/bist-swing/pkg/logger"
)

type seriesProvider struct{}

func (seriesProvider) Fetch(ctx context.Context, ticker string, lookback time.Duration) (*contracts.PriceHistory, error) {
	n := 60
	closeAt := func(i int) float64 { return 100 + float64(i) }
	switch {
	case strings.HasPrefix(ticker, "DOWN"):
		closeAt = func(i int) float64 { return 300 - 0.05*float64(i*i) }
	case strings.HasPrefix(ticker, "SHORT"):
		n = 20
	case strings.HasPrefix(ticker, "FAIL"):
		return nil, fmt.Errorf("%w: no data", contracts.ErrFetchFailed)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, n)
	for i := range bars {
		c := closeAt(i)
		bars[i] = contracts.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c + 0.5, Low: c - 0.5, Close: c, Volume: 1_000_000}
	}
	return &contracts.PriceHistory{Ticker: ticker, Bars: bars}, nil
}

type fixedUniverse []string

func (u fixedUniverse) Build(ctx context.Context) (*contracts.Universe, error) {
	return &contracts.Universe{Source: "test", Tickers: u}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *s4_scan.Runner) {
	t.Helper()
	log := logger.NewNop()

	frames, err := s2_signals.NewFrameBuilder(s2_signals.DefaultParams(), log)
	require.NoError(t, err)
	scorer, err := s3_scoring.NewScorer(s3_scoring.DefaultParams())
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	scanner := s4_scan.NewScanner(seriesProvider{}, frames, scorer, s4_scan.DefaultConfig(), metrics.NewMetrics(reg), log)
	runner := s4_scan.NewRunner(scanner, fixedUniverse{"DOWN1", "UP1", "FAIL1", "SHORT1"}, report.NewMemoryRepository(), log)

	h := handlers.NewScanHandler(context.Background(), runner, "", log)
	server := httptest.NewServer(NewRouter(h, reg, log))
	t.Cleanup(server.Close)
	return server, runner
}

func getJSON(t *testing.T, url string, dest interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)

	var body map[string]interface{}
	assert.Equal(t, http.StatusOK, getJSON(t, server.URL+"/health", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestScoreEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		ticker string
		status int
		kind   string
	}{
		{"up1", http.StatusOK, ""},
		{"FAIL1", http.StatusBadGateway, "FETCH_FAILED"},
		{"SHORT1", http.StatusUnprocessableEntity, "INSUFFICIENT_HISTORY"},
		{"bad!", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.ticker, func(t *testing.T) {
			var body map[string]interface{}
			status := getJSON(t, server.URL+"/api/score/"+tt.ticker, &body)
			assert.Equal(t, tt.status, status)
			if tt.status == http.StatusOK {
				assert.Equal(t, "UP1", body["ticker"])
				assert.Len(t, body["components"], 6)
				assert.Equal(t, "159", body["last_close"])
			}
			if tt.kind != "" {
				assert.Equal(t, tt.kind, body["kind"])
			}
		})
	}
}

func TestScanLifecycle(t *testing.T) {
	server, runner := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, getJSON(t, server.URL+"/api/scans/latest", nil))

	resp, err := http.Post(server.URL+"/api/scans", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	assert.Eventually(t, func() bool { return !runner.Running() }, 5*time.Second, 10*time.Millisecond)

	var view handlers.ReportView
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/scans/latest?top=1", &view))
	assert.Equal(t, 4, view.Total)
	require.Len(t, view.Results, 1)
	assert.Equal(t, "UP1", view.Results[0].Ticker)
	assert.Equal(t, 1, view.Results[0].Rank)
	assert.Len(t, view.Skipped, 2)
	assert.Equal(t, 1, view.SkipCounts[contracts.KindFetchFailed])

	var result handlers.ResultView
	assert.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/scans/latest/DOWN1", &result))
	assert.Equal(t, 0, result.CompositeScore)
	assert.Equal(t, http.StatusNotFound, getJSON(t, server.URL+"/api/scans/latest/NOPE", nil))

	var progress map[string]interface{}
	assert.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/scans/progress", &progress))
	assert.Equal(t, false, progress["running"])
	assert.Equal(t, float64(4), progress["completed"])

	assert.Equal(t, http.StatusBadRequest, getJSON(t, server.URL+"/api/scans/latest?top=-1", nil))

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/scans/current", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStreamScan(t *testing.T) {
	server, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/scans"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var progress []contracts.Progress
	var final *handlers.ReportView
	for final == nil {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg handlers.StreamMessage
		require.NoError(t, conn.ReadJSON(&msg))

		switch msg.Type {
		case handlers.MessageProgress:
			require.NotNil(t, msg.Progress)
			assert.True(t, (msg.Result == nil) != (msg.Skip == nil))
			progress = append(progress, *msg.Progress)
		case handlers.MessageReport:
			final = msg.Report
		default:
			t.Fatalf("unexpected message %q", msg.Type)
		}
	}

	require.Len(t, progress, 4)
	for i, p := range progress {
		assert.Equal(t, i+1, p.Completed)
		assert.Equal(t, 4, p.Total)
	}
	assert.Equal(t, 4, final.Completed)
	assert.Len(t, final.Results, 2)
}

func TestMetricsAndRules(t *testing.T) {
	server, runner := newTestServer(t)
	_, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "swing_scans_total")

	var rules []s3_scoring.RuleInfo
	assert.Equal(t, http.StatusOK, getJSON(t, server.URL+"/api/rules", &rules))
	assert.Len(t, rules, 6)
}

func TestCORSPreflight(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		path   string
		method string
	}{
		{"/api/scans/current", http.MethodDelete},
		{"/api/scans", http.MethodPost},
		{"/api/score/THYAO", http.MethodGet},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodOptions, server.URL+tt.path, nil)
			require.NoError(t, err)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", tt.method)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusNoContent, resp.StatusCode)
			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), tt.method)
		})
	}
}

func TestCORSHeadersOnRequests(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/rules")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
