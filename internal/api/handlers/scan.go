package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/bist-swing/internal/s1_universe"
	"github.com/wonny/bist-swing/internal/s3_scoring"
	"github.com/wonny/bist-swing/internal/s4_scan"
	"github.com/wonny/bist-swing/pkg/logger"
)

// ScanHandler serves scan lifecycle and report endpoints
// ⭐ SSOT: scan API handlers live in this struct only
type ScanHandler struct {
	runner  *s4_scan.Runner
	baseCtx context.Context // outlives requests; background scans derive from it
	suffix  string
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler. suffix is appended to bare ticker codes.
func NewScanHandler(baseCtx context.Context, runner *s4_scan.Runner, suffix string, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		runner:  runner,
		baseCtx: baseCtx,
		suffix:  suffix,
		logger:  log.WithComponent("api"),
	}
}

// StartScan launches a background scan
// POST /api/scans
func (h *ScanHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.Start(h.baseCtx); err != nil {
		if errors.Is(err, s4_scan.ErrScanRunning) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to start scan")
		respondError(w, http.StatusInternalServerError, "failed to start scan")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// CancelScan stops the running scan
// DELETE /api/scans/current
func (h *ScanHandler) CancelScan(w http.ResponseWriter, r *http.Request) {
	if !h.runner.Cancel() {
		respondError(w, http.StatusNotFound, "no scan running")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelling"})
}

// GetProgress returns the current scan progress
// GET /api/scans/progress
func (h *ScanHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	p, running := h.runner.Progress()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"running":   running,
		"completed": p.Completed,
		"total":     p.Total,
		"ticker":    p.Ticker,
		"fraction":  p.Fraction(),
	})
}

// GetLatest returns the latest report
// GET /api/scans/latest?top=10
func (h *ScanHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	top := 0
	if s := r.URL.Query().Get("top"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
		top = n
	}

	report, err := h.runner.Latest(r.Context())
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, NewReportView(report, top))
}

// GetLatestResult returns one ticker's result from the latest stored reports
// GET /api/scans/latest/{ticker}
func (h *ScanHandler) GetLatestResult(w http.ResponseWriter, r *http.Request) {
	ticker, ok := h.ticker(w, r)
	if !ok {
		return
	}

	result, err := h.runner.LatestResult(r.Context(), ticker)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, NewResultView(result, 0))
}

// ScoreTicker scores one ticker live
// GET /api/score/{ticker}
func (h *ScanHandler) ScoreTicker(w http.ResponseWriter, r *http.Request) {
	ticker, ok := h.ticker(w, r)
	if !ok {
		return
	}

	result, err := h.runner.Scanner().ScoreTicker(r.Context(), ticker)
	if err != nil {
		h.logger.WithTicker(ticker).WithError(err).Warn("Live score failed")
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, NewResultView(result, 0))
}

// GetRules lists the scoring rule table
// GET /api/rules
func (h *ScanHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s3_scoring.RuleTable())
}

func (h *ScanHandler) ticker(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(mux.Vars(r)["ticker"])
	tickers, _ := s1_universe.Normalize([]string{raw}, h.suffix)
	if len(tickers) != 1 {
		respondError(w, http.StatusBadRequest, "invalid ticker")
		return "", false
	}
	return tickers[0], true
}
