package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/bist-swing/internal/contracts"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const writeWait = 10 * time.Second

// Stream message types
const (
	MessageProgress = "progress"
	MessageReport   = "report"
	MessageError    = "error"
)

// StreamMessage is one websocket frame of a streamed scan
type StreamMessage struct {
	Type     string                `json:"type"`
	Progress *contracts.Progress   `json:"progress,omitempty"`
	Result   *ResultView           `json:"result,omitempty"`
	Skip     *contracts.SkipRecord `json:"skip,omitempty"`
	Report   *ReportView           `json:"report,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// StreamScan runs a scan bound to the socket: one message per processed ticker,
// then the final report. Closing the socket cancels the scan.
// GET /ws/scans
func (h *ScanHandler) StreamScan(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(h.baseCtx)
	defer cancel()

	// reader only watches for the peer going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg StreamMessage) {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			cancel()
		}
	}

	report, err := h.runner.Run(ctx, func(e contracts.ScanEvent) {
		progress := e.Progress
		msg := StreamMessage{Type: MessageProgress, Progress: &progress, Skip: e.Skip}
		if e.Result != nil {
			view := NewResultView(e.Result, 0)
			msg.Result = &view
		}
		write(msg)
	})

	if report != nil {
		view := NewReportView(report, 0)
		write(StreamMessage{Type: MessageReport, Report: &view})
	}
	if err != nil && ctx.Err() == nil {
		write(StreamMessage{Type: MessageError, Error: err.Error()})
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
