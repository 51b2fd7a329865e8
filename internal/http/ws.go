package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	ws "github.com/coder/websocket"

	"github.com/example/team-portal/internal/logging"
)

const wsPingInterval = 30 * time.Second

// Stream upgrades the request to a websocket and pushes a fresh week view
// whenever the underlying records change. Each connection watches exactly
// one week, chosen by the date query parameter.
func (h *WeekHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	anchor, ok := h.anchorDate(w, r)
	if !ok {
		return
	}

	logger := logging.Resolve(r.Context(), h.logger)

	conn, err := ws.Accept(w, r, nil)
	if err != nil {
		logger.WarnContext(r.Context(), "websocket accept failed", "error", err)
		return
	}
	defer conn.Close(ws.StatusInternalError, "stream aborted")

	ctx := r.Context()
	watcher, err := h.service.WatchWeek(ctx, anchor)
	if err != nil {
		logger.ErrorContext(ctx, "failed to start week watcher", "error", err)
		conn.Close(ws.StatusInternalError, "failed to start watcher")
		return
	}
	defer watcher.Close()

	// Drain incoming frames so pongs and close frames are processed; the
	// stream itself is one-directional.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case view, ok := <-watcher.Updates():
			if !ok {
				conn.Close(ws.StatusNormalClosure, "watcher closed")
				return
			}
			payload, err := json.Marshal(toWeekPayload(view))
			if err != nil {
				logger.ErrorContext(ctx, "failed to encode week view", "error", err)
				continue
			}
			if err := conn.Write(ctx, ws.MessageText, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			conn.Close(ws.StatusNormalClosure, "server shutting down")
			return
		}
	}
}

// isWebsocketRequest reports whether the request asks for an upgrade, so the
// router can share the /weeks path between JSON and stream clients.
func isWebsocketRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
