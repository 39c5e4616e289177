package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/DeepakChander/leadmaster-ai-web/internal/ingest"
	"github.com/DeepakChander/leadmaster-ai-web/internal/model"
	"github.com/DeepakChander/leadmaster-ai-web/internal/service"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/logger"
	"github.com/DeepakChander/leadmaster-ai-web/pkg/metrics"
)

// StreamHandler handles the SSE live lead stream.
type StreamHandler struct {
	dispatcher *service.Dispatcher
	ingest     *ingest.Manager
	logger     *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(dispatcher *service.Dispatcher, ing *ingest.Manager, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		dispatcher: dispatcher,
		ingest:     ing,
		logger:     log,
	}
}

// Stream handles GET /api/v1/leads/stream
//
// Replays the current session's lead list (newest first), then delivers live
// leads as they are accepted. The connection survives session replacement:
// after a new query, the stream simply starts carrying the new session's
// leads.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	// Register the live feed before the snapshot so no lead can fall between
	// replay and live delivery. Duplicates across the seam are possible and
	// accepted; leads carry no identity to dedupe on.
	live, cancel := h.ingest.Watch()
	defer cancel()

	view := h.dispatcher.Session()
	sendSSEEvent(w, flusher, "connected", map[string]any{
		"session_id": view.Token,
		"state":      view.State,
	})

	for _, l := range h.ingest.Leads() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		sendSSEEvent(w, flusher, "lead", &model.LeadEvent{
			Lead:       l,
			SessionID:  view.Token,
			ReceivedAt: time.Now(),
		})
	}

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("SSE client disconnected", zap.String("session_id", view.Token))
			return

		case l := <-live:
			sendSSEEvent(w, flusher, "lead", &model.LeadEvent{
				Lead:       l,
				SessionID:  h.dispatcher.Session().Token,
				ReceivedAt: time.Now(),
			})

		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", &model.HeartbeatEvent{
				Timestamp: time.Now(),
			})
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
