package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bucketlist/internal/events"
	"bucketlist/internal/handler/sse"
	"bucketlist/internal/httputil"

	"github.com/google/uuid"
)

// EventSource is the change feed the stream relays
type EventSource interface {
	Subscribe() (<-chan []byte, func())
}

// EventsHandler streams change notifications over Server-Sent Events
type EventsHandler struct {
	source EventSource
	config *sse.Config
	logger *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(source EventSource, config *sse.Config, logger *slog.Logger) *EventsHandler {
	if config == nil {
		config = sse.DefaultConfig()
	}
	return &EventsHandler{
		source: source,
		config: config,
		logger: logger,
	}
}

// Stream relays every published change until the client disconnects.
// Events only name what changed; clients refresh their list on receipt.
// GET /api/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.RespondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	actor := httputil.GetActor(r)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	writer := sse.NewWriter(w, flusher, uuid.New().String())
	clientID := writer.ClientID()
	if err := writer.WriteComment("connected"); err != nil {
		h.logger.Warn("initial write failed - connection already dead",
			"client_id", clientID,
			"error", err,
		)
		return
	}

	feed, cancel := h.source.Subscribe()
	defer cancel()

	keepAlive := sse.NewKeepAlive(h.config.KeepAliveInterval)
	keepAliveDone := keepAlive.Run(writer, h.logger)
	defer keepAlive.Stop()

	h.logger.Debug("SSE client registered",
		"client_id", clientID,
		"actor", actor.Email,
	)

	for {
		select {
		case data, ok := <-feed:
			if !ok {
				return
			}

			var ev events.Event
			if err := json.Unmarshal(data, &ev); err != nil {
				h.logger.Error("dropping undecodable event", "client_id", clientID, "error", err)
				continue
			}
			if err := writer.WriteEvent(ev.ID, ev.Type, data); err != nil {
				h.logger.Info("client disconnected during event write",
					"client_id", clientID,
					"error", err,
				)
				return
			}

		case <-keepAliveDone:
			return

		case <-r.Context().Done():
			h.logger.Debug("SSE client disconnected", "client_id", clientID)
			return
		}
	}
}
