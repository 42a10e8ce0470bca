package handlers

import (
	"net/http"

	"github.com/grassigrosso/lead-relay/internal/channel"
	"github.com/grassigrosso/lead-relay/internal/queue"
)

// HealthHandler reports process liveness for external probing
type HealthHandler struct {
	dispatcher *channel.Dispatcher
	queue      *queue.RetryQueue
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(d *channel.Dispatcher, q *queue.RetryQueue) *HealthHandler {
	return &HealthHandler{
		dispatcher: d,
		queue:      q,
	}
}

// HealthResponse is the health endpoint body
type HealthResponse struct {
	Status    string          `json:"status"`
	QueueSize int             `json:"queueSize"`
	Channels  map[string]bool `json:"channels"`
}

// HandleHealth handles GET /health. It answers 200 unconditionally
// while the process is alive; channel configuration is informational.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r.Context(), http.StatusOK, HealthResponse{
		Status:    "ok",
		QueueSize: h.queue.Size(),
		Channels:  h.dispatcher.ChannelStatus(),
	})
}
