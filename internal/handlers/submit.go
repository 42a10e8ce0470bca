package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grassigrosso/lead-relay/internal/channel"
	"github.com/grassigrosso/lead-relay/internal/guard"
	"github.com/grassigrosso/lead-relay/internal/logger"
	"github.com/grassigrosso/lead-relay/internal/models"
	"github.com/grassigrosso/lead-relay/internal/queue"
)

// maxBodyBytes bounds the submission payload size
const maxBodyBytes = 1 << 20

// SubmitHandler handles contact-form submissions
type SubmitHandler struct {
	guard      *guard.Guard
	dispatcher *channel.Dispatcher
	queue      *queue.RetryQueue
}

// NewSubmitHandler creates a new SubmitHandler
func NewSubmitHandler(g *guard.Guard, d *channel.Dispatcher, q *queue.RetryQueue) *SubmitHandler {
	return &SubmitHandler{
		guard:      g,
		dispatcher: d,
		queue:      q,
	}
}

// SubmitResponse is returned for accepted submissions
type SubmitResponse struct {
	Success  bool   `json:"success"`
	Delivery string `json:"delivery"`
	Queued   bool   `json:"queued"`
	QueueID  string `json:"queueId,omitempty"`
}

// ErrorResponse is returned for rejected or failed submissions
type ErrorResponse struct {
	Error             string `json:"error"`
	Details           string `json:"details,omitempty"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

// HandleSubmit handles POST /api/submit
func (h *SubmitHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	correlationID := uuid.New().String()
	ip := sourceIP(r)

	ctx := context.WithValue(r.Context(), logger.CorrelationIDKey, correlationID)
	ctx = context.WithValue(ctx, logger.SourceIPKey, ip)

	var rawBody models.RawSubmission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&rawBody); err != nil {
		logger.LogError(ctx, "Malformed submission payload", err)
		respondJSON(w, ctx, http.StatusBadRequest, ErrorResponse{Error: "malformed JSON payload"})
		return
	}
	defer r.Body.Close()

	lead := models.NormalizeLead(rawBody)

	verdict := h.guard.Check(ip, rawBody, lead, time.Now())
	if !verdict.OK {
		logger.Warn(ctx, "Submission rejected by guard",
			"status", verdict.Status,
			"retry_after_seconds", verdict.RetryAfterSeconds)
		if verdict.RetryAfterSeconds > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(verdict.RetryAfterSeconds))
		}
		respondJSON(w, ctx, verdict.Status, ErrorResponse{
			Error:             verdict.Message,
			RetryAfterSeconds: verdict.RetryAfterSeconds,
		})
		return
	}

	if lead.Name == "" || lead.Phone == "" {
		respondJSON(w, ctx, http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	if !h.dispatcher.AnyConfigured() {
		logger.Error(ctx, "No delivery channels configured")
		respondJSON(w, ctx, http.StatusInternalServerError, ErrorResponse{
			Error: models.ErrNoChannelsConfigured.Error(),
		})
		return
	}

	result := h.dispatcher.Deliver(ctx, lead)
	if result.OK {
		logger.Info(ctx, "Lead delivered", "channel", result.Channel, "page", lead.Page)
		respondJSON(w, ctx, http.StatusOK, SubmitResponse{
			Success:  true,
			Delivery: result.Channel,
			Queued:   false,
		})
		return
	}

	item, err := h.queue.Enqueue(ctx, lead, result.Errors)
	if err != nil {
		logger.LogError(ctx, "Failed to queue lead for retry", err)
		respondJSON(w, ctx, http.StatusInternalServerError, ErrorResponse{
			Error:   "failed to process submission",
			Details: models.ErrorDetail(err),
		})
		return
	}

	logger.Warn(ctx, "Lead queued after full dispatch failure",
		"queue_item_id", item.ID,
		"errors", result.Errors)
	respondJSON(w, ctx, http.StatusAccepted, SubmitResponse{
		Success:  true,
		Delivery: "queued_retry",
		Queued:   true,
		QueueID:  item.ID,
	})
}

// sourceIP extracts the caller's network address, preferring the first
// X-Forwarded-For hop when the relay sits behind a proxy
func sourceIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
		if first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}

// respondJSON sends a JSON response with the correlation header
func respondJSON(w http.ResponseWriter, ctx context.Context, statusCode int, data interface{}) {
	if correlationID, ok := ctx.Value(logger.CorrelationIDKey).(string); ok {
		w.Header().Set("X-Correlation-ID", correlationID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.LogError(ctx, "Failed to encode response", err)
	}
}
