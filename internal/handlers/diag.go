package handlers

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/grassigrosso/lead-relay/internal/channel"
	"github.com/grassigrosso/lead-relay/internal/config"
	"github.com/grassigrosso/lead-relay/internal/logger"
)

// DiagHandler serves the best-effort diagnostic endpoints. These
// consult the channels directly and are not part of the delivery
// guarantee.
type DiagHandler struct {
	cfg      *config.Config
	telegram *channel.TelegramChannel
	email    *channel.EmailChannel
}

// NewDiagHandler creates a new DiagHandler
func NewDiagHandler(cfg *config.Config, telegram *channel.TelegramChannel, email *channel.EmailChannel) *DiagHandler {
	return &DiagHandler{
		cfg:      cfg,
		telegram: telegram,
		email:    email,
	}
}

// HandleGetChatID handles GET /api/get-chat-id: discovers the chat id
// of the most recent message sent to the bot.
func (h *DiagHandler) HandleGetChatID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cfg.Telegram.BotToken == "" {
		respondJSON(w, ctx, http.StatusInternalServerError, ErrorResponse{Error: "BOT_TOKEN is not configured"})
		return
	}

	chatID, found, err := h.telegram.LatestChatID(ctx)
	if err != nil {
		logger.LogError(ctx, "Failed to fetch chat id", err)
		respondJSON(w, ctx, http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch chat id"})
		return
	}

	if !found {
		respondJSON(w, ctx, http.StatusOK, map[string]string{
			"message": "No messages found. Send any message to the bot and try again.",
			"hint":    "After messaging the bot, refresh this page",
		})
		return
	}

	respondJSON(w, ctx, http.StatusOK, map[string]interface{}{
		"chat_id": chatID,
		"message": fmt.Sprintf("Your CHAT_ID is %d. Add CHAT_ID=%d to your environment.", chatID, chatID),
	})
}

// diagCheck is one test result in the SMTP diagnostic report
type diagCheck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// smtpDiagResponse is the SMTP diagnostic report
type smtpDiagResponse struct {
	Timestamp time.Time            `json:"timestamp"`
	Config    map[string]string    `json:"config"`
	Tests     map[string]diagCheck `json:"tests"`
}

// HandleSMTPDiag handles GET /api/smtp-diag: DNS resolution, TCP
// reachability of the common submission ports, and an authenticated
// SMTP dial with the configured transport.
func (h *DiagHandler) HandleSMTPDiag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	smtp := h.cfg.SMTP

	report := smtpDiagResponse{
		Timestamp: time.Now().UTC(),
		Config: map[string]string{
			"host":       smtp.Host,
			"port":       fmt.Sprintf("%d", smtp.Port),
			"secure":     fmt.Sprintf("%t", smtp.Secure),
			"tls_verify": fmt.Sprintf("%t", smtp.TLSVerify),
			"user":       maskPresence(smtp.User),
			"pass":       maskPresence(smtp.Password),
			"from":       smtp.From,
			"to":         smtp.To,
		},
		Tests: make(map[string]diagCheck),
	}

	// DNS resolution
	if _, err := net.DefaultResolver.LookupHost(ctx, smtp.Host); err != nil {
		report.Tests["dns"] = diagCheck{Error: err.Error()}
	} else {
		report.Tests["dns"] = diagCheck{OK: true}
	}

	// TCP reachability of the implicit-TLS and STARTTLS ports
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	for _, port := range []int{465, 587} {
		key := fmt.Sprintf("tcp_%d", port)
		conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(smtp.Host, fmt.Sprintf("%d", port)))
		if err != nil {
			report.Tests[key] = diagCheck{Error: err.Error()}
			continue
		}
		conn.Close()
		report.Tests[key] = diagCheck{OK: true}
	}

	// Authenticated SMTP dial with the configured transport
	if err := h.email.Verify(ctx); err != nil {
		report.Tests["smtp_verify"] = diagCheck{Error: err.Error()}
	} else {
		report.Tests["smtp_verify"] = diagCheck{OK: true}
	}

	status := http.StatusOK
	for _, test := range report.Tests {
		if !test.OK {
			status = http.StatusInternalServerError
			break
		}
	}
	respondJSON(w, ctx, status, report)
}

// HandleTest handles GET and POST /api/test, the rollout echo endpoint
func (h *DiagHandler) HandleTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := map[string]interface{}{
		"message":   "API is up",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if r.Method == http.MethodPost {
		var body map[string]interface{}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err == nil {
			response["body"] = body
		}
		defer r.Body.Close()
	}

	respondJSON(w, ctx, http.StatusOK, response)
}

// maskPresence hides a secret while reporting whether it is set
func maskPresence(value string) string {
	if value == "" {
		return "not set"
	}
	return "set"
}
