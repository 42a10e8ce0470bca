package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/grassigrosso/lead-relay/internal/config"
	"github.com/grassigrosso/lead-relay/internal/models"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramChannel delivers leads to a chat via the Telegram Bot API
type TelegramChannel struct {
	cfg        config.TelegramConfig
	baseURL    string
	httpClient *http.Client
}

// NewTelegramChannel creates a new Telegram channel
func NewTelegramChannel(cfg config.TelegramConfig) *TelegramChannel {
	return &TelegramChannel{
		cfg:     cfg,
		baseURL: telegramAPIBase,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the channel identifier
func (t *TelegramChannel) Name() string {
	return NameTelegram
}

// Configured reports whether bot credentials are present
func (t *TelegramChannel) Configured() bool {
	return t.cfg.BotToken != "" && t.cfg.ChatID != ""
}

// sendMessageRequest is the Bot API sendMessage payload
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send posts the rendered lead message to the bot's chat
func (t *TelegramChannel) Send(ctx context.Context, lead models.Lead) error {
	payload := sendMessageRequest{
		ChatID:    t.cfg.ChatID,
		Text:      BuildTelegramMessage(lead),
		ParseMode: "Markdown",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return models.NewChannelError(NameTelegram, 0, "failed to marshal message", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return models.NewChannelError(NameTelegram, 0, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return models.NewChannelError(NameTelegram, 0, "network error: "+err.Error(), err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.NewChannelError(NameTelegram, resp.StatusCode, "failed to read response body", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Prefer the Bot API's structured description over the raw body.
	detail := models.ExtractAPIDescription(bodyBytes)
	if detail == "" {
		detail = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return models.NewChannelError(NameTelegram, resp.StatusCode, detail, nil)
}

// ChatUpdate is one entry from the Bot API getUpdates response
type ChatUpdate struct {
	Message struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// LatestChatID fetches the bot's pending updates and returns the chat
// id of the most recent message. Used by the chat-id discovery
// diagnostic endpoint.
func (t *TelegramChannel) LatestChatID(ctx context.Context) (int64, bool, error) {
	if t.cfg.BotToken == "" {
		return 0, false, models.NewChannelNotConfiguredError(NameTelegram)
	}

	url := fmt.Sprintf("%s/bot%s/getUpdates", t.baseURL, t.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		OK     bool         `json:"ok"`
		Result []ChatUpdate `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, false, fmt.Errorf("failed to decode getUpdates response: %w", err)
	}

	if !payload.OK || len(payload.Result) == 0 {
		return 0, false, nil
	}

	last := payload.Result[len(payload.Result)-1]
	if last.Message.Chat.ID == 0 {
		return 0, false, nil
	}
	return last.Message.Chat.ID, true, nil
}
