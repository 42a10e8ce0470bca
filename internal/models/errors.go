package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoChannelsConfigured indicates the relay has no viable delivery
// channel at all, so queuing would be pointless.
var ErrNoChannelsConfigured = errors.New("no delivery channels configured")

// ChannelNotConfiguredError indicates a channel is missing its required
// credentials or settings
type ChannelNotConfiguredError struct {
	Channel string
}

func (e *ChannelNotConfiguredError) Error() string {
	return fmt.Sprintf("%s channel is not configured", e.Channel)
}

// NewChannelNotConfiguredError creates a new ChannelNotConfiguredError
func NewChannelNotConfiguredError(channel string) *ChannelNotConfiguredError {
	return &ChannelNotConfiguredError{Channel: channel}
}

// ChannelError represents a failed delivery attempt on one channel
type ChannelError struct {
	Channel    string
	StatusCode int
	Detail     string
	Err        error
}

func (e *ChannelError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s delivery failed: HTTP %d - %s", e.Channel, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s delivery failed: %s", e.Channel, e.Detail)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// NewChannelError creates a new ChannelError
func NewChannelError(channel string, statusCode int, detail string, err error) *ChannelError {
	return &ChannelError{
		Channel:    channel,
		StatusCode: statusCode,
		Detail:     detail,
		Err:        err,
	}
}

// ErrorDetail reduces any error to a human-readable detail string.
// Structured transport errors keep their description field; everything
// else falls back to the error message.
func ErrorDetail(err error) string {
	if err == nil {
		return "unknown error"
	}

	var chErr *ChannelError
	if errors.As(err, &chErr) && chErr.Detail != "" {
		return chErr.Detail
	}

	return err.Error()
}

// ExtractAPIDescription pulls a structured error description out of a
// transport response body, preferring "description" (Telegram Bot API)
// then "error". Returns "" when the body carries neither.
func ExtractAPIDescription(body []byte) string {
	var payload struct {
		Description string `json:"description"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Description != "" {
		return payload.Description
	}
	return payload.Error
}
