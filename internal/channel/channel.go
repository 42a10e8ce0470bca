// Package channel implements the outbound delivery channels and the
// dispatcher that fans a lead out to all of them.
package channel

import (
	"context"

	"github.com/grassigrosso/lead-relay/internal/logger"
	"github.com/grassigrosso/lead-relay/internal/models"
)

// Channel names used as error-map keys and telemetry labels
const (
	NameTelegram = "telegram"
	NameEmail    = "email"
	NameBoth     = "telegram+email"
)

// Channel is one outbound delivery transport
type Channel interface {
	// Name returns the channel's stable identifier
	Name() string

	// Configured reports whether the channel has the credentials and
	// settings it needs to attempt delivery
	Configured() bool

	// Send delivers one lead, or returns an error describing why it
	// could not
	Send(ctx context.Context, lead models.Lead) error
}

// Result describes the outcome of one dispatch across all channels
type Result struct {
	// OK is true iff at least one channel succeeded
	OK bool

	// Channel is the telemetry label: telegram, email, or
	// telegram+email. Empty when nothing succeeded.
	Channel string

	// Errors holds a human-readable failure detail per failed channel
	Errors map[string]string
}

// Dispatcher attempts delivery to each configured channel in a fixed
// priority order. It is stateless per call; the hot path and the
// background sweeper may both use it concurrently.
type Dispatcher struct {
	telegram Channel
	email    Channel
}

// NewDispatcher creates a Dispatcher. Telegram is the primary channel,
// email the secondary.
func NewDispatcher(telegram, email Channel) *Dispatcher {
	return &Dispatcher{
		telegram: telegram,
		email:    email,
	}
}

// AnyConfigured reports whether at least one channel can deliver
func (d *Dispatcher) AnyConfigured() bool {
	return d.telegram.Configured() || d.email.Configured()
}

// ChannelStatus reports per-channel configuration flags for the health
// endpoint
func (d *Dispatcher) ChannelStatus() map[string]bool {
	return map[string]bool{
		NameTelegram: d.telegram.Configured(),
		NameEmail:    d.email.Configured(),
	}
}

// Deliver attempts both channels regardless of each other's outcome.
// A failure on the primary never prevents the secondary attempt; retry
// is the queue's responsibility, never this component's.
func (d *Dispatcher) Deliver(ctx context.Context, lead models.Lead) Result {
	errs := make(map[string]string)

	if err := d.attempt(ctx, d.telegram, lead); err != nil {
		errs[NameTelegram] = models.ErrorDetail(err)
		logger.LogError(ctx, "Telegram delivery failed", err)
	}

	if err := d.attempt(ctx, d.email, lead); err != nil {
		errs[NameEmail] = models.ErrorDetail(err)
		logger.LogError(ctx, "Email delivery failed", err)
	}

	result := Result{Errors: errs}
	_, telegramFailed := errs[NameTelegram]
	_, emailFailed := errs[NameEmail]

	switch {
	case !telegramFailed && !emailFailed:
		result.OK = true
		result.Channel = NameBoth
	case !telegramFailed:
		result.OK = true
		result.Channel = NameTelegram
	case !emailFailed:
		result.OK = true
		result.Channel = NameEmail
	}

	return result
}

// attempt runs one channel attempt, mapping a missing configuration to
// an explicit "not configured" error
func (d *Dispatcher) attempt(ctx context.Context, ch Channel, lead models.Lead) error {
	if !ch.Configured() {
		return models.NewChannelNotConfiguredError(ch.Name())
	}
	return ch.Send(ctx, lead)
}
