package channel

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"

	"github.com/grassigrosso/lead-relay/internal/config"
	"github.com/grassigrosso/lead-relay/internal/models"
)

// EmailChannel delivers leads to a staff mailbox over authenticated SMTP
type EmailChannel struct {
	cfg config.SMTPConfig
}

// NewEmailChannel creates a new email channel
func NewEmailChannel(cfg config.SMTPConfig) *EmailChannel {
	return &EmailChannel{cfg: cfg}
}

// Name returns the channel identifier
func (e *EmailChannel) Name() string {
	return NameEmail
}

// Configured reports whether SMTP settings and addresses are present
func (e *EmailChannel) Configured() bool {
	return e.cfg.Host != "" && e.cfg.User != "" && e.cfg.Password != "" &&
		e.cfg.From != "" && e.cfg.To != ""
}

// newClient builds an SMTP client for the configured transport.
// Secure mode uses implicit TLS (SMTPS, typically port 465); otherwise
// STARTTLS is required on the submission port. The auth mechanism is
// negotiated from what the server advertises.
func (e *EmailChannel) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(e.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		mail.WithUsername(e.cfg.User),
		mail.WithPassword(e.cfg.Password),
		mail.WithTimeout(e.cfg.Timeout),
	}

	if e.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	if !e.cfg.TLSVerify {
		opts = append(opts, mail.WithTLSConfig(&tls.Config{
			ServerName:         e.cfg.Host,
			InsecureSkipVerify: true,
		}))
	}

	return mail.NewClient(e.cfg.Host, opts...)
}

// Send renders the lead and sends it as a multipart text+HTML email
func (e *EmailChannel) Send(ctx context.Context, lead models.Lead) error {
	msg := mail.NewMsg()
	if err := msg.From(e.cfg.From); err != nil {
		return models.NewChannelError(NameEmail, 0, "invalid from address", err)
	}
	if err := msg.To(e.cfg.To); err != nil {
		return models.NewChannelError(NameEmail, 0, "invalid to address", err)
	}

	now := time.Now()
	msg.Subject(BuildEmailSubject(lead))
	msg.SetBodyString(mail.TypeTextPlain, BuildEmailText(lead, now))
	msg.AddAlternativeString(mail.TypeTextHTML, BuildEmailHTML(lead, now))

	client, err := e.newClient()
	if err != nil {
		return models.NewChannelError(NameEmail, 0, "failed to create SMTP client", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return models.NewChannelError(NameEmail, 0, fmt.Sprintf("SMTP send failed: %v", err), err)
	}

	return nil
}

// Verify dials and authenticates against the SMTP server without
// sending mail. Used by the connectivity diagnostic endpoint.
func (e *EmailChannel) Verify(ctx context.Context) error {
	if !e.Configured() {
		return models.NewChannelNotConfiguredError(NameEmail)
	}

	client, err := e.newClient()
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("SMTP dial failed: %w", err)
	}
	return client.Close()
}
