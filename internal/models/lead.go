package models

import (
	"strings"
	"time"
)

// PageUnspecified is the sentinel used when a submission does not say
// which page the form was on.
const PageUnspecified = "unspecified"

// Lead represents a normalized contact-form submission
type Lead struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Comment string `json:"comment"`
	Email   string `json:"email"`
	City    string `json:"city"`
	Company string `json:"company"`
	Page    string `json:"page"`
}

// RawSubmission is the untyped request body as received. It is kept
// separate from Lead so honeypot detection can scan arbitrary keys
// without polluting the lead schema.
type RawSubmission map[string]interface{}

// NormalizeLead builds a Lead from an untrusted request body.
// All fields are trimmed; absent or non-string values normalize to the
// empty string; page falls back to the "unspecified" sentinel.
func NormalizeLead(body RawSubmission) Lead {
	lead := Lead{
		Name:    stringField(body, "name"),
		Phone:   stringField(body, "phone"),
		Comment: stringField(body, "comment"),
		Email:   stringField(body, "email"),
		City:    stringField(body, "city"),
		Company: stringField(body, "company"),
		Page:    stringField(body, "page"),
	}
	if lead.Page == "" {
		lead.Page = PageUnspecified
	}
	return lead
}

// stringField extracts and trims a string value from the raw body
func stringField(body RawSubmission, key string) string {
	if body == nil {
		return ""
	}
	value, ok := body[key]
	if !ok {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// QueueItem represents a lead awaiting redelivery
type QueueItem struct {
	ID            string            `json:"id"`
	Lead          Lead              `json:"lead"`
	Attempts      int               `json:"attempts"`
	CreatedAt     time.Time         `json:"created_at"`
	LastAttemptAt *time.Time        `json:"last_attempt_at,omitempty"`
	NextAttemptAt time.Time         `json:"next_attempt_at"`
	LastErrors    map[string]string `json:"last_errors,omitempty"`
}

// Due reports whether the item is eligible for a retry attempt
func (q *QueueItem) Due(now time.Time) bool {
	return !q.NextAttemptAt.After(now)
}

// MarkAttempt records the start of a dispatch attempt
func (q *QueueItem) MarkAttempt(now time.Time) {
	q.Attempts++
	at := now
	q.LastAttemptAt = &at
}
