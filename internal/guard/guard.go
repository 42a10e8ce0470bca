// Package guard defends the public submission endpoint against abuse
// without requiring authentication: a per-source rate limiter with a
// honeypot bot filter, field length bounds, and temporary blocking.
package guard

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/grassigrosso/lead-relay/internal/config"
	"github.com/grassigrosso/lead-relay/internal/models"
)

// honeypotFields are decoy field names a human never fills in. A
// non-empty value in any of them marks the submission as automated.
var honeypotFields = []string{"website", "url", "homepage"}

// sourceState is the per-source-address rate-limiting state
type sourceState struct {
	windowStart  time.Time
	count        int
	lastSubmitAt time.Time
	blockedUntil time.Time
	lastSeenAt   time.Time
}

// Verdict is the outcome of a submission check
type Verdict struct {
	OK                bool
	Status            int // HTTP status class for rejections: 400 or 429
	Message           string
	RetryAfterSeconds int
}

const (
	msgRateLimited   = "Too many requests. Please try again later."
	msgInvalidFields = "Invalid form field length."
)

// Guard is the submission guard. It exclusively owns the per-source
// state map; all access is serialized through its mutex.
type Guard struct {
	mu    sync.Mutex
	cfg   config.GuardConfig
	state map[string]*sourceState
}

// New creates a Guard with the given configuration
func New(cfg config.GuardConfig) *Guard {
	return &Guard{
		cfg:   cfg,
		state: make(map[string]*sourceState),
	}
}

// Check runs the anti-abuse pipeline for one submission, in order,
// short-circuiting on the first match: block check, honeypot check,
// field-length checks, submission-interval check, window-count check.
// State mutations on blocking branches are applied before returning.
func (g *Guard) Check(sourceIP string, body models.RawSubmission, lead models.Lead, now time.Time) Verdict {
	if sourceIP == "" {
		sourceIP = "unknown"
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.lookupState(sourceIP, now)

	// 1. Block check
	if state.blockedUntil.After(now) {
		return g.blockedVerdict(state, now)
	}

	// 2. Honeypot check. Indistinguishable from an abuse block so
	// probers cannot tell which check fired.
	if honeypotTriggered(body) {
		state.blockedUntil = now.Add(g.cfg.BlockDuration)
		return g.blockedVerdict(state, now)
	}

	// 3. Field-length checks. Limits are in characters, not bytes.
	if utf8.RuneCountInString(lead.Comment) > g.cfg.MaxCommentLength {
		return Verdict{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("Message too long (maximum %d characters).", g.cfg.MaxCommentLength),
		}
	}
	if utf8.RuneCountInString(lead.Name) > g.cfg.MaxNameLength ||
		utf8.RuneCountInString(lead.Phone) > g.cfg.MaxPhoneLength ||
		utf8.RuneCountInString(lead.Email) > g.cfg.MaxEmailLength {
		return Verdict{
			Status:  http.StatusBadRequest,
			Message: msgInvalidFields,
		}
	}

	// 4. Submission-interval check
	if !state.lastSubmitAt.IsZero() && now.Sub(state.lastSubmitAt) < g.cfg.MinSubmitInterval {
		state.blockedUntil = now.Add(g.cfg.BlockDuration)
		return g.blockedVerdict(state, now)
	}

	// 5. Window-count check
	state.count++
	state.lastSubmitAt = now
	if state.count > g.cfg.MaxPerWindow {
		state.blockedUntil = now.Add(g.cfg.BlockDuration)
		return g.blockedVerdict(state, now)
	}

	return Verdict{OK: true}
}

// Cleanup removes per-source state that is no longer blocked and has
// not been seen for twice the larger of (window, block duration). This
// bounds memory growth from unique source addresses.
func (g *Guard) Cleanup(now time.Time) int {
	ttl := g.cfg.Window
	if g.cfg.BlockDuration > ttl {
		ttl = g.cfg.BlockDuration
	}
	ttl *= 2

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for ip, state := range g.state {
		if state.blockedUntil.After(now) {
			continue
		}
		if state.lastSeenAt.Add(ttl).After(now) {
			continue
		}
		delete(g.state, ip)
		removed++
	}
	return removed
}

// Size returns the number of tracked source addresses
func (g *Guard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.state)
}

// lookupState fetches or lazily creates state for a source, advancing
// the window when its length has elapsed. Caller holds the mutex.
func (g *Guard) lookupState(sourceIP string, now time.Time) *sourceState {
	if existing, ok := g.state[sourceIP]; ok {
		existing.lastSeenAt = now
		if now.Sub(existing.windowStart) >= g.cfg.Window {
			existing.windowStart = now
			existing.count = 0
		}
		return existing
	}

	created := &sourceState{
		windowStart: now,
		lastSeenAt:  now,
	}
	g.state[sourceIP] = created
	return created
}

func (g *Guard) blockedVerdict(state *sourceState, now time.Time) Verdict {
	return Verdict{
		Status:            http.StatusTooManyRequests,
		Message:           msgRateLimited,
		RetryAfterSeconds: retryAfterSeconds(now, state.blockedUntil),
	}
}

// honeypotTriggered reports whether any decoy field holds a non-empty
// trimmed string
func honeypotTriggered(body models.RawSubmission) bool {
	for _, key := range honeypotFields {
		value, ok := body[key]
		if !ok {
			continue
		}
		s, ok := value.(string)
		if !ok {
			continue
		}
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// retryAfterSeconds computes the Retry-After hint, minimum 1 second
func retryAfterSeconds(now, blockedUntil time.Time) int {
	seconds := int((blockedUntil.Sub(now) + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
