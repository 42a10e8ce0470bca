package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/grassigrosso/lead-relay/internal/models"
)

// fakeChannel is a scripted channel for dispatcher tests
type fakeChannel struct {
	name       string
	configured bool
	err        error
	calls      int
}

func (f *fakeChannel) Name() string     { return f.name }
func (f *fakeChannel) Configured() bool { return f.configured }
func (f *fakeChannel) Send(ctx context.Context, lead models.Lead) error {
	f.calls++
	return f.err
}

func TestDeliverBothSucceed(t *testing.T) {
	telegram := &fakeChannel{name: NameTelegram, configured: true}
	email := &fakeChannel{name: NameEmail, configured: true}
	d := NewDispatcher(telegram, email)

	result := d.Deliver(context.Background(), models.Lead{Name: "Jane", Phone: "1"})

	if !result.OK {
		t.Fatal("expected delivery to succeed")
	}
	if result.Channel != NameBoth {
		t.Errorf("Channel = %q, expected %q", result.Channel, NameBoth)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, expected none", result.Errors)
	}
}

func TestDeliverPrimaryOnly(t *testing.T) {
	telegram := &fakeChannel{name: NameTelegram, configured: true}
	email := &fakeChannel{name: NameEmail, configured: true, err: errors.New("smtp timeout")}
	d := NewDispatcher(telegram, email)

	result := d.Deliver(context.Background(), models.Lead{})

	if !result.OK {
		t.Fatal("expected delivery to succeed via primary")
	}
	if result.Channel != NameTelegram {
		t.Errorf("Channel = %q, expected %q", result.Channel, NameTelegram)
	}
	if result.Errors[NameEmail] != "smtp timeout" {
		t.Errorf("Errors[email] = %q, expected %q", result.Errors[NameEmail], "smtp timeout")
	}
}

func TestDeliverSecondaryOnly(t *testing.T) {
	telegram := &fakeChannel{name: NameTelegram, configured: true, err: errors.New("chat not found")}
	email := &fakeChannel{name: NameEmail, configured: true}
	d := NewDispatcher(telegram, email)

	result := d.Deliver(context.Background(), models.Lead{})

	if !result.OK {
		t.Fatal("expected delivery to succeed via secondary")
	}
	if result.Channel != NameEmail {
		t.Errorf("Channel = %q, expected %q", result.Channel, NameEmail)
	}
	if result.Errors[NameTelegram] != "chat not found" {
		t.Errorf("Errors[telegram] = %q, expected %q", result.Errors[NameTelegram], "chat not found")
	}
}

// A primary failure must never prevent the secondary attempt.
func TestDeliverNoShortCircuit(t *testing.T) {
	telegram := &fakeChannel{name: NameTelegram, configured: true, err: errors.New("down")}
	email := &fakeChannel{name: NameEmail, configured: true, err: errors.New("down too")}
	d := NewDispatcher(telegram, email)

	result := d.Deliver(context.Background(), models.Lead{})

	if result.OK {
		t.Fatal("expected delivery to fail on both channels")
	}
	if result.Channel != "" {
		t.Errorf("Channel = %q, expected empty", result.Channel)
	}
	if telegram.calls != 1 || email.calls != 1 {
		t.Errorf("calls = (%d, %d), expected both channels attempted once", telegram.calls, email.calls)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Errors = %v, expected entries for both channels", result.Errors)
	}
}

func TestDeliverUnconfiguredChannel(t *testing.T) {
	telegram := &fakeChannel{name: NameTelegram, configured: false}
	email := &fakeChannel{name: NameEmail, configured: true}
	d := NewDispatcher(telegram, email)

	result := d.Deliver(context.Background(), models.Lead{})

	if !result.OK || result.Channel != NameEmail {
		t.Fatalf("expected email-only success, got %+v", result)
	}
	if telegram.calls != 0 {
		t.Error("unconfigured channel must not be called")
	}
	if result.Errors[NameTelegram] != "telegram channel is not configured" {
		t.Errorf("Errors[telegram] = %q, expected not-configured detail", result.Errors[NameTelegram])
	}
}

func TestAnyConfigured(t *testing.T) {
	testCases := []struct {
		name     string
		telegram bool
		email    bool
		expected bool
	}{
		{"both", true, true, true},
		{"telegram only", true, false, true},
		{"email only", false, true, true},
		{"neither", false, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDispatcher(
				&fakeChannel{name: NameTelegram, configured: tc.telegram},
				&fakeChannel{name: NameEmail, configured: tc.email},
			)
			if got := d.AnyConfigured(); got != tc.expected {
				t.Errorf("AnyConfigured() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestChannelStatus(t *testing.T) {
	d := NewDispatcher(
		&fakeChannel{name: NameTelegram, configured: true},
		&fakeChannel{name: NameEmail, configured: false},
	)

	status := d.ChannelStatus()
	if !status[NameTelegram] || status[NameEmail] {
		t.Errorf("ChannelStatus() = %v, expected telegram=true email=false", status)
	}
}
