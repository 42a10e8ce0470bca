package models

import (
	"testing"
	"time"
)

func TestNormalizeLead(t *testing.T) {
	testCases := []struct {
		name     string
		body     RawSubmission
		expected Lead
	}{
		{
			name: "all fields present",
			body: RawSubmission{
				"name":    "Jane Doe",
				"phone":   "+7 900 000-00-00",
				"comment": "call me",
				"email":   "jane@example.com",
				"city":    "Milan",
				"company": "Acme",
				"page":    "/contacts",
			},
			expected: Lead{
				Name:    "Jane Doe",
				Phone:   "+7 900 000-00-00",
				Comment: "call me",
				Email:   "jane@example.com",
				City:    "Milan",
				Company: "Acme",
				Page:    "/contacts",
			},
		},
		{
			name: "fields are trimmed",
			body: RawSubmission{
				"name":  "  Jane  ",
				"phone": "\t123456\n",
				"page":  "  /pricing  ",
			},
			expected: Lead{Name: "Jane", Phone: "123456", Page: "/pricing"},
		},
		{
			name:     "absent fields normalize to empty strings",
			body:     RawSubmission{"name": "Jane", "phone": "123"},
			expected: Lead{Name: "Jane", Phone: "123", Page: PageUnspecified},
		},
		{
			name:     "nil body",
			body:     nil,
			expected: Lead{Page: PageUnspecified},
		},
		{
			name: "non-string values normalize to empty strings",
			body: RawSubmission{
				"name":  42,
				"phone": []interface{}{"123"},
				"email": map[string]interface{}{"a": "b"},
			},
			expected: Lead{Page: PageUnspecified},
		},
		{
			name:     "whitespace-only page falls back to sentinel",
			body:     RawSubmission{"name": "Jane", "phone": "123", "page": "   "},
			expected: Lead{Name: "Jane", Phone: "123", Page: PageUnspecified},
		},
		{
			name:     "extra keys are ignored",
			body:     RawSubmission{"name": "Jane", "phone": "123", "website": "http://spam.example"},
			expected: Lead{Name: "Jane", Phone: "123", Page: PageUnspecified},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeLead(tc.body)
			if got != tc.expected {
				t.Errorf("NormalizeLead() = %+v, expected %+v", got, tc.expected)
			}
		})
	}
}

func TestQueueItemDue(t *testing.T) {
	now := time.Now()

	item := &QueueItem{NextAttemptAt: now}
	if !item.Due(now) {
		t.Error("item with NextAttemptAt == now should be due")
	}

	item.NextAttemptAt = now.Add(time.Minute)
	if item.Due(now) {
		t.Error("item with NextAttemptAt in the future should not be due")
	}

	item.NextAttemptAt = now.Add(-time.Minute)
	if !item.Due(now) {
		t.Error("item with NextAttemptAt in the past should be due")
	}
}

func TestQueueItemMarkAttempt(t *testing.T) {
	item := &QueueItem{}
	if item.LastAttemptAt != nil {
		t.Fatal("fresh item should have no last attempt")
	}

	now := time.Now()
	item.MarkAttempt(now)
	if item.Attempts != 1 {
		t.Errorf("Attempts = %d, expected 1", item.Attempts)
	}
	if item.LastAttemptAt == nil || !item.LastAttemptAt.Equal(now) {
		t.Errorf("LastAttemptAt = %v, expected %v", item.LastAttemptAt, now)
	}

	item.MarkAttempt(now.Add(time.Minute))
	if item.Attempts != 2 {
		t.Errorf("Attempts = %d, expected 2", item.Attempts)
	}
}
