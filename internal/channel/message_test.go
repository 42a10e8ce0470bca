package channel

import (
	"strings"
	"testing"
	"time"

	"github.com/grassigrosso/lead-relay/internal/models"
)

func TestEscapeMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain text", "hello world", "hello world"},
		{"asterisks", "a*b*c", `a\*b\*c`},
		{"underscores", "snake_case_name", `snake\_case\_name`},
		{"brackets and parens", "[link](url)", `\[link\]\(url\)`},
		{"assorted", "a-b=c|d{e}", `a\-b\=c\|d\{e\}`},
		{"backtick and tilde", "`code~", "\\`code\\~"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EscapeMarkdown(tc.input); got != tc.expected {
				t.Errorf("EscapeMarkdown(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestBuildTelegramMessage(t *testing.T) {
	lead := models.Lead{
		Name:    "Jane_Doe",
		Phone:   "+7 900",
		Comment: "hello",
		Email:   "jane@example.com",
		City:    "Milan",
		Company: "Acme",
		Page:    "/contacts",
	}

	msg := BuildTelegramMessage(lead)

	for _, want := range []string{
		"*New website lead*",
		"*Page:* /contacts",
		`*Name:* Jane\_Doe`,
		"*Company:* Acme",
		"*City:* Milan",
		"*Email:* jane@example.com",
		"*Phone:*",
		"*Message:* hello",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestBuildTelegramMessageOmitsEmptyOptionals(t *testing.T) {
	msg := BuildTelegramMessage(models.Lead{Name: "Jane", Phone: "1", Page: models.PageUnspecified})

	if strings.Contains(msg, "Company") || strings.Contains(msg, "City") || strings.Contains(msg, "Email") {
		t.Errorf("empty optional fields should be omitted:\n%s", msg)
	}
	if !strings.Contains(msg, "*Message:* none") {
		t.Errorf("empty comment should render as none:\n%s", msg)
	}
}

func TestBuildEmailSubject(t *testing.T) {
	if got := BuildEmailSubject(models.Lead{Page: "/pricing"}); got != "[Grassi Grosso] New lead (/pricing)" {
		t.Errorf("BuildEmailSubject = %q", got)
	}
	if got := BuildEmailSubject(models.Lead{}); got != "[Grassi Grosso] New lead (website)" {
		t.Errorf("BuildEmailSubject with empty page = %q", got)
	}
}

func TestBuildEmailText(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	text := BuildEmailText(models.Lead{Name: "Jane", Phone: "123", Page: "/contacts"}, now)

	for _, want := range []string{
		"Page: /contacts",
		"Name: Jane",
		"Phone: 123",
		"Company: not specified",
		"Message: none",
		"Time: 2025-06-01T12:00:00Z",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text body missing %q:\n%s", want, text)
		}
	}
}

func TestBuildEmailHTMLEscapes(t *testing.T) {
	now := time.Now()
	html := BuildEmailHTML(models.Lead{
		Name:    `<script>alert("x")</script>`,
		Phone:   "123",
		Comment: "a & b",
	}, now)

	if strings.Contains(html, "<script>") {
		t.Error("HTML body must escape markup in lead fields")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("escaped markup should be present")
	}
	if !strings.Contains(html, "a &amp; b") {
		t.Error("ampersands should be escaped")
	}
}
