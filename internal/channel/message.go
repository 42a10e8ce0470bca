package channel

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/grassigrosso/lead-relay/internal/models"
)

// markdownEscaper escapes characters that carry formatting meaning in
// Telegram's Markdown parse mode
var markdownEscaper = strings.NewReplacer(
	"*", "\\*",
	"_", "\\_",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
)

// EscapeMarkdown escapes a value for inclusion in a Telegram Markdown
// message
func EscapeMarkdown(text string) string {
	if text == "" {
		return ""
	}
	return markdownEscaper.Replace(text)
}

// orPlaceholder substitutes a placeholder for empty optional values
func orPlaceholder(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}

// BuildTelegramMessage renders the lead as a Markdown bot message
func BuildTelegramMessage(lead models.Lead) string {
	var b strings.Builder
	b.WriteString("🚀 *New website lead*\n\n")
	fmt.Fprintf(&b, "📄 *Page:* %s\n", orPlaceholder(EscapeMarkdown(lead.Page), "not specified"))
	fmt.Fprintf(&b, "👤 *Name:* %s\n", orPlaceholder(EscapeMarkdown(lead.Name), "not specified"))
	if lead.Company != "" {
		fmt.Fprintf(&b, "🏢 *Company:* %s\n", EscapeMarkdown(lead.Company))
	}
	if lead.City != "" {
		fmt.Fprintf(&b, "📍 *City:* %s\n", EscapeMarkdown(lead.City))
	}
	if lead.Email != "" {
		fmt.Fprintf(&b, "📧 *Email:* %s\n", EscapeMarkdown(lead.Email))
	}
	fmt.Fprintf(&b, "📞 *Phone:* %s\n", orPlaceholder(EscapeMarkdown(lead.Phone), "not specified"))
	fmt.Fprintf(&b, "💬 *Message:* %s", orPlaceholder(EscapeMarkdown(lead.Comment), "none"))
	return b.String()
}

// BuildEmailSubject renders the email subject line
func BuildEmailSubject(lead models.Lead) string {
	return fmt.Sprintf("[Grassi Grosso] New lead (%s)", orPlaceholder(lead.Page, "website"))
}

// BuildEmailText renders the plain-text email body
func BuildEmailText(lead models.Lead, now time.Time) string {
	lines := []string{
		"New lead from the Grassi Grosso website",
		"",
		"Page: " + orPlaceholder(lead.Page, "not specified"),
		"Name: " + orPlaceholder(lead.Name, "not specified"),
		"Company: " + orPlaceholder(lead.Company, "not specified"),
		"City: " + orPlaceholder(lead.City, "not specified"),
		"Email: " + orPlaceholder(lead.Email, "not specified"),
		"Phone: " + orPlaceholder(lead.Phone, "not specified"),
		"Message: " + orPlaceholder(lead.Comment, "none"),
		"",
		"Time: " + now.UTC().Format(time.RFC3339),
	}
	return strings.Join(lines, "\n")
}

// BuildEmailHTML renders the HTML email body
func BuildEmailHTML(lead models.Lead, now time.Time) string {
	row := func(label, value, placeholder string) string {
		return fmt.Sprintf(
			`<tr><td style="padding: 6px 0; font-weight: bold;">%s</td><td style="padding: 6px 0;">%s</td></tr>`,
			label, html.EscapeString(orPlaceholder(value, placeholder)))
	}

	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; color: #1e1e1e; line-height: 1.45;">`)
	b.WriteString(`<h2 style="margin: 0 0 16px;">New lead from the Grassi Grosso website</h2>`)
	b.WriteString(`<table style="border-collapse: collapse; width: 100%; max-width: 760px;">`)
	b.WriteString(row("Page:", lead.Page, "not specified"))
	b.WriteString(row("Name:", lead.Name, "not specified"))
	b.WriteString(row("Company:", lead.Company, "not specified"))
	b.WriteString(row("City:", lead.City, "not specified"))
	b.WriteString(row("Email:", lead.Email, "not specified"))
	b.WriteString(row("Phone:", lead.Phone, "not specified"))
	b.WriteString(row("Message:", lead.Comment, "none"))
	b.WriteString(`</table>`)
	fmt.Fprintf(&b, `<p style="margin-top: 16px; color: #666;">Time: %s</p>`, now.UTC().Format(time.RFC3339))
	b.WriteString(`</div>`)
	return b.String()
}
