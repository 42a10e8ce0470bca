package origin

import (
	"reflect"
	"testing"
)

func TestParseList(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"empty", "", []string{}},
		{"single origin", "https://example.com", []string{"https://example.com"}},
		{
			"comma separated",
			"https://a.com,https://b.com",
			[]string{"https://a.com", "https://b.com"},
		},
		{
			"newline separated",
			"https://a.com\nhttps://b.com",
			[]string{"https://a.com", "https://b.com"},
		},
		{
			"mixed separators with whitespace",
			" https://a.com ,\n https://b.com \n",
			[]string{"https://a.com", "https://b.com"},
		},
		{
			"duplicates removed",
			"https://a.com,https://a.com,https://b.com",
			[]string{"https://a.com", "https://b.com"},
		},
		{"only separators", ",,\n,", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseList(tc.raw)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("ParseList(%q) = %v, expected %v", tc.raw, got, tc.expected)
			}
		})
	}
}

func TestCheckerAllowed(t *testing.T) {
	checker := NewChecker("https://example.com, https://www.example.com")

	testCases := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"absent origin always allowed", "", true},
		{"listed origin allowed", "https://example.com", true},
		{"second listed origin allowed", "https://www.example.com", true},
		{"unlisted origin denied", "https://evil.example", false},
		{"no pattern matching on scheme", "http://example.com", false},
		{"no substring matching", "https://example.com.evil.example", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := checker.Allowed(tc.origin); got != tc.allowed {
				t.Errorf("Allowed(%q) = %v, expected %v", tc.origin, got, tc.allowed)
			}
		})
	}
}

func TestCheckerEmptyList(t *testing.T) {
	checker := NewChecker("")

	if !checker.Allowed("") {
		t.Error("absent origin should be allowed even with an empty list")
	}
	if checker.Allowed("https://example.com") {
		t.Error("any declared origin should be denied with an empty list")
	}
}
