// Package origin implements the cross-origin allow-list used by the
// submission endpoint. Requests without an Origin header (curl,
// server-to-server, same-origin navigation) are always allowed; a
// non-empty origin must match the configured allow-list exactly.
package origin

import "strings"

// Checker decides whether a declared request origin is allowed
type Checker struct {
	allowed map[string]struct{}
}

// ParseList splits a raw allow-list on commas and newlines, trims each
// entry, and drops empties and duplicates
func ParseList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	seen := make(map[string]struct{}, len(fields))
	list := make([]string, 0, len(fields))
	for _, field := range fields {
		value := strings.TrimSpace(field)
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		list = append(list, value)
	}
	return list
}

// NewChecker creates a Checker from a raw comma/newline separated
// allow-list
func NewChecker(raw string) *Checker {
	allowed := make(map[string]struct{})
	for _, o := range ParseList(raw) {
		allowed[o] = struct{}{}
	}
	return &Checker{allowed: allowed}
}

// Allowed reports whether the declared origin may use the API.
// An absent origin is always allowed. No wildcard or pattern matching.
func (c *Checker) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	_, ok := c.allowed[origin]
	return ok
}
