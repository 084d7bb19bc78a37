package http

import (
	"strings"
)

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// pathValue reads a route wildcard, sanitized.
type pathReader interface{ PathValue(string) string }

func pathValue(r pathReader, name string) string {
	return sanitizeInput(r.PathValue(name))
}
