package http

import "strings"

// sanitizeInput removes control characters other than tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}

// knownCategory reports whether c is in the catalogue. An empty catalogue
// accepts everything.
func knownCategory(catalogue []string, c string) bool {
	if len(catalogue) == 0 {
		return true
	}
	for _, known := range catalogue {
		if known == c {
			return true
		}
	}
	return false
}

