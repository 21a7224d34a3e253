package util

import "strings"

// NormalizeTicker trims surrounding whitespace and uppercases a symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
