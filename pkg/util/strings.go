package util

import (
	"regexp"
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// NormalizeSymbol trims and uppercases a ticker symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_.\-]{0,14}$`)

// ValidSymbol reports whether s, already normalized, looks like a ticker.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}
