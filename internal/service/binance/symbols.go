package binance

import (
	"strconv"
	"strings"
)

func pairIndex(symbols []string, quote string) map[string]string {
	quote = strings.ToUpper(quote)
	m := make(map[string]string, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		m[s+quote] = s
	}
	return m
}

// parseFloat reads an upstream numeric string; anything unparsable is 0.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
