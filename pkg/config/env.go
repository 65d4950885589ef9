package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// applyEnv overrides config fields from environment variables.
// A present but malformed value is an error.
func (c *Config) applyEnv(lookup LookupFunc) error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"TH_LONG", &c.Trend.THLong},
		{"TH_SHORT", &c.Trend.THShort},
		{"MIN_SLOPE_FIRE", &c.Trend.MinSlopeFire},
		{"MIN_SLOPE_BOLT", &c.Trend.MinSlopeBolt},
		{"VOL_BOOST_FIRE", &c.Trend.VolBoostFire},
		{"VOL_WEAK_MOON", &c.Trend.VolWeakMoon},
		{"W_STRONG", &c.Scoring.WStrong},
		{"W_NEWS", &c.Scoring.WNews},
	}
	for _, f := range floats {
		v, ok := lookup(f.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", f.key, v, err)
		}
		*f.dst = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"REPORT_CACHE_TTL", &c.Reports.CacheTTL},
		{"SENTIMENT_CACHE_TTL", &c.Sentiment.CacheTTL},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		dur, err := parseDurationOrSeconds(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s=%q: %w", d.key, v, err)
		}
		*d.dst = dur
	}

	if v, ok := lookup("SYMBOLS"); ok && strings.TrimSpace(v) != "" {
		c.Market.Symbols = SplitSymbols(v)
	}
	if v, ok := lookup("EQUITY_SYMBOLS"); ok && strings.TrimSpace(v) != "" {
		c.Market.Equities.Symbols = SplitSymbols(v)
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"LINE_CHANNEL_ACCESS_TOKEN", &c.Push.Line.Token},
		{"LINE_CHANNEL_SECRET", &c.Push.Line.Secret},
		{"LINE_PUSH_TO", &c.Push.Line.To},
		{"ADMIN_TOKEN", &c.Admin.Token},
		{"STATE_PATH", &c.State.Path},
		{"TZ_NAME", &c.Timezone},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && strings.TrimSpace(v) != "" {
			*s.dst = strings.TrimSpace(v)
		}
	}
	return nil
}

// parseDurationOrSeconds accepts "15m" style durations or a bare number of seconds.
func parseDurationOrSeconds(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("must be positive")
		}
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// SplitSymbols parses a comma separated list into trimmed, uppercase, de-duplicated symbols.
func SplitSymbols(v string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range strings.Split(v, ",") {
		s := strings.ToUpper(strings.TrimSpace(p))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
