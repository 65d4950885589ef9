package models

import (
	"fmt"
	"time"
)

// ReportCacheEntry is fresh while now-ComputedAt <= TTLSeconds and usable as
// a stale fallback forever after.
type ReportCacheEntry struct {
	Key        string    `json:"key"`
	Text       string    `json:"text"`
	ComputedAt time.Time `json:"computed_at"`
	TTLSeconds int64     `json:"ttl_seconds"`
}

func (e ReportCacheEntry) Age(now time.Time) time.Duration {
	if d := now.Sub(e.ComputedAt); d > 0 {
		return d
	}
	return 0
}

func (e ReportCacheEntry) Fresh(now time.Time) bool {
	return e.Age(now) <= time.Duration(e.TTLSeconds)*time.Second
}

type ReportSource int

const (
	SourceFresh ReportSource = iota
	SourceRecentCache
	SourceStaleCache
)

func (s ReportSource) String() string {
	switch s {
	case SourceRecentCache:
		return "recent_cache"
	case SourceStaleCache:
		return "stale_cache"
	default:
		return "fresh"
	}
}

// Report is the result of a cached report request.
type Report struct {
	Key    string        `json:"key"`
	Text   string        `json:"text"`
	Source ReportSource  `json:"source"`
	Age    time.Duration `json:"age"`
}

// Annotation describes degraded results; empty for fresh ones.
func (r Report) Annotation() string {
	secs := int64(r.Age / time.Second)
	switch r.Source {
	case SourceRecentCache:
		return fmt.Sprintf("using recent cache (age %ds)", secs)
	case SourceStaleCache:
		return fmt.Sprintf("falling back to expired cache (age %ds, stale)", secs)
	default:
		return ""
	}
}

// Annotated returns the text with the degradation note appended.
func (r Report) Annotated() string {
	if a := r.Annotation(); a != "" {
		return r.Text + "\n(" + a + ")"
	}
	return r.Text
}
