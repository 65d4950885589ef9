package models

import "time"

// Headline is a news item as supplied by a headline source.
type Headline struct {
	Title           string    `json:"title"`
	TitleTranslated string    `json:"title_translated,omitempty"`
	Link            string    `json:"link"`
	Source          string    `json:"source,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
	// SourceWeight scales polarity; 0 means unknown and is treated as 1.
	SourceWeight float64 `json:"source_weight,omitempty"`
}

// ScoredHeadline is a retained headline with its polarity and recency weight.
type ScoredHeadline struct {
	Headline
	Raw    float64 `json:"raw"`
	Weight float64 `json:"weight"`
}

// Impact orders headlines for retention.
func (h ScoredHeadline) Impact() float64 {
	r := h.Raw
	if r < 0 {
		r = -r
	}
	return r * h.Weight
}

// SentimentCacheEntry is the cached 0..100 sentiment of one symbol.
// NoData marks the neutral-empty outcome where no headline could be fetched.
type SentimentCacheEntry struct {
	Symbol     string           `json:"symbol"`
	Score      int              `json:"score"`
	Items      []ScoredHeadline `json:"items"`
	ComputedAt time.Time        `json:"computed_at"`
	NoData     bool             `json:"no_data,omitempty"`
}
