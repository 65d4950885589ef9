package models

import "time"

// InstrumentSnapshot is one instrument's reading from a single poll.
// Missing upstream fields are carried as 0.
type InstrumentSnapshot struct {
	Symbol       string  `json:"symbol"`
	Price        float64 `json:"price"`
	PctChange24h float64 `json:"pct_change_24h"`
	Volume       float64 `json:"volume"`
}

// StrengthScore is a batch-relative 0..100 momentum and liquidity score.
type StrengthScore struct {
	Symbol           string  `json:"symbol"`
	Strength         float64 `json:"strength"`
	VolumePercentile float64 `json:"volume_percentile"`
	PctChange24h     float64 `json:"pct_change_24h"`
	Price            float64 `json:"price"`
}

// Sample is one point of a symbol's strength history.
type Sample struct {
	Ts          time.Time `json:"ts"`
	Price       float64   `json:"price"`
	Volume      float64   `json:"volume"`
	Strength    float64   `json:"strength"`
	HasStrength bool      `json:"has_strength"`
}

// Batch is one consistent set of snapshots taken at At.
type Batch struct {
	At        time.Time            `json:"at"`
	Snapshots []InstrumentSnapshot `json:"snapshots"`
}
