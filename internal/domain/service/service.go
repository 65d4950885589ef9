package service

import (
	"context"
	"time"

	"Sentinel/internal/domain/models"
)

// TrendClassifier derives a phase from a symbol's recent history.
type TrendClassifier interface {
	Classify(symbol string, samples []models.Sample) models.TrendClassification
}

// SentimentProvider returns a cached or freshly computed sentiment entry.
// A total data outage is a NoData entry, not an error.
type SentimentProvider interface {
	Score(ctx context.Context, symbol string) (models.SentimentCacheEntry, error)
	Recent(ctx context.Context, symbol string, k int) ([]models.ScoredHeadline, error)
}

// ReportCache wraps a failing report computation with retry and cached fallback.
type ReportCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (string, error)) (models.Report, error)
}
