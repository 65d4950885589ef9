package scoring

import (
	"sort"

	"Sentinel/internal/domain/models"
)

// Weights blend strength with the 0..100 news score.
type Weights struct {
	Strong float64
	News   float64
}

// Ranked is one scored instrument ready for a list.
type Ranked struct {
	models.StrengthScore
	NewsScore int                         `json:"news_score"`
	HasNews   bool                        `json:"has_news"`
	Composite float64                     `json:"composite"`
	ShortBias bool                        `json:"short_bias,omitempty"`
	Trend     *models.TrendClassification `json:"trend,omitempty"`
}

// Blend computes the composite score. Symbols without news use strength alone
// so that a missing feed does not drag them down.
func Blend(s models.StrengthScore, news int, hasNews bool, w Weights) float64 {
	if !hasNews {
		return s.Strength
	}
	total := w.Strong + w.News
	if total <= 0 {
		return s.Strength
	}
	return (w.Strong*s.Strength + w.News*float64(news)) / total
}

// Rank scores every item and sorts by composite, highest first; ties break by symbol.
func Rank(scores []models.StrengthScore, news map[string]int, w Weights) []Ranked {
	out := make([]Ranked, 0, len(scores))
	for _, s := range scores {
		n, ok := news[s.Symbol]
		out = append(out, Ranked{
			StrengthScore: s,
			NewsScore:     n,
			HasNews:       ok,
			Composite:     Blend(s, n, ok, w),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Composite != out[j].Composite {
			return out[i].Composite > out[j].Composite
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Top returns the first n strong entries.
func Top(ranked []Ranked, n int) []Ranked {
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// Bottom returns the n weakest entries, weakest first, marking those whose
// strength is at or below shortLine as short bias.
func Bottom(ranked []Ranked, n int, shortLine float64) []Ranked {
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]Ranked, 0, n)
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		r := ranked[i]
		r.ShortBias = r.Strength <= shortLine
		out = append(out, r)
	}
	return out
}
