package sentiment

import (
	"math"
	"sort"
	"strings"
	"time"

	"Sentinel/internal/domain/models"
)

// Params controls aggregation.
type Params struct {
	Window   time.Duration // headlines older than this contribute zero
	Clamp    float64       // raw total is clamped to [-Clamp, Clamp]
	MaxItems int           // retained headlines
}

func DefaultParams() Params {
	return Params{Window: 24 * time.Hour, Clamp: 10, MaxItems: 20}
}

// RecencyWeight decays linearly from 1 at age 0 to 0 at the window edge.
// Future timestamps count as age 0; a zero timestamp is outside the window.
func RecencyWeight(published, now time.Time, window time.Duration) float64 {
	if published.IsZero() || window <= 0 {
		return 0
	}
	age := now.Sub(published)
	if age < 0 {
		age = 0
	}
	return math.Max(0, 1-float64(age)/float64(window))
}

// Rescale maps a raw total in [-k, k] onto 0..100. Halves round up.
func Rescale(raw, k float64) int {
	raw = math.Max(-k, math.Min(k, raw))
	// multiply before dividing so 57.5 does not land on 57.4999...
	return int(math.Round((raw + k) * 50 / k))
}

// Aggregate scores headlines at now. Duplicate links or titles are scored once.
// It returns the 0..100 score, the raw clamped total and the retained items
// ordered by impact.
func Aggregate(headlines []models.Headline, now time.Time, p Params) (int, float64, []models.ScoredHeadline) {
	seen := make(map[string]bool, len(headlines))
	total := 0.0
	scored := make([]models.ScoredHeadline, 0, len(headlines))

	for _, h := range headlines {
		key := dedupKey(h)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		w := RecencyWeight(h.PublishedAt, now, p.Window)
		trust := h.SourceWeight
		if trust <= 0 {
			trust = 1
		}
		raw := float64(Polarity(h.Title, h.TitleTranslated)) * trust
		total += raw * w
		if w > 0 {
			scored = append(scored, models.ScoredHeadline{Headline: h, Raw: raw, Weight: w})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i].Impact(), scored[j].Impact()
		if a != b {
			return a > b
		}
		return scored[i].PublishedAt.After(scored[j].PublishedAt)
	})
	if p.MaxItems > 0 && len(scored) > p.MaxItems {
		scored = scored[:p.MaxItems]
	}

	clamped := math.Max(-p.Clamp, math.Min(p.Clamp, total))
	return Rescale(clamped, p.Clamp), clamped, scored
}

func dedupKey(h models.Headline) string {
	if h.Link != "" {
		return h.Link
	}
	return strings.ToLower(strings.TrimSpace(h.Title))
}
