package scoring

import (
	"math"
	"sort"

	"Sentinel/internal/domain/models"
)

const (
	weightChange = 0.6
	weightVolume = 0.4
)

// Normalize converts one snapshot batch into batch-relative strength scores.
// Output order follows input order. An empty batch yields an empty result.
func Normalize(batch []models.InstrumentSnapshot) []models.StrengthScore {
	if len(batch) == 0 {
		return []models.StrengthScore{}
	}

	changes := make([]float64, len(batch))
	logVols := make([]float64, len(batch))
	vols := make([]float64, len(batch))
	for i, s := range batch {
		changes[i] = finite(s.PctChange24h)
		v := math.Max(0, finite(s.Volume))
		vols[i] = v
		logVols[i] = math.Log1p(v)
	}

	normChange := MinMax(changes)
	normVolume := MinMax(logVols)
	pct := VolumePercentiles(vols)

	out := make([]models.StrengthScore, len(batch))
	for i, s := range batch {
		strength := 100 * (weightChange*normChange[i] + weightVolume*normVolume[i])
		out[i] = models.StrengthScore{
			Symbol:           s.Symbol,
			Strength:         clamp(strength, 0, 100),
			VolumePercentile: pct[i],
			PctChange24h:     s.PctChange24h,
			Price:            s.Price,
		}
	}
	return out
}

// MinMax scales xs into [0,1]; a degenerate range maps every value to 0.5.
func MinMax(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	span := hi - lo
	for i, x := range xs {
		if span == 0 {
			out[i] = 0.5
			continue
		}
		out[i] = (x - lo) / span
	}
	return out
}

// VolumePercentiles returns, for each volume, the share of the batch at or below it.
func VolumePercentiles(vols []float64) []float64 {
	out := make([]float64, len(vols))
	if len(vols) == 0 {
		return out
	}
	sorted := append([]float64(nil), vols...)
	sort.Float64s(sorted)
	n := float64(len(sorted))
	for i, v := range vols {
		out[i] = float64(sort.Search(len(sorted), func(j int) bool { return sorted[j] > v })) / n
	}
	return out
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
