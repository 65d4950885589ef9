package trend

import (
	"math"
	"time"
)

// Slope is the least-squares slope of vals over ts, in units per hour.
// Fewer than two points, or all points at one instant, give 0.
func Slope(ts []time.Time, vals []float64) float64 {
	n := len(vals)
	if n < 2 || len(ts) != n {
		return 0
	}
	var sx, sy, sxx, sxy float64
	for i := range vals {
		x := ts[i].Sub(ts[0]).Hours()
		y := vals[i]
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	fn := float64(n)
	den := fn*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return (fn*sxy - sx*sy) / den
}

// EMADelta is the last value minus the exponential moving average of vals.
func EMADelta(vals []float64, alpha float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	ema := vals[0]
	for _, v := range vals[1:] {
		ema = alpha*v + (1-alpha)*ema
	}
	return vals[len(vals)-1] - ema
}

// VolumeRatio is the mean of the last short volumes over the mean of all.
// A non-positive overall mean gives 1.
func VolumeRatio(vols []float64, short int) float64 {
	if len(vols) == 0 {
		return 1
	}
	if short <= 0 || short > len(vols) {
		short = len(vols)
	}
	all := mean(vols)
	if all <= 0 {
		return 1
	}
	return mean(vols[len(vols)-short:]) / all
}

// ProxyStrengths maps a price path onto 0..100 when no strength history exists:
// the net move (capped at ±10%) sets the start around 50, then each step adds
// 1.5 points per percent moved.
func ProxyStrengths(prices []float64) []float64 {
	if len(prices) == 0 {
		return nil
	}
	p0, pn := prices[0], prices[len(prices)-1]
	pct := 0.0
	if p0 > 0 {
		pct = (pn - p0) / p0 * 100
	}
	out := make([]float64, len(prices))
	out[0] = 50 + math.Max(-10, math.Min(10, pct))*2.5
	for i := 1; i < len(prices); i++ {
		d := 0.0
		if prices[i-1] > 0 {
			d = (prices[i] - prices[i-1]) / prices[i-1] * 100
		}
		out[i] = math.Max(0, math.Min(100, out[i-1]+d*1.5))
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func tail[T any](xs []T, n int) []T {
	if n <= 0 || n >= len(xs) {
		return xs
	}
	return xs[len(xs)-n:]
}
