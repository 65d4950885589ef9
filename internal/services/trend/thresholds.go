package trend

import "fmt"

// Thresholds tune the phase cascade. Zero values are invalid; use DefaultThresholds.
type Thresholds struct {
	THLong       float64
	THShort      float64
	MinSlopeFire float64 // strength points per hour
	MinSlopeBolt float64
	VolBoostFire float64
	VolWeakMoon  float64
	BoltBand     float64 // BOLT zone below THLong
	MoonBand     float64 // MOON zone below THLong
	MoonSlope    float64 // slope at or below this is a MOON divergence

	MinSamples     int
	SlopeWindow    int
	EMAWindow      int
	EMAAlpha       float64
	VolShortWindow int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		THLong:         70,
		THShort:        65,
		MinSlopeFire:   5,
		MinSlopeBolt:   2,
		VolBoostFire:   1.05,
		VolWeakMoon:    0.95,
		BoltBand:       5,
		MoonBand:       8,
		MoonSlope:      -3,
		MinSamples:     3,
		SlopeWindow:    12,
		EMAWindow:      6,
		EMAAlpha:       0.6,
		VolShortWindow: 3,
	}
}

// Validate rejects combinations that would make the cascade meaningless.
func (t Thresholds) Validate() error {
	switch {
	case t.THLong <= 0 || t.THLong > 100:
		return fmt.Errorf("TH_LONG must be in (0,100], got %v", t.THLong)
	case t.THShort <= 0 || t.THShort > 100:
		return fmt.Errorf("TH_SHORT must be in (0,100], got %v", t.THShort)
	case t.MinSlopeBolt <= 0 || t.MinSlopeFire < t.MinSlopeBolt:
		return fmt.Errorf("need 0 < MIN_SLOPE_BOLT <= MIN_SLOPE_FIRE, got %v and %v", t.MinSlopeBolt, t.MinSlopeFire)
	case t.VolWeakMoon <= 0 || t.VolBoostFire < t.VolWeakMoon:
		return fmt.Errorf("need 0 < VOL_WEAK_MOON <= VOL_BOOST_FIRE, got %v and %v", t.VolWeakMoon, t.VolBoostFire)
	case t.BoltBand < 0 || t.MoonBand < 0:
		return fmt.Errorf("bands must be non-negative")
	case t.MoonSlope >= 0:
		return fmt.Errorf("moon slope must be negative, got %v", t.MoonSlope)
	case t.MinSamples < 3:
		return fmt.Errorf("min samples must be at least 3, got %d", t.MinSamples)
	case t.SlopeWindow < 2 || t.EMAWindow < 1 || t.VolShortWindow < 1:
		return fmt.Errorf("invalid window sizes")
	case t.EMAAlpha <= 0 || t.EMAAlpha > 1:
		return fmt.Errorf("ema alpha must be in (0,1], got %v", t.EMAAlpha)
	}
	return nil
}
