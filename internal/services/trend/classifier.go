package trend

import (
	"fmt"
	"time"

	"Sentinel/internal/domain/models"
)

// Signals are the derived inputs of one classification.
type Signals struct {
	Strength    float64
	Slope       float64
	EMADelta    float64
	VolumeRatio float64
}

// Classifier evaluates the FIRE, BOLT, MOON, IDLE cascade fresh on every call.
type Classifier struct {
	th Thresholds
}

// NewClassifier fails on invalid thresholds so misconfiguration stops startup.
func NewClassifier(th Thresholds) (*Classifier, error) {
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("trend thresholds: %w", err)
	}
	return &Classifier{th: th}, nil
}

func (c *Classifier) Thresholds() Thresholds { return c.th }

// Classify derives signals from samples (oldest first) and picks a phase.
// Fewer than MinSamples samples is IDLE with an insufficient-data reason.
func (c *Classifier) Classify(symbol string, samples []models.Sample) models.TrendClassification {
	if len(samples) < c.th.MinSamples {
		return models.TrendClassification{
			Symbol:       symbol,
			Phase:        models.PhaseIdle,
			Icon:         models.PhaseIdle.Icon(),
			Note:         "insufficient data, stay neutral",
			Reasons:      []string{fmt.Sprintf("insufficient data: %d samples < %d", len(samples), c.th.MinSamples)},
			Insufficient: true,
		}
	}

	var reasons []string
	strengths := make([]float64, len(samples))
	ts := make([]time.Time, len(samples))
	vols := make([]float64, len(samples))
	proxy := false
	for i, s := range samples {
		strengths[i] = s.Strength
		ts[i] = s.Ts
		vols[i] = s.Volume
		if !s.HasStrength {
			proxy = true
		}
	}
	if proxy {
		prices := make([]float64, len(samples))
		for i, s := range samples {
			prices[i] = s.Price
		}
		strengths = ProxyStrengths(prices)
		reasons = append(reasons, "strength_proxy=price_momentum")
	}

	sig := Signals{
		Strength:    strengths[len(strengths)-1],
		Slope:       Slope(tail(ts, c.th.SlopeWindow), tail(strengths, c.th.SlopeWindow)),
		EMADelta:    EMADelta(tail(strengths, c.th.EMAWindow), c.th.EMAAlpha),
		VolumeRatio: VolumeRatio(vols, c.th.VolShortWindow),
	}
	reasons = append(reasons,
		fmt.Sprintf("now=%.1f", sig.Strength),
		fmt.Sprintf("slope/h=%.2f", sig.Slope),
		fmt.Sprintf("emaΔ=%.2f", sig.EMADelta),
		fmt.Sprintf("vol_ratio=%.2f", sig.VolumeRatio),
	)

	out := c.FromSignals(symbol, sig)
	out.Reasons = append(reasons, out.Reasons...)
	return out
}

// FromSignals classifies already-derived signals.
func (c *Classifier) FromSignals(symbol string, sig Signals) models.TrendClassification {
	phase, why := c.Decide(sig)
	return models.TrendClassification{
		Symbol:      symbol,
		Phase:       phase,
		Icon:        phase.Icon(),
		Note:        phase.Note(),
		Reasons:     []string{why},
		Strength:    sig.Strength,
		Slope:       sig.Slope,
		EMADelta:    sig.EMADelta,
		VolumeRatio: sig.VolumeRatio,
	}
}

// Decide applies the cascade; the first matching phase wins.
func (c *Classifier) Decide(sig Signals) (models.Phase, string) {
	t := c.th
	s, slope, vr := sig.Strength, sig.Slope, sig.VolumeRatio

	if s >= t.THLong && slope >= t.MinSlopeFire && vr >= t.VolBoostFire {
		return models.PhaseFire, "strength, slope and volume all above fire thresholds"
	}
	if s >= t.THLong-t.BoltBand && s < t.THLong && slope >= t.MinSlopeBolt && vr >= 1.0 {
		return models.PhaseBolt, "approaching long threshold with rising slope"
	}
	if s >= t.THLong && slope >= t.MinSlopeBolt && slope < t.MinSlopeFire {
		return models.PhaseBolt, "above long threshold, slope not yet at fire level"
	}
	if s >= t.THLong-t.MoonBand && (slope <= t.MoonSlope || vr <= t.VolWeakMoon) {
		return models.PhaseMoon, "near the top with falling slope or weakening volume"
	}
	return models.PhaseIdle, "no actionable bias"
}
