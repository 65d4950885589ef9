package models

type Phase string

const (
	PhaseIdle Phase = "IDLE"
	PhaseBolt Phase = "BOLT"
	PhaseFire Phase = "FIRE"
	PhaseMoon Phase = "MOON"
)

func (p Phase) Icon() string {
	switch p {
	case PhaseFire:
		return "🔥"
	case PhaseBolt:
		return "⚡"
	case PhaseMoon:
		return "🌙"
	default:
		return "💤"
	}
}

func (p Phase) Note() string {
	switch p {
	case PhaseFire:
		return "breakout confirmed, long bias, consider extending watch"
	case PhaseBolt:
		return "momentum building, not yet confirmed"
	case PhaseMoon:
		return "topping or divergence, take profit, do not chase"
	default:
		return "neutral"
	}
}

// TrendClassification is recomputed every cycle and never persisted.
type TrendClassification struct {
	Symbol       string   `json:"symbol"`
	Phase        Phase    `json:"phase"`
	Icon         string   `json:"icon"`
	Note         string   `json:"note"`
	Reasons      []string `json:"reasons"`
	Strength     float64  `json:"strength"`
	Slope        float64  `json:"slope"`
	EMADelta     float64  `json:"ema_delta"`
	VolumeRatio  float64  `json:"volume_ratio"`
	Insufficient bool     `json:"insufficient,omitempty"`
}
