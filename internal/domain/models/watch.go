package models

import "time"

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// WatchTask is unique per symbol. LastAlertAt is zero until the first reminder.
type WatchTask struct {
	Symbol      string    `json:"symbol"`
	Side        Side      `json:"side"`
	Until       time.Time `json:"until"`
	LastAlertAt time.Time `json:"last_alert_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Remaining is until-now, floored at zero.
func (w WatchTask) Remaining(now time.Time) time.Duration {
	if d := w.Until.Sub(now); d > 0 {
		return d
	}
	return 0
}

type WatchEventKind string

const (
	WatchReminder WatchEventKind = "reminder"
	WatchExpired  WatchEventKind = "expired"
)

// WatchEvent is emitted by a sweep.
type WatchEvent struct {
	Kind      WatchEventKind `json:"kind"`
	Task      WatchTask      `json:"task"`
	Remaining time.Duration  `json:"remaining"`
}

// WatchResult reports what Watch did.
type WatchResult struct {
	Task     WatchTask `json:"task"`
	Extended bool      `json:"extended"`
}

type StopOutcome int

const (
	StopStopped StopOutcome = iota
	StopNothingToStop
)

func (o StopOutcome) String() string {
	if o == StopNothingToStop {
		return "nothing to stop"
	}
	return "stopped"
}

// WatchSummary is one consistent read of all active watches.
type WatchSummary struct {
	At    time.Time   `json:"at"`
	Tasks []WatchTask `json:"tasks"`
}
