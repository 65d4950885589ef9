package models

import "time"

const StateVersion = 1

type Scheme string

const (
	// SchemeTW shows gains in red, losses in green.
	SchemeTW Scheme = "tw"
	// SchemeUS shows gains in green, losses in red.
	SchemeUS Scheme = "us"
)

// UpMark is the colour mark for the positive side.
func (s Scheme) UpMark() string {
	if s == SchemeUS {
		return "🟢"
	}
	return "🔴"
}

func (s Scheme) DownMark() string {
	if s == SchemeUS {
		return "🔴"
	}
	return "🟢"
}

type Prefs struct {
	Scheme       Scheme `json:"scheme"`
	EnableCrypto bool   `json:"enable_crypto"`
	EnableEquity bool   `json:"enable_equity"`
	ShowPrice    bool   `json:"show_price"`
}

func DefaultPrefs() Prefs {
	return Prefs{Scheme: SchemeTW, EnableCrypto: true, EnableEquity: true}
}

// State is the whole persisted document, replaced atomically on every write.
type State struct {
	Version   int                            `json:"version"`
	Prefs     Prefs                          `json:"prefs"`
	Watches   map[string]WatchTask           `json:"watches"`
	Sentiment map[string]SentimentCacheEntry `json:"sentiment"`
	Reports   map[string]ReportCacheEntry    `json:"reports"`
	Samples   map[string][]Sample            `json:"samples"`
	Badges    []string                       `json:"badges"`
	BadgesAt  time.Time                      `json:"badges_at"`
}

func NewState() *State {
	s := &State{Version: StateVersion, Prefs: DefaultPrefs()}
	s.Normalize()
	return s
}

// Normalize fills nil maps after decoding an older or partial document.
func (s *State) Normalize() {
	if s.Version == 0 {
		s.Version = StateVersion
	}
	if s.Prefs.Scheme == "" {
		s.Prefs.Scheme = SchemeTW
	}
	if s.Watches == nil {
		s.Watches = make(map[string]WatchTask)
	}
	if s.Sentiment == nil {
		s.Sentiment = make(map[string]SentimentCacheEntry)
	}
	if s.Reports == nil {
		s.Reports = make(map[string]ReportCacheEntry)
	}
	if s.Samples == nil {
		s.Samples = make(map[string][]Sample)
	}
}
