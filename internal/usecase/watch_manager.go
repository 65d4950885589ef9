package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"Sentinel/internal/domain/models"
	drepo "Sentinel/internal/domain/repository"
	applogger "Sentinel/pkg/logger"
	"Sentinel/pkg/util"
)

var ErrInvalidSymbol = errors.New("invalid symbol")

// WatchManager owns the watch table inside the state document. Every mutation
// runs as one StateStore.Update so sweeps and commands never lose writes.
type WatchManager struct {
	store   drepo.StateStore
	metrics drepo.Metrics
	log     *applogger.Logger

	duration time.Duration
	lead     time.Duration
	loc      *time.Location
	now      func() time.Time
}

type WatchOption func(*WatchManager)

func WithWatchClock(now func() time.Time) WatchOption {
	return func(m *WatchManager) { m.now = now }
}

func WithWatchLocation(loc *time.Location) WatchOption {
	return func(m *WatchManager) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// NewWatchManager creates a manager where each watch or extension adds
// duration and the reminder window is the final lead before expiry.
func NewWatchManager(store drepo.StateStore, metrics drepo.Metrics, log *applogger.Logger, duration, lead time.Duration, opts ...WatchOption) *WatchManager {
	m := &WatchManager{
		store:    store,
		metrics:  metrics,
		log:      log,
		duration: duration,
		lead:     lead,
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func parseSymbol(symbol string) (string, error) {
	sym := util.NormalizeSymbol(symbol)
	if !util.ValidSymbol(sym) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return sym, nil
}

// Watch creates a watch until now+duration, or extends an active one to
// max(now, until)+duration keeping its reminder mark. A task already past
// its deadline but not yet swept is recreated.
func (m *WatchManager) Watch(ctx context.Context, symbol string, side models.Side) (models.WatchResult, error) {
	sym, err := parseSymbol(symbol)
	if err != nil {
		return models.WatchResult{}, err
	}
	if side != models.SideShort {
		side = models.SideLong
	}
	now := m.now()

	var res models.WatchResult
	err = m.store.Update(ctx, func(s *models.State) error {
		t, ok := s.Watches[sym]
		if ok && !t.Until.Before(now) {
			t.Until = t.Until.Add(m.duration)
			t.Side = side
			res = models.WatchResult{Task: t, Extended: true}
		} else {
			t = models.WatchTask{Symbol: sym, Side: side, Until: now.Add(m.duration), CreatedAt: now}
			res = models.WatchResult{Task: t}
		}
		s.Watches[sym] = t
		return nil
	})
	if err != nil {
		return models.WatchResult{}, fmt.Errorf("watch %s: %w", sym, err)
	}

	kind := "created"
	if res.Extended {
		kind = "extended"
	}
	m.metrics.RecordWatchEvent(kind)
	m.log.Info("watch."+kind,
		applogger.String("symbol", sym),
		applogger.String("side", string(side)),
		applogger.String("until", res.Task.Until.Format(time.RFC3339)),
	)
	return res, nil
}

// Extend is Watch that keeps the side of an existing task.
func (m *WatchManager) Extend(ctx context.Context, symbol string) (models.WatchResult, error) {
	sym, err := parseSymbol(symbol)
	if err != nil {
		return models.WatchResult{}, err
	}
	side := models.SideLong
	err = m.store.View(ctx, func(s *models.State) error {
		if t, ok := s.Watches[sym]; ok {
			side = t.Side
		}
		return nil
	})
	if err != nil {
		return models.WatchResult{}, fmt.Errorf("extend %s: %w", sym, err)
	}
	return m.Watch(ctx, sym, side)
}

// Stop removes the task. Stopping an absent symbol is StopNothingToStop, not an error.
func (m *WatchManager) Stop(ctx context.Context, symbol string) (models.StopOutcome, error) {
	sym, err := parseSymbol(symbol)
	if err != nil {
		return models.StopNothingToStop, err
	}
	out := models.StopNothingToStop
	err = m.store.Update(ctx, func(s *models.State) error {
		if _, ok := s.Watches[sym]; ok {
			delete(s.Watches, sym)
			out = models.StopStopped
		}
		return nil
	})
	if err != nil {
		return models.StopNothingToStop, fmt.Errorf("stop %s: %w", sym, err)
	}
	if out == models.StopStopped {
		m.metrics.RecordWatchEvent("stopped")
		m.log.Info("watch.stopped", applogger.String("symbol", sym))
	}
	return out, nil
}

// Sweep evaluates every task against one now. A task inside the final lead
// window gets one reminder per expiry cycle; a task past its deadline is
// deleted and reported as expired. Events are ordered by symbol.
func (m *WatchManager) Sweep(ctx context.Context) ([]models.WatchEvent, error) {
	now := m.now()

	var events []models.WatchEvent
	err := m.store.Update(ctx, func(s *models.State) error {
		events = events[:0]
		for _, sym := range sortedKeys(s.Watches) {
			t := s.Watches[sym]
			remain := t.Until.Sub(now)
			switch {
			case t.Until.Before(now):
				delete(s.Watches, sym)
				events = append(events, models.WatchEvent{Kind: models.WatchExpired, Task: t})
			case remain > 0 && remain <= m.lead && t.LastAlertAt.Before(t.Until.Add(-m.lead)):
				t.LastAlertAt = now
				s.Watches[sym] = t
				events = append(events, models.WatchEvent{Kind: models.WatchReminder, Task: t, Remaining: remain})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	for _, ev := range events {
		m.metrics.RecordWatchEvent(string(ev.Kind))
		m.log.Info("watch.sweep "+string(ev.Kind),
			applogger.String("symbol", ev.Task.Symbol),
			applogger.Int64("remaining_s", int64(ev.Remaining/time.Second)),
		)
	}
	return events, nil
}

// Snapshot is one consistent read of all tasks, ordered by symbol.
func (m *WatchManager) Snapshot(ctx context.Context) (models.WatchSummary, error) {
	sum := models.WatchSummary{At: m.now()}
	err := m.store.View(ctx, func(s *models.State) error {
		for _, sym := range sortedKeys(s.Watches) {
			sum.Tasks = append(sum.Tasks, s.Watches[sym])
		}
		return nil
	})
	if err != nil {
		return models.WatchSummary{}, fmt.Errorf("watch summary: %w", err)
	}
	return sum, nil
}

// Summarize renders the snapshot as text.
func (m *WatchManager) Summarize(ctx context.Context) (string, error) {
	sum, err := m.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return m.FormatSummary(sum), nil
}

// FormatSummary renders tasks that are still running at sum.At.
func (m *WatchManager) FormatSummary(sum models.WatchSummary) string {
	var lines []string
	for _, t := range sum.Tasks {
		remain := t.Remaining(sum.At)
		if remain <= 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s · %s left (until %s)",
			t.Symbol, t.Side, formatRemaining(remain), util.ClockInZone(t.Until, m.loc)))
	}
	if len(lines) == 0 {
		return "no active watches"
	}
	return strings.Join(lines, "\n")
}

// ReminderText is the push body for a sweep event.
func (m *WatchManager) ReminderText(ev models.WatchEvent) string {
	if ev.Kind == models.WatchExpired {
		return fmt.Sprintf("⌛ %s watch expired (%s)", ev.Task.Symbol, util.ClockInZone(ev.Task.Until, m.loc))
	}
	return fmt.Sprintf("⏰ %s watch expires in %d min (%s)",
		ev.Task.Symbol, int(ev.Remaining/time.Minute), util.ClockInZone(ev.Task.Until, m.loc))
}

func formatRemaining(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	mins := int((d % time.Hour) / time.Minute)
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
