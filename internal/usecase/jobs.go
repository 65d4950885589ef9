package usecase

import (
	"context"
	"fmt"
	"sort"

	drepo "Sentinel/internal/domain/repository"
	applogger "Sentinel/pkg/logger"
	"Sentinel/pkg/scheduler"
)

// Job names registered on the scheduler.
const (
	JobWatchSweep    = "watch.sweep"
	JobSampleRecord  = "samples.record"
	JobBadgesRefresh = "badges.refresh"
	jobDigestPrefix  = "digest."
)

// DigestJob names the scheduled digest of a phase.
func DigestJob(phase string) string { return jobDigestPrefix + phase }

// JobsConfig holds cron specs; Digests maps phase to spec.
type JobsConfig struct {
	Digests    map[string]string
	SweepSpec  string
	SampleSpec string
	BadgesSpec string
	PushTo     string
}

// Jobs binds the use cases to scheduler entries and pushes their output.
type Jobs struct {
	watches  *WatchManager
	reporter *Reporter
	notifier drepo.Notifier
	log      *applogger.Logger
	cfg      JobsConfig
}

func NewJobs(watches *WatchManager, reporter *Reporter, notifier drepo.Notifier, log *applogger.Logger, cfg JobsConfig) *Jobs {
	return &Jobs{watches: watches, reporter: reporter, notifier: notifier, log: log, cfg: cfg}
}

// Register adds every job to s. Digests are registered in phase name order.
func (j *Jobs) Register(s *scheduler.Scheduler) error {
	phases := make([]string, 0, len(j.cfg.Digests))
	for p := range j.cfg.Digests {
		phases = append(phases, p)
	}
	sort.Strings(phases)
	for _, phase := range phases {
		if err := s.Register(DigestJob(phase), j.cfg.Digests[phase], func(ctx context.Context) error {
			return j.PushDigest(ctx, phase)
		}); err != nil {
			return fmt.Errorf("register digest %s: %w", phase, err)
		}
	}

	entries := []struct {
		name, spec string
		fn         scheduler.JobFunc
	}{
		{JobWatchSweep, j.cfg.SweepSpec, j.SweepWatches},
		{JobSampleRecord, j.cfg.SampleSpec, j.reporter.RecordSamples},
		{JobBadgesRefresh, j.cfg.BadgesSpec, func(ctx context.Context) error {
			_, err := j.reporter.RefreshBadges(ctx)
			return err
		}},
	}
	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		if err := s.Register(e.name, e.spec, e.fn); err != nil {
			return fmt.Errorf("register %s: %w", e.name, err)
		}
	}
	return nil
}

// PushDigest composes and pushes one digest. Compose never fails, so a
// digest is always delivered to the transport.
func (j *Jobs) PushDigest(ctx context.Context, phase string) error {
	text := j.reporter.Compose(ctx, phase)
	if err := j.notifier.Push(ctx, j.cfg.PushTo, text); err != nil {
		return fmt.Errorf("push %s digest: %w", phase, err)
	}
	j.log.Info("digest.pushed", applogger.String("phase", phase), applogger.Int("chars", len(text)))
	return nil
}

// TriggerDigest composes and pushes a digest outside its schedule. The
// pushed text is marked as manual and returned.
func (j *Jobs) TriggerDigest(ctx context.Context, phase string) (string, error) {
	text := "🪄 manual " + phase + " digest\n" + j.reporter.Compose(ctx, phase)
	if err := j.notifier.Push(ctx, j.cfg.PushTo, text); err != nil {
		return text, fmt.Errorf("push %s digest: %w", phase, err)
	}
	j.log.Info("digest.triggered", applogger.String("phase", phase))
	return text, nil
}

// SweepWatches runs one sweep and pushes each event. Push failures are
// logged; the sweep result stands either way.
func (j *Jobs) SweepWatches(ctx context.Context) error {
	events, err := j.watches.Sweep(ctx)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if err := j.notifier.Push(ctx, j.cfg.PushTo, j.watches.ReminderText(ev)); err != nil {
			j.log.Warn("watch.notify failed",
				applogger.String("symbol", ev.Task.Symbol),
				applogger.String("kind", string(ev.Kind)),
				applogger.Error(err),
			)
		}
	}
	return nil
}
