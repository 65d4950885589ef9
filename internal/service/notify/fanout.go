package notify

import (
	"context"
	"errors"
	"time"

	drepo "Sentinel/internal/domain/repository"
	applogger "Sentinel/pkg/logger"
)

// Fanout delivers to every transport once. Failures are logged, counted and
// joined into the returned error; nothing is retried.
type Fanout struct {
	targets []drepo.Notifier
	timeout time.Duration
	metrics drepo.Metrics
	log     *applogger.Logger
}

func NewFanout(targets []drepo.Notifier, timeout time.Duration, metrics drepo.Metrics, log *applogger.Logger) *Fanout {
	return &Fanout{targets: targets, timeout: timeout, metrics: metrics, log: log}
}

var _ drepo.Notifier = (*Fanout)(nil)

func (f *Fanout) Name() string { return "fanout" }

func (f *Fanout) Push(ctx context.Context, to, text string) error {
	var errs []error
	for _, t := range f.targets {
		err := f.pushOne(ctx, t, to, text)
		f.metrics.RecordPush(t.Name(), err == nil)
		if err != nil {
			f.log.Error("notify.push failed", applogger.String("channel", t.Name()), applogger.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) pushOne(ctx context.Context, t drepo.Notifier, to, text string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return t.Push(ctx, to, text)
}
