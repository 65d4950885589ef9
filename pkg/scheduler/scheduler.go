package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	applogger "Sentinel/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ErrJobRunning is returned when a job is started while a previous run is in flight.
var ErrJobRunning = errors.New("job already running")

// JobFunc is one scheduled unit of work.
type JobFunc func(ctx context.Context) error

// JobStatus is a point-in-time view of a registered job.
type JobStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Running   bool       `json:"running"`
}

type jobEntry struct {
	name      string
	schedule  string
	fn        JobFunc
	cronID    cron.EntryID
	lastRun   *time.Time
	lastError string
	running   bool
}

// Scheduler runs named jobs on cron specs in a fixed timezone.
// A job still running when its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	log     *applogger.Logger
	timeout time.Duration

	mu      sync.Mutex
	jobs    map[string]*jobEntry
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

// New creates a scheduler; timeout bounds every job run (0 disables).
func New(loc *time.Location, timeout time.Duration, log *applogger.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = applogger.Nop()
	}
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:     log,
		timeout: timeout,
		jobs:    make(map[string]*jobEntry),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds a job. Spec accepts standard 5-field expressions and descriptors like "@every 60s".
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already registered", name)
	}
	entry := &jobEntry{name: name, schedule: spec, fn: fn}
	id, err := s.cron.AddFunc(spec, func() { s.execute(entry) })
	if err != nil {
		return fmt.Errorf("job %q: invalid schedule %q: %w", name, spec, err)
	}
	entry.cronID = id
	s.jobs[name] = entry
	s.log.Info("scheduler.register", applogger.String("job", name), applogger.String("schedule", spec))
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.log.Info("scheduler.start", applogger.Int("jobs", len(s.jobs)))
}

// Stop prevents new runs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.cancel()
		s.log.Info("scheduler.stop")
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// Trigger runs a job now, outside its schedule, and returns its error.
// It fails with ErrJobRunning while the job is already in flight.
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	entry, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	return s.execute(entry)
}

// claim marks e running; false means a run is already in flight.
func (s *Scheduler) claim(e *jobEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.running {
		return false
	}
	e.running = true
	return true
}

// Statuses returns all jobs sorted by name.
func (s *Scheduler) Statuses() []JobStatus {
	next := make(map[cron.EntryID]time.Time)
	for _, e := range s.cron.Entries() {
		next[e.ID] = e.Next
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobStatus, 0, len(s.jobs))
	for _, e := range s.jobs {
		st := JobStatus{
			Name:      e.name,
			Schedule:  e.schedule,
			LastRun:   e.lastRun,
			LastError: e.lastError,
			Running:   e.running,
		}
		if n, ok := next[e.cronID]; ok && !n.IsZero() {
			n := n
			st.NextRun = &n
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) execute(e *jobEntry) error {
	if !s.claim(e) {
		s.log.Debug("scheduler.job skipped", applogger.String("job", e.name))
		return fmt.Errorf("job %q: %w", e.name, ErrJobRunning)
	}

	ctx := s.ctx
	var cancel context.CancelFunc = func() {}
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	start := time.Now()
	err := e.fn(ctx)
	cancel()

	s.mu.Lock()
	e.running = false
	finished := time.Now()
	e.lastRun = &finished
	e.lastError = ""
	if err != nil {
		e.lastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error("scheduler.job failed",
			applogger.String("job", e.name),
			applogger.Duration("duration_ms", time.Since(start)),
			applogger.Error(err),
		)
		return err
	}
	s.log.Debug("scheduler.job done",
		applogger.String("job", e.name),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

// cronLogger adapts the app logger to cron.Logger.
type cronLogger struct {
	log *applogger.Logger
}

// Interval is the gap between the first two runs of spec after now.
// Fixed-rate specs like "@every 10m" always return the same value.
func Interval(spec string, now time.Time) (time.Duration, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	next := sched.Next(now)
	return sched.Next(next).Sub(next), nil
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug("cron."+msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error("cron."+msg, append(kvFields(keysAndValues), applogger.Error(err))...)
}

func kvFields(kv []interface{}) []applogger.Field {
	fields := make([]applogger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, applogger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
