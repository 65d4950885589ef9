package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := New(time.UTC, 0, nil)
	err := s.Register("digest.morning", "not a spec", func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	s := New(time.UTC, 0, nil)
	noop := func(context.Context) error { return nil }
	require.NoError(t, s.Register("watch.sweep", "@every 60s", noop))
	require.Error(t, s.Register("watch.sweep", "@every 60s", noop))
}

func TestTriggerRecordsStatus(t *testing.T) {
	s := New(time.UTC, time.Second, nil)
	calls := 0
	require.NoError(t, s.Register("a", "30 9 * * *", func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}))
	require.NoError(t, s.Register("b", "@every 10m", func(context.Context) error {
		return errors.New("upstream down")
	}))

	require.NoError(t, s.Trigger("a"))
	require.Error(t, s.Trigger("b"))
	require.Error(t, s.Trigger("missing"))

	st := s.Statuses()
	require.Len(t, st, 2)
	assert.Equal(t, "a", st[0].Name)
	assert.NotNil(t, st[0].LastRun)
	assert.Empty(t, st[0].LastError)
	assert.Equal(t, "upstream down", st[1].LastError)
	assert.Equal(t, 1, calls)
}

func TestStartStop(t *testing.T) {
	s := New(time.UTC, 0, nil)
	require.NoError(t, s.Register("a", "@every 1h", func(context.Context) error { return nil }))
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestTriggerRejectsOverlappingRun(t *testing.T) {
	s := New(time.UTC, 0, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, s.Register("samples.record", "@every 10m", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- s.Trigger("samples.record") }()
	<-started

	err := s.Trigger("samples.record")
	require.ErrorIs(t, err, ErrJobRunning)
	assert.True(t, s.Statuses()[0].Running)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Statuses()[0].Running)
	// the rejected trigger does not overwrite the status of the run in flight
	assert.Empty(t, s.Statuses()[0].LastError)
}

func TestInterval(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

	d, err := Interval("@every 10m", now)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, d)

	d, err = Interval("*/15 * * * *", now)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	_, err = Interval("not a spec", now)
	assert.Error(t, err)
}
