package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig(), newTestLogger())
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name    string
		job     Job
		wantErr error
	}{
		{"valid job", Job{Name: "session-watch", Interval: time.Second, Run: noop}, nil},
		{"duplicate name", Job{Name: "session-watch", Interval: time.Second, Run: noop}, ErrDuplicateJob},
		{"missing name", Job{Interval: time.Second, Run: noop}, ErrInvalidJob},
		{"zero interval", Job{Name: "x", Run: noop}, ErrInvalidJob},
		{"nil func", Job{Name: "y", Interval: time.Second}, ErrInvalidJob},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Register(tt.job)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	stats := s.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, JobStatusPending, stats[0].Status)
}

func TestScheduler_RunsJobsOnInterval(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig(), newTestLogger())
	var runs atomic.Int32
	require.NoError(t, s.Register(Job{
		Name:       "tick",
		Interval:   10 * time.Millisecond,
		RunOnStart: true,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Register(Job{Name: "late", Interval: time.Second, Run: func(context.Context) error { return nil }}), ErrSchedulerRunning)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())

	stats := s.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, JobStatusSuccess, stats[0].Status)
	assert.NotNil(t, stats[0].LastRunAt)
	assert.GreaterOrEqual(t, stats[0].Runs, 3)
}

func TestScheduler_TracksFailures(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig(), newTestLogger())
	var fail atomic.Bool
	fail.Store(true)
	require.NoError(t, s.Register(Job{
		Name:     "flaky",
		Interval: time.Hour,
		Run: func(context.Context) error {
			if fail.Load() {
				return errors.New("backend unreachable")
			}
			return nil
		},
	}))

	ctx := context.Background()
	assert.Error(t, s.Trigger(ctx, "flaky"))
	assert.Error(t, s.Trigger(ctx, "flaky"))

	stats := s.Stats()[0]
	assert.Equal(t, JobStatusFailed, stats.Status)
	assert.Equal(t, 2, stats.ConsecutiveFailures)
	assert.Equal(t, "backend unreachable", stats.LastError)

	fail.Store(false)
	require.NoError(t, s.Trigger(ctx, "flaky"))

	stats = s.Stats()[0]
	assert.Equal(t, JobStatusSuccess, stats.Status)
	assert.Equal(t, 3, stats.Runs)
	assert.Equal(t, 2, stats.Failures)
	assert.Zero(t, stats.ConsecutiveFailures)
	assert.Empty(t, stats.LastError)

	assert.ErrorIs(t, s.Trigger(ctx, "missing"), ErrJobNotFound)
}

func TestScheduler_JobTimeout(t *testing.T) {
	s := NewScheduler(SchedulerConfig{JobTimeout: 20 * time.Millisecond}, newTestLogger())
	require.NoError(t, s.Register(Job{
		Name:     "slow",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	err := s.Trigger(context.Background(), "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(SchedulerConfig{}, nil)
	assert.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}
