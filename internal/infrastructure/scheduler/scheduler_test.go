package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	analyticsapp "github.com/swas/backend/internal/application/analytics"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestJobLifecycle(t *testing.T) {
	job := NewJob(RollupJobName, 1)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	job.Fail("boom")
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, JobStatusPending, job.Status)
	require.NotNil(t, job.NextRetryAt)

	job.Fail("boom again")
	assert.False(t, job.ShouldRetry())
}

func runUntilDone(t *testing.T, s *Scheduler) <-chan *Job {
	t.Helper()
	done := make(chan *Job, 1)
	s.onDone = func(j *Job) { done <- j }
	require.NoError(t, s.Start(context.Background()))
	return done
}

func TestScheduler_RetriesUntilSuccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	exec := JobExecutorFunc(func(ctx context.Context, job *Job) error {
		if calls.Add(1) < 3 {
			return errors.New("database busy")
		}
		return nil
	})
	s := NewScheduler(Config{RetryAttempts: 3, RetryDelay: time.Millisecond}, exec, zap.NewNop())
	done := runUntilDone(t, s)

	_, err := s.SubmitNew(RollupJobName)
	require.NoError(t, err)

	select {
	case job := <-done:
		assert.Equal(t, JobStatusSuccess, job.Status)
		assert.Equal(t, 2, job.RetryCount)
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}
	assert.Equal(t, int32(3), calls.Load())
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_GivesUpAfterRetryBudget(t *testing.T) {
	defer goleak.VerifyNone(t)

	exec := JobExecutorFunc(func(context.Context, *Job) error { return errors.New("down") })
	s := NewScheduler(Config{RetryAttempts: 1, RetryDelay: time.Millisecond}, exec, zap.NewNop())
	done := runUntilDone(t, s)

	_, err := s.SubmitNew(RollupJobName)
	require.NoError(t, err)

	select {
	case job := <-done:
		assert.Equal(t, JobStatusFailed, job.Status)
		assert.Equal(t, "down", job.Error)
		assert.Equal(t, 1, job.RetryCount)
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}
	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_SubmitWhenStopped(t *testing.T) {
	s := NewScheduler(DefaultConfig(), JobExecutorFunc(func(context.Context, *Job) error { return nil }), nil)
	_, err := s.SubmitNew(RollupJobName)
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("02:30")
	require.NoError(t, err)
	assert.Equal(t, 2, h)
	assert.Equal(t, 30, m)

	_, _, err = ParseClock("25:00")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDailyTrigger_NextRun(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	trigger, err := NewDailyTrigger(DailyTriggerConfig{JobName: RollupJobName, At: "02:00", Location: manila}, nil, nil)
	require.NoError(t, err)

	before := time.Date(2026, 10, 15, 1, 0, 0, 0, manila)
	assert.Equal(t, time.Date(2026, 10, 15, 2, 0, 0, 0, manila), trigger.NextRun(before))

	at := time.Date(2026, 10, 15, 2, 0, 0, 0, manila)
	assert.Equal(t, time.Date(2026, 10, 16, 2, 0, 0, 0, manila), trigger.NextRun(at))

	// 18:30 UTC is 02:30 the next day in Manila
	utc := time.Date(2026, 10, 15, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 17, 2, 0, 0, 0, manila), trigger.NextRun(utc))
}

type stubRefresher struct{ calls atomic.Int32 }

func (s *stubRefresher) RefreshRollups(context.Context) (*analyticsapp.RefreshResult, error) {
	s.calls.Add(1)
	return &analyticsapp.RefreshResult{Days: 3}, nil
}

func TestDailyTrigger_RunOnStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	refresher := &stubRefresher{}
	s := NewScheduler(DefaultConfig(), NewRollupExecutor(refresher, zap.NewNop()), zap.NewNop())
	done := runUntilDone(t, s)

	trigger, err := NewDailyTrigger(DailyTriggerConfig{JobName: RollupJobName, At: "03:00", RunOnStart: true}, s, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, trigger.Start(context.Background()))

	select {
	case job := <-done:
		assert.Equal(t, JobStatusSuccess, job.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("rollup did not run")
	}
	assert.Equal(t, int32(1), refresher.calls.Load())

	require.NoError(t, trigger.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}
