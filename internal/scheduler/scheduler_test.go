package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideabox/internal/config"
	mailsync "ideabox/internal/sync"
)

func newTestScheduler(intervalMinutes int) *Scheduler {
	cfg := &config.SchedulerConfig{IntervalMinutes: intervalMinutes}
	orchestrator := mailsync.New(nil, nil, nil, 8000)
	return NewScheduler(cfg, orchestrator, mailsync.Options{}, nil)
}

func TestSchedulerStartStop(t *testing.T) {
	s := newTestScheduler(15)

	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero(), "a started scheduler has a next run")

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
}

func TestSchedulerDoubleStart(t *testing.T) {
	s := newTestScheduler(15)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Error(t, s.Start(), "starting twice must fail")
}

func TestSchedulerStopWhenNotRunning(t *testing.T) {
	s := newTestScheduler(15)
	assert.NoError(t, s.Stop())
}

func TestSchedulerInvalidInterval(t *testing.T) {
	s := newTestScheduler(0)
	assert.Error(t, s.Start())
}
