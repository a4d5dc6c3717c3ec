package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) Sweep() int {
	c.calls.Add(1)
	return 2
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	sw := &countingSweeper{}
	s := NewScheduler(sw, "@every 1s", zap.NewNop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return sw.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, true, s.GetStatus()["running"])
}

func TestScheduler_ForceRunRecordsStatus(t *testing.T) {
	sw := &countingSweeper{}
	s := NewScheduler(sw, "@every 1h", zap.NewNop())

	assert.Equal(t, 2, s.ForceRun())

	status := s.GetStatus()
	assert.Equal(t, 2, status["last_swept"])
	assert.Equal(t, false, status["running"])
	assert.Equal(t, int32(1), sw.calls.Load())
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(&countingSweeper{}, "every now and then", zap.NewNop())

	assert.Error(t, s.Start())
	s.Stop()
}

func TestScheduler_RestartRegistersSweepOnce(t *testing.T) {
	s := NewScheduler(&countingSweeper{}, "@every 1h", zap.NewNop())

	require.NoError(t, s.Start())
	s.Stop()
	assert.Empty(t, s.cron.Entries())

	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Len(t, s.cron.Entries(), 1)
}
