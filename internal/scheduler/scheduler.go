package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper drops expired entries and reports how many were removed.
type Sweeper interface {
	Sweep() int
}

// Scheduler runs the session sweep on a cron schedule.
type Scheduler struct {
	sweeper   Sweeper
	logger    *zap.Logger
	schedule  string
	cron      *cron.Cron
	entry     cron.EntryID
	mu        sync.Mutex
	running   bool
	lastRun   time.Time
	lastSwept int
}

func NewScheduler(sweeper Sweeper, schedule string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		logger:   logger,
		schedule: schedule,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	entry, err := s.cron.AddFunc(s.schedule, func() { s.runSweep() })
	if err != nil {
		return err
	}
	s.entry = entry
	s.running = true
	s.cron.Start()

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.cron.Entry(entry).Next))
	return nil
}

func (s *Scheduler) runSweep() int {
	startTime := time.Now()
	swept := s.sweeper.Sweep()

	s.mu.Lock()
	s.lastRun = startTime
	s.lastSwept = swept
	s.mu.Unlock()

	s.logger.Debug("Session sweep completed",
		zap.Int("swept", swept),
		zap.Duration("duration", time.Since(startTime)))
	return swept
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	entry := s.entry
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	// A later Start registers the sweep again.
	s.cron.Remove(entry)
}

// ForceRun sweeps immediately, outside the schedule, and returns how many
// sessions were dropped.
func (s *Scheduler) ForceRun() int {
	s.logger.Info("Manually triggering session sweep")
	return s.runSweep()
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":    s.running,
		"schedule":   s.schedule,
		"last_run":   s.lastRun,
		"last_swept": s.lastSwept,
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entry).Next
	}
	return status
}
