package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobFunc is the deferred work run by the Scheduler.
type JobFunc func(ctx context.Context)

// Scheduler runs jobs after a delay on timer goroutines, independent of
// the caller that scheduled them.
type Scheduler struct {
	clock  Clock
	logger *zap.Logger

	mu      sync.Mutex
	pending map[*Job]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// Job is the cancellable handle of a scheduled job.
type Job struct {
	name      string
	scheduler *Scheduler
	fn        JobFunc
	timer     Timer
}

// NewScheduler builds a scheduler. A nil clock means wall-clock time.
func NewScheduler(clock Clock, logger *zap.Logger) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		clock:   clock,
		logger:  logger,
		pending: make(map[*Job]struct{}),
	}
}

// Clock exposes the scheduler's time source.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Schedule arranges for fn to run once delay has elapsed and returns
// immediately.
func (s *Scheduler) Schedule(name string, delay time.Duration, fn JobFunc) (*Job, error) {
	job := &Job{name: name, scheduler: s, fn: fn}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("schedule %s: scheduler closed", name)
	}
	s.pending[job] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	timer := s.clock.AfterFunc(delay, func() { s.fire(job) })

	s.mu.Lock()
	job.timer = timer
	s.mu.Unlock()
	return job, nil
}

// Cancel prevents the job from running if it has not started yet. It
// reports whether the job was cancelled.
func (j *Job) Cancel() bool {
	s := j.scheduler
	s.mu.Lock()
	if _, ok := s.pending[j]; !ok || j.timer == nil {
		s.mu.Unlock()
		return false
	}
	if !j.timer.Stop() {
		s.mu.Unlock()
		return false
	}
	delete(s.pending, j)
	s.mu.Unlock()
	s.wg.Done()
	return true
}

// Name returns the label the job was scheduled with.
func (j *Job) Name() string {
	return j.name
}

func (s *Scheduler) fire(job *Job) {
	s.mu.Lock()
	if _, ok := s.pending[job]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, job)
	s.mu.Unlock()

	s.run(job)
}

func (s *Scheduler) run(job *Job) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled job panicked",
				zap.String("job", job.name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	job.fn(context.Background())
}

// Shutdown stops accepting jobs, runs every job whose delay has not yet
// elapsed right away, and waits for all jobs to finish or ctx to end.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	var early []*Job
	for job := range s.pending {
		if job.timer != nil && job.timer.Stop() {
			delete(s.pending, job)
			early = append(early, job)
		}
	}
	s.mu.Unlock()

	if len(early) > 0 {
		s.logger.Info("running deferred jobs early for shutdown", zap.Int("count", len(early)))
	}
	for _, job := range early {
		go s.run(job)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
