package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus represents the outcome of a job's most recent run
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobFunc is the work a periodic job performs on each tick
type JobFunc func(ctx context.Context) error

// Job is a named unit of work run on a fixed interval
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration // per run; 0 uses the scheduler default
	Run      JobFunc

	// RunOnStart runs the job once immediately instead of waiting a full interval
	RunOnStart bool
}

// JobStats is a snapshot of a job's run history
type JobStats struct {
	Name                string
	Status              JobStatus
	Runs                int
	Failures            int
	ConsecutiveFailures int
	LastError           string
	LastRunAt           *time.Time
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	JobTimeout time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		JobTimeout: 10 * time.Second,
	}
}

type jobState struct {
	job   Job
	stats JobStats
}

// Scheduler runs registered jobs on their intervals until stopped
type Scheduler struct {
	config SchedulerConfig
	logger *zap.Logger

	jobs      map[string]*jobState
	order     []string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, logger *zap.Logger) *Scheduler {
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultSchedulerConfig().JobTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config: config,
		logger: logger,
		jobs:   make(map[string]*jobState),
	}
}

// Register adds a job. Jobs must be registered before Start.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil || job.Interval <= 0 {
		return ErrInvalidJob
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, exists := s.jobs[job.Name]; exists {
		return ErrDuplicateJob
	}
	s.jobs[job.Name] = &jobState{
		job:   job,
		stats: JobStats{Name: job.Name, Status: JobStatusPending},
	}
	s.order = append(s.order, job.Name)
	return nil
}

// Start launches one loop per registered job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	states := make([]*jobState, 0, len(s.order))
	for _, name := range s.order {
		states = append(states, s.jobs[name])
	}
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, st := range states {
		s.wg.Add(1)
		go s.runLoop(ctx, st)
	}

	s.logger.Info("Scheduler started",
		zap.Int("jobs", len(states)),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels every job loop and waits for in-flight runs
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// Trigger runs a job immediately, outside its interval
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	st, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}
	return s.execute(ctx, st)
}

// Stats returns a snapshot of every job in registration order
func (s *Scheduler) Stats() []JobStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStats, 0, len(s.order))
	for _, name := range s.order {
		stats := s.jobs[name].stats
		if stats.LastRunAt != nil {
			at := *stats.LastRunAt
			stats.LastRunAt = &at
		}
		out = append(out, stats)
	}
	return out
}

func (s *Scheduler) runLoop(ctx context.Context, st *jobState) {
	defer s.wg.Done()

	if st.job.RunOnStart {
		_ = s.execute(ctx, st)
	}

	ticker := time.NewTicker(st.job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.execute(ctx, st)
		}
	}
}

// execute performs one run and records its outcome
func (s *Scheduler) execute(ctx context.Context, st *jobState) error {
	timeout := st.job.Timeout
	if timeout <= 0 {
		timeout = s.config.JobTimeout
	}

	s.mu.Lock()
	st.stats.Status = JobStatusRunning
	s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := st.job.Run(runCtx)

	now := time.Now()
	s.mu.Lock()
	st.stats.Runs++
	st.stats.LastRunAt = &now
	if err != nil {
		st.stats.Status = JobStatusFailed
		st.stats.Failures++
		st.stats.ConsecutiveFailures++
		st.stats.LastError = err.Error()
	} else {
		st.stats.Status = JobStatusSuccess
		st.stats.ConsecutiveFailures = 0
		st.stats.LastError = ""
	}
	consecutive := st.stats.ConsecutiveFailures
	s.mu.Unlock()

	if err != nil {
		// Log the first failure of a streak at warn, repeats at debug
		if consecutive == 1 {
			s.logger.Warn("Job failed", zap.String("job", st.job.Name), zap.Error(err))
		} else {
			s.logger.Debug("Job still failing",
				zap.String("job", st.job.Name),
				zap.Int("consecutive_failures", consecutive),
				zap.Error(err),
			)
		}
		return err
	}
	s.logger.Debug("Job completed", zap.String("job", st.job.Name))
	return nil
}
