package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"cine-insights/logging"
)

// JobTimeout bounds a single job run
const JobTimeout = 30 * time.Minute

// specParser matches the parser cron.WithSeconds installs
var specParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job represents a scheduled job
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	cron      *cron.Cron
	mu        sync.Mutex
	jobs      map[string]Job
	isRunning bool
}

// cronLogger routes cron's own messages through the application logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// NewScheduler creates a new scheduler. Specs include a seconds field.
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLogger{}),
			cron.WithChain(cron.Recover(cronLogger{})),
		),
		jobs: make(map[string]Job),
	}
}

// AddJob adds a job to the scheduler with a cron specification
func (s *Scheduler) AddJob(spec string, job Job) error {
	return s.AddJobSpecs([]string{spec}, job)
}

// AddJobSpecs registers job once and schedules it at every spec. Nothing is
// registered if any spec is invalid.
func (s *Scheduler) AddJobSpecs(specs []string, job Job) error {
	name := job.Name()
	if len(specs) == 0 {
		return fmt.Errorf("job %s has no schedule", name)
	}
	for _, spec := range specs {
		if _, err := specParser.Parse(spec); err != nil {
			return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	for _, spec := range specs {
		spec := spec
		if _, err := s.cron.AddFunc(spec, func() { s.runScheduled(name, spec, job) }); err != nil {
			return fmt.Errorf("failed to add job %s: %w", name, err)
		}
	}
	s.jobs[name] = job
	logging.Info().Str("job", name).Strs("specs", specs).Msg("Job scheduled")
	return nil
}

func (s *Scheduler) runScheduled(name, spec string, job Job) {
	logging.Info().Str("job", name).Str("spec", spec).Msg("Starting scheduled job")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), JobTimeout)
	defer cancel()

	if err := job.Run(ctx); err != nil {
		logging.Err(err).Str("job", name).Msg("Scheduled job failed")
		return
	}
	logging.Info().Str("job", name).Dur("duration", time.Since(startTime)).Msg("Completed scheduled job")
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	logging.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	logging.Info().Msg("Scheduler stopped")
}

// Serve runs the scheduler until ctx is cancelled, so it can be supervised
func (s *Scheduler) Serve(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

func (s *Scheduler) String() string {
	return "scheduler"
}

// RunJobNow runs a job immediately outside of schedule
func (s *Scheduler) RunJobNow(name string) error {
	return s.RunJobNowContext(context.Background(), name)
}

// RunJobNowContext is RunJobNow bounded by ctx
func (s *Scheduler) RunJobNowContext(ctx context.Context, name string) error {
	s.mu.Lock()
	job, exists := s.jobs[name]
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("job %s not registered", name)
	}

	logging.Info().Str("job", name).Msg("Manually running job")
	ctx, cancel := context.WithTimeout(ctx, JobTimeout)
	defer cancel()

	return job.Run(ctx)
}
