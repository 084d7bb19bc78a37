package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"

	"lifeadmin/internal/log"
)

// Job names.
const (
	JobBackup = "backup"
	JobNudge  = "nudge"
	JobSync   = "sync"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron specs. Jobs never overlap with
// themselves: a run that is still going when the next tick fires is skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *log.Logger
	jobs   map[string]Job

	mu      sync.Mutex
	running bool
	ctx     context.Context
}

func NewScheduler(logger *log.Logger) *Scheduler {
	logger = logger.WithComponent(log.ComponentScheduler)
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
		jobs:   map[string]Job{},
		ctx:    context.Background(),
	}
}

// Add registers job under name on spec. An empty spec registers the job for
// Run only.
func (s *Scheduler) Add(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %q already registered", name)
	}
	if spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.runLogged(name, job) }); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
		}
	}
	s.jobs[name] = job
	return nil
}

func (s *Scheduler) runLogged(name string, job Job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if err := job(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Scheduled job failed", "job", name, log.FieldError, err)
		return
	}
	s.logger.DebugContext(ctx, "Scheduled job done", "job", name)
}

// Run executes a registered job immediately.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return job(ctx)
}

// Jobs lists registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for n := range s.jobs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Start begins firing jobs. ctx is handed to every scheduled run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.ctx = ctx
	n := len(s.cron.Entries())
	s.mu.Unlock()

	s.cron.Start()
	s.logger.InfoContext(ctx, "Scheduler started", "entries", n)
	return nil
}

// Stop stops new runs and waits for running jobs or ctx, whichever is first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.InfoContext(ctx, "Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
