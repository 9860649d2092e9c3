package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"event-gallery/pkg/logger"
)

type JobScheduler interface {
	Start()
	Stop()
	AddCron(id, cronExpr string, task func()) error
	AddInterval(id string, every time.Duration, task func()) error
	RemoveJob(id string) error
	ListJobs() []JobInfo
	IsRunning() bool
}

// JobInfo is a snapshot of one scheduled job.
type JobInfo struct {
	ID       string     `json:"id"`
	Schedule string     `json:"schedule"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	NextRun  *time.Time `json:"next_run,omitempty"`
}

type entry struct {
	schedule string
	job      *gocron.Job
	lastRun  *time.Time
}

type GocronScheduler struct {
	scheduler *gocron.Scheduler
	jobs      map[string]*entry
	mu        sync.RWMutex
	running   bool
}

func NewJobScheduler() JobScheduler {
	s := gocron.NewScheduler(time.UTC)
	// a slow run is never overlapped by the next tick
	s.SingletonModeAll()

	return &GocronScheduler{
		scheduler: s,
		jobs:      make(map[string]*entry),
	}
}

func (s *GocronScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		logger.SchedulerWarn("start", "Scheduler is already running", nil)
		return
	}
	s.scheduler.StartAsync()
	s.running = true
	logger.Scheduler("started", "Job scheduler started", map[string]interface{}{"jobs": len(s.jobs)})
}

func (s *GocronScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.scheduler.Stop()
	s.running = false
	logger.Scheduler("stopped", "Job scheduler stopped", nil)
}

func (s *GocronScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *GocronScheduler) AddCron(id, cronExpr string, task func()) error {
	return s.add(id, cronExpr, func() *gocron.Scheduler { return s.scheduler.Cron(cronExpr) }, task)
}

func (s *GocronScheduler) AddInterval(id string, every time.Duration, task func()) error {
	if every <= 0 {
		return fmt.Errorf("interval for job %s must be positive", id)
	}
	return s.add(id, "every "+every.String(), func() *gocron.Scheduler { return s.scheduler.Every(every) }, task)
}

func (s *GocronScheduler) add(id, schedule string, build func() *gocron.Scheduler, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job with ID %s already exists", id)
	}

	job, err := build().Tag(id).Do(func() {
		now := time.Now()
		s.mu.Lock()
		if e, ok := s.jobs[id]; ok {
			e.lastRun = &now
		}
		s.mu.Unlock()

		logger.Debug(logger.CategoryScheduler, "job_executing", "Executing job", map[string]interface{}{"job_id": id})
		task()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", id, err)
	}

	s.jobs[id] = &entry{schedule: schedule, job: job}
	logger.Scheduler("job_added", "Job added", map[string]interface{}{"job_id": id, "schedule": schedule})
	return nil
}

func (s *GocronScheduler) RemoveJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job with ID %s not found", id)
	}
	s.scheduler.RemoveByReference(e.job)
	delete(s.jobs, id)
	logger.Scheduler("job_removed", "Job removed", map[string]interface{}{"job_id": id})
	return nil
}

func (s *GocronScheduler) ListJobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]JobInfo, 0, len(s.jobs))
	for id, e := range s.jobs {
		info := JobInfo{ID: id, Schedule: e.schedule}
		if e.lastRun != nil {
			lastRun := *e.lastRun
			info.LastRun = &lastRun
		}
		if next := e.job.NextRun(); !next.IsZero() {
			info.NextRun = &next
		}
		jobs = append(jobs, info)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs
}

// ValidateCronExpression reports whether gocron accepts cronExpr.
func ValidateCronExpression(cronExpr string) error {
	_, err := gocron.NewScheduler(time.UTC).Cron(cronExpr).Do(func() {})
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}
