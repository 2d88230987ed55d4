// Package jobs runs background work on a single worker and records every run
// in job_runs.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	JobVacationSync       = "vacation_status_sync"
	JobIdempotencyCleanup = "idempotency_cleanup"
)

var (
	ErrUnknownJob = errors.New("unknown job")
	ErrQueueFull  = errors.New("job queue full")
)

// Func does the work of one run and returns details to store with it.
type Func func(ctx context.Context) (any, error)

type Service struct {
	Runs RunStore

	mu       sync.RWMutex
	jobs     map[string]Func
	schedule map[string]time.Duration
	running  map[string]*sync.Mutex
	queue    chan queued
}

type queued struct {
	jobType     string
	triggeredBy *int64
}

func New(runs RunStore) *Service {
	return &Service{
		Runs:     runs,
		jobs:     map[string]Func{},
		schedule: map[string]time.Duration{},
		running:  map[string]*sync.Mutex{},
		queue:    make(chan queued, 32),
	}
}

// Register makes jobType runnable. A positive every also runs it on that
// interval once Start is called.
func (s *Service) Register(jobType string, every time.Duration, run Func) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobType] = run
	if s.running[jobType] == nil {
		s.running[jobType] = &sync.Mutex{}
	}
	if every > 0 {
		s.schedule[jobType] = every
	} else {
		delete(s.schedule, jobType)
	}
}

func (s *Service) Registered(jobType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.jobs[jobType]
	return ok
}

// Start launches the worker and one ticker per scheduled job. Scheduled jobs
// also run once at startup. Everything stops when ctx is done.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for jobType, every := range s.schedule {
		go s.tick(ctx, jobType, every)
	}
}

func (s *Service) Enqueue(jobType string, triggeredBy *int64) error {
	if !s.Registered(jobType) {
		return ErrUnknownJob
	}
	select {
	case s.queue <- queued{jobType: jobType, triggeredBy: triggeredBy}:
		return nil
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return ErrQueueFull
	}
}

// RunNow runs jobType on the caller's goroutine. It waits for a run of the
// same job already in progress, so two runs of one job never overlap.
func (s *Service) RunNow(ctx context.Context, jobType string, triggeredBy *int64) (Run, error) {
	s.mu.RLock()
	run, ok := s.jobs[jobType]
	lock := s.running[jobType]
	s.mu.RUnlock()
	if !ok {
		return Run{}, ErrUnknownJob
	}
	lock.Lock()
	defer lock.Unlock()
	return s.runJob(ctx, jobType, triggeredBy, run)
}

func (s *Service) List(ctx context.Context, jobType string, limit, offset int) ([]Run, error) {
	return s.Runs.List(ctx, jobType, limit, offset)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-s.queue:
			if _, err := s.RunNow(ctx, q.jobType, q.triggeredBy); err != nil {
				slog.Warn("job run failed", "jobType", q.jobType, "err", err)
			}
		}
	}
}

func (s *Service) tick(ctx context.Context, jobType string, every time.Duration) {
	if err := s.Enqueue(jobType, nil); err != nil {
		slog.Warn("job schedule failed", "jobType", jobType, "err", err)
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Enqueue(jobType, nil); err != nil {
				slog.Warn("job schedule failed", "jobType", jobType, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, jobType string, triggeredBy *int64, run Func) (Run, error) {
	started := time.Now()
	record, err := s.Runs.Start(ctx, jobType, triggeredBy)
	if err != nil {
		slog.Warn("job run insert failed", "jobType", jobType, "err", err)
		record = Run{JobType: jobType, Status: StatusRunning, TriggeredBy: triggeredBy, StartedAt: started}
	}

	details, runErr := run(ctx)
	status, errText := StatusCompleted, ""
	if runErr != nil {
		status, errText = StatusFailed, runErr.Error()
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		slog.Warn("job details marshal failed", "jobType", jobType, "err", err)
		detailsJSON = []byte("{}")
	}

	if record.ID > 0 {
		finished, err := s.Runs.Finish(ctx, record.ID, status, detailsJSON, errText)
		if err != nil {
			slog.Warn("job run update failed", "jobType", jobType, "runId", record.ID, "err", err)
		} else {
			record = finished
		}
	} else {
		now := time.Now()
		record.Status, record.Details, record.CompletedAt = status, detailsJSON, &now
		if errText != "" {
			record.Error = &errText
		}
	}
	slog.Info("job run finished", "jobType", jobType, "status", status, "duration", time.Since(started).String())
	return record, runErr
}
