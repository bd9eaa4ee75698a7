package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Refresher is satisfied by *Service.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshScheduler refetches the tables on a fixed interval.
type RefreshScheduler struct {
	target   Refresher
	interval time.Duration
	onResult func(err error)

	mu           sync.RWMutex
	running      bool
	lastRefresh  time.Time
	lastError    error
	refreshCount int
	failureCount int
}

// SchedulerStatus contains information about the scheduler state.
type SchedulerStatus struct {
	Running      bool          `json:"running"`
	Interval     time.Duration `json:"interval"`
	LastRefresh  time.Time     `json:"last_refresh"`
	NextRefresh  time.Time     `json:"next_refresh"`
	RefreshCount int           `json:"refresh_count"`
	FailureCount int           `json:"failure_count"`
	LastError    string        `json:"last_error,omitempty"`
}

// NewRefreshScheduler creates a scheduler refreshing target every interval.
// onResult, if set, is called after each attempt.
func NewRefreshScheduler(target Refresher, interval time.Duration, onResult func(err error)) *RefreshScheduler {
	return &RefreshScheduler{
		target:   target,
		interval: interval,
		onResult: onResult,
	}
}

// Run refreshes on every tick until ctx is cancelled. It returns an error
// if the interval is not positive or the scheduler is already running.
func (s *RefreshScheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", s.interval)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *RefreshScheduler) refresh(ctx context.Context) {
	err := s.target.Refresh(ctx)

	s.mu.Lock()
	s.lastRefresh = time.Now()
	s.lastError = err
	if err != nil {
		s.failureCount++
	} else {
		s.refreshCount++
	}
	s.mu.Unlock()

	if s.onResult != nil {
		s.onResult(err)
	}
}

// Status returns the current scheduler status.
func (s *RefreshScheduler) Status() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := SchedulerStatus{
		Running:      s.running,
		Interval:     s.interval,
		LastRefresh:  s.lastRefresh,
		RefreshCount: s.refreshCount,
		FailureCount: s.failureCount,
	}
	if s.running && !s.lastRefresh.IsZero() {
		status.NextRefresh = s.lastRefresh.Add(s.interval)
	}
	if s.lastError != nil {
		status.LastError = s.lastError.Error()
	}
	return status
}

// IsRunning returns whether the scheduler is currently running.
func (s *RefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
