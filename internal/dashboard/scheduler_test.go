package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestRefreshScheduler_Ticks(t *testing.T) {
	target := &countingRefresher{}
	results := make(chan error, 16)
	s := NewRefreshScheduler(target, 10*time.Millisecond, func(err error) {
		select {
		case results <- err:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return target.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.IsRunning())
	assert.NoError(t, <-results)

	status := s.Status()
	assert.GreaterOrEqual(t, status.RefreshCount, 1)
	assert.Zero(t, status.FailureCount)
	assert.Equal(t, 10*time.Millisecond, status.Interval)

	cancel()
	require.NoError(t, <-done)
	assert.False(t, s.IsRunning())
}

func TestRefreshScheduler_RecordsFailures(t *testing.T) {
	target := &countingRefresher{err: errors.New("upstream down")}
	s := NewRefreshScheduler(target, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Status().FailureCount >= 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "upstream down", s.Status().LastError)
	assert.Zero(t, s.Status().RefreshCount)
}

func TestRefreshScheduler_RejectsBadInterval(t *testing.T) {
	s := NewRefreshScheduler(&countingRefresher{}, 0, nil)
	assert.Error(t, s.Run(context.Background()))
}

func TestRefreshScheduler_RejectsSecondRun(t *testing.T) {
	s := NewRefreshScheduler(&countingRefresher{}, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	require.Eventually(t, s.IsRunning, time.Second, 5*time.Millisecond)
	assert.Error(t, s.Run(ctx))
}

var _ Refresher = (*Service)(nil)
