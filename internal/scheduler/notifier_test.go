package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingChecker struct {
	calls atomic.Int32
	err   error
	block chan struct{} // when set, CheckAndSend waits on it
}

func (c *countingChecker) CheckAndSend(ctx context.Context, _ time.Time) (int, error) {
	c.calls.Add(1)
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
		}
	}
	if c.err != nil {
		return 0, c.err
	}
	return 1, nil
}

func newNotifier(checker *countingChecker, interval time.Duration) *Notifier {
	return NewNotifier(checker, interval, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNotifier_StartStopLifecycle(t *testing.T) {
	checker := &countingChecker{}
	n := newNotifier(checker, 5*time.Millisecond)

	assert.Equal(t, StatusStopped, n.Status())

	n.Start(context.Background())
	assert.Equal(t, StatusRunning, n.Status())

	require.Eventually(t, func() bool { return checker.calls.Load() >= 2 },
		time.Second, time.Millisecond)

	n.Stop()
	assert.Equal(t, StatusStopped, n.Status())

	after := checker.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, checker.calls.Load())
}

func TestNotifier_DoubleStartIsNoop(t *testing.T) {
	checker := &countingChecker{}
	n := newNotifier(checker, time.Hour)

	n.Start(context.Background())
	n.Start(context.Background())
	defer n.Stop()

	assert.Equal(t, StatusRunning, n.Status())
}

func TestNotifier_StopWhenStoppedIsNoop(t *testing.T) {
	n := newNotifier(&countingChecker{}, time.Hour)

	n.Stop()

	assert.Equal(t, StatusStopped, n.Status())
}

func TestNotifier_SweepErrorKeepsLoopAlive(t *testing.T) {
	checker := &countingChecker{err: errors.New("db down")}
	n := newNotifier(checker, 5*time.Millisecond)

	n.Start(context.Background())
	defer n.Stop()

	require.Eventually(t, func() bool { return checker.calls.Load() >= 3 },
		time.Second, time.Millisecond)
}

func TestNotifier_StopWaitsForInflightSweep(t *testing.T) {
	checker := &countingChecker{block: make(chan struct{})}
	n := newNotifier(checker, time.Millisecond)

	n.Start(context.Background())
	require.Eventually(t, func() bool { return checker.calls.Load() >= 1 },
		time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		n.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop did not return")
	}
	assert.Equal(t, StatusStopped, n.Status())
}

func TestNotifier_RunOnce(t *testing.T) {
	checker := &countingChecker{}
	n := newNotifier(checker, time.Hour)

	n.RunOnce(context.Background())

	assert.Equal(t, int32(1), checker.calls.Load())
}
