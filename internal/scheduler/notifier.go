package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mkuznetsova/dobrobot/internal/service"
)

// Status describes the notifier lifecycle.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
)

// Notifier periodically sweeps for due publication reminders. Sweeps run
// sequentially on one goroutine, so a slow sweep delays the next tick
// instead of overlapping with it.
type Notifier struct {
	notifications service.NotificationService
	interval      time.Duration
	logger        *slog.Logger

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// NewNotifier creates a stopped notifier sweeping at the given interval.
func NewNotifier(notifications service.NotificationService, interval time.Duration, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		notifications: notifications,
		interval:      interval,
		logger:        logger,
		status:        StatusStopped,
	}
}

// Start launches the sweep loop. Starting a running notifier is a no-op.
func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.status == StatusRunning {
		n.logger.Warn("notifier already running")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel
	n.done = make(chan struct{})
	n.status = StatusRunning
	n.logger.Info("notifier started", "interval", n.interval)

	go n.loop(ctx, n.done)
}

func (n *Notifier) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.RunOnce(ctx)
		}
	}
}

// RunOnce performs one sweep. Exposed for deterministic tests and for a
// manual trigger; failures are logged, never fatal to the loop.
func (n *Notifier) RunOnce(ctx context.Context) {
	sent, err := n.notifications.CheckAndSend(ctx, time.Now().UTC())
	if err != nil {
		n.logger.Error("reminder sweep failed", "error", err)
		return
	}
	if sent > 0 {
		n.logger.Info("reminders sent", "count", sent)
	}
}

// Stop halts the loop and waits for an in-flight sweep to finish.
// Stopping a stopped notifier is a no-op.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if n.status != StatusRunning {
		n.mu.Unlock()
		return
	}
	cancel, done := n.cancel, n.done
	n.status = StatusStopped
	n.cancel = nil
	n.done = nil
	n.mu.Unlock()

	cancel()
	<-done
	n.logger.Info("notifier stopped")
}

// Status reports whether the sweep loop is running.
func (n *Notifier) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}
