package queue

import (
	"context"
	"time"

	"github.com/grassigrosso/lead-relay/internal/logger"
)

// Sweeper drives the retry queue on a fixed interval. It is a
// background housekeeping task owned by the service lifecycle: started
// once at process start, stopped on shutdown, never a primary workload.
type Sweeper struct {
	queue        *RetryQueue
	interval     time.Duration
	shutdownChan chan struct{}

	// OnTick, when set, runs once per tick after the sweep. The relay
	// uses it for guard state garbage collection.
	OnTick func(now time.Time)
}

// NewSweeper creates a Sweeper for the given queue
func NewSweeper(q *RetryQueue, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Sweeper{
		queue:        q,
		interval:     interval,
		shutdownChan: make(chan struct{}),
	}
}

// Start begins the sweep loop. It blocks until the context is cancelled
// or Shutdown is called, so run it in its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	logger.Info(ctx, "Starting queue sweeper", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context cancelled, stopping queue sweeper")
			return

		case <-s.shutdownChan:
			logger.Info(ctx, "Shutdown requested, stopping queue sweeper")
			return

		case <-ticker.C:
			s.queue.Process(ctx)
			if s.OnTick != nil {
				s.OnTick(time.Now())
			}
		}
	}
}

// Shutdown signals the sweeper to stop
func (s *Sweeper) Shutdown() {
	close(s.shutdownChan)
}
