package activestore

import (
	"context"
	"sync"
	"time"
)

// Trigger names what woke a scheduled task.
type Trigger string

const (
	TriggerOnline   Trigger = "online"   // connectivity returned
	TriggerVisible  Trigger = "visible"  // terminal came back to foreground
	TriggerInterval Trigger = "interval" // periodic timer
	TriggerManual   Trigger = "manual"   // operator-initiated retry
)

// Scheduler runs a task on a timer and on explicit wake triggers. It backs
// the "retry on reconnect" behavior for both the resolver refresh and the
// pending-operation replay: the owner of the environment signal (network
// watcher, window focus hook) calls Fire, and the scheduler serializes the
// runs.
type Scheduler struct {
	interval time.Duration
	task     func(ctx context.Context, trigger Trigger)

	mu      sync.Mutex
	wake    chan Trigger
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

func NewScheduler(interval time.Duration, task func(ctx context.Context, trigger Trigger)) *Scheduler {
	return &Scheduler{
		interval: interval,
		task:     task,
		wake:     make(chan Trigger, 4),
	}
}

// Start launches the scheduler loop. Subsequent calls are no-ops until Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true
	go s.loop(ctx, s.done)
}

// Stop cancels the loop and waits for the in-flight run, if any, to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.started = false
	s.mu.Unlock()

	cancel()
	<-done
}

// Fire wakes the task outside the timer cadence. Never blocks; when the
// scheduler is already saturated with wakes the extra trigger is dropped,
// the pending run covers it.
func (s *Scheduler) Fire(trigger Trigger) {
	select {
	case s.wake <- trigger:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.task(ctx, TriggerInterval)
		case trigger := <-s.wake:
			s.task(ctx, trigger)
		}
	}
}
