package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/clock"
)

// Task is a deferred unit of work. The context is cancelled when shutdown
// gives up waiting for it.
type Task func(ctx context.Context)

// Scheduler runs named tasks after a delay and tracks them so shutdown can
// wait for the ones already running. At most one task per name is waiting
// or running at a time.
type Scheduler struct {
	clock  clock.Clock
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]*Handle
	active  map[string]*Handle
	closed  bool
	running sync.WaitGroup

	// OnPendingChange observes the pending count; used for metrics.
	OnPendingChange func(delta float64)
}

// Handle identifies a scheduled task.
type Handle struct {
	name      string
	timer     clock.Timer
	scheduler *Scheduler
}

// NewScheduler builds a scheduler on clk.
func NewScheduler(clk clock.Clock, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clock:   clk,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]*Handle),
		active:  make(map[string]*Handle),
	}
}

// After runs task once d has elapsed. If a task with the same name is
// already waiting or running, that task's handle is returned with
// scheduled false and task is discarded. It returns nil, false once the
// scheduler has been shut down.
func (s *Scheduler) After(d time.Duration, name string, task Task) (h *Handle, scheduled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn("scheduler closed, task dropped", zap.String("task", name))
		return nil, false
	}
	if existing, ok := s.pending[name]; ok {
		return existing, false
	}
	if existing, ok := s.active[name]; ok {
		return existing, false
	}

	h = &Handle{name: name, scheduler: s}
	s.pending[name] = h
	s.notify(1)
	h.timer = s.clock.AfterFunc(d, func() { s.fire(h, task) })
	return h, true
}

func (s *Scheduler) fire(h *Handle, task Task) {
	s.mu.Lock()
	if s.pending[h.name] != h {
		s.mu.Unlock()
		return
	}
	delete(s.pending, h.name)
	s.active[h.name] = h
	s.running.Add(1)
	s.mu.Unlock()
	s.notify(-1)

	defer s.running.Done()
	defer func() {
		s.mu.Lock()
		delete(s.active, h.name)
		s.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked", zap.String("task", h.name), zap.Any("panic", r))
		}
	}()
	task(s.ctx)
}

// Cancel stops the task if it has not started. It reports whether the
// task was prevented from running.
func (h *Handle) Cancel() bool {
	if h == nil {
		return false
	}
	s := h.scheduler
	s.mu.Lock()
	ok := s.pending[h.name] == h
	if ok {
		delete(s.pending, h.name)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	h.timer.Stop()
	s.notify(-1)
	return true
}

// Name is the task's name.
func (h *Handle) Name() string {
	return h.name
}

// Pending counts tasks waiting for their delay.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Shutdown drops tasks still waiting and waits for running ones to return.
// If ctx expires first the running tasks' context is cancelled and
// ctx.Err() is returned.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	dropped := len(s.pending)
	for name, h := range s.pending {
		h.timer.Stop()
		delete(s.pending, name)
	}
	s.mu.Unlock()
	if dropped > 0 {
		s.notify(-float64(dropped))
		s.logger.Info("scheduler dropped pending tasks", zap.Int("count", dropped))
	}

	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

func (s *Scheduler) notify(delta float64) {
	if s.OnPendingChange != nil {
		s.OnPendingChange(delta)
	}
}
