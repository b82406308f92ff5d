package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/ngicks/gapsched/common"
)

// Scheduler emits payloads to a single handler at their fire time.
//
// Scheduling and cancellation are safe from any goroutine.
// Exactly one loop goroutine dispatches, outside the store lock.
type Scheduler struct {
	workingState

	store   *Store
	binding *dispatchBinding
	loop    *TimerLoop
	hooks   LoopHooks
	getNow  common.GetNow

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(options ...Option) *Scheduler {
	c := defaultConfig()
	for _, opt := range options {
		opt(&c)
	}

	hooks := c.buildHooks()
	store := NewStore(c.getNow)
	binding := &dispatchBinding{}
	d := newDispatcher(binding, hooks, c.getNow)

	return &Scheduler{
		store:   store,
		binding: binding,
		loop:    NewTimerLoop(store, d.Dispatch, c.getNow, c.interval, c.newTicker),
		hooks:   hooks,
		getNow:  c.getNow,
	}
}

// ScheduleAt schedules payload to be emitted at the absolute time at.
// A time in the past is emitted on the next sweep.
func (s *Scheduler) ScheduleAt(at time.Time, payload Payload) Handle {
	ev := s.store.Insert(payload, at)
	s.hooks.OnScheduled(ev)
	return ev.Handle()
}

// ScheduleAfter schedules payload to be emitted after delay.
func (s *Scheduler) ScheduleAfter(delay time.Duration, payload Payload) Handle {
	return s.ScheduleAt(s.getNow.GetNow().Add(delay), payload)
}

// ScheduleNow schedules payload to be emitted as soon as possible.
func (s *Scheduler) ScheduleNow(payload Payload) Handle {
	return s.ScheduleAt(s.getNow.GetNow(), payload)
}

// Cancel removes the event h points to.
//
// Cancel returns an error of EventNotFound kind (see IsEventNotFound)
// if the event is already dispatched, already cancelled or never existed.
// Losing a race with the loop is an expected outcome.
func (s *Scheduler) Cancel(h Handle) error {
	ev, err := s.store.Remove(h)
	if err != nil {
		return err
	}
	s.hooks.OnCancelled(ev)
	return nil
}

// SetHandler sets fn as the handler receiving the value of each fired event.
// It replaces any handler set before. Passing nil unsets the handler.
func (s *Scheduler) SetHandler(fn func(value any)) {
	if fn == nil {
		s.binding.set(nil)
		return
	}
	s.binding.set(func(fired Fired) {
		fn(fired.Value)
	})
}

// SetEventHandler is the same as SetHandler but handler receives the whole Fired record.
func (s *Scheduler) SetEventHandler(handler EventHandler) {
	s.binding.set(handler)
}

// Run runs the timer loop in the caller's goroutine until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if ctx == nil {
		return ErrInvalidArg
	}
	if !s.setWorking() {
		return ErrAlreadyStarted
	}
	defer s.setWorking(false)
	return s.loop.Run(ctx)
}

// Start runs the timer loop in a new goroutine and returns immediately.
// The loop stops when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if ctx == nil {
		return ErrInvalidArg
	}
	if !s.setWorking() {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer s.setWorking(false)
		_ = s.loop.Run(ctx)
	}()
	return nil
}

// Stop stops the loop started by Start and waits for it to return.
// Pending events stay in the store.
//
// Stop returns ErrNotStarted if Start has not been called since the last Stop.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return ErrNotStarted
	}
	cancel()
	<-done
	return nil
}

// Drain runs one drain sweep in the caller's goroutine.
// It is meant for a scheduler whose loop is not running;
// sweeping concurrently with the loop loses the ordering of dispatch.
func (s *Scheduler) Drain() int {
	return s.loop.Drain()
}

func (s *Scheduler) Len() int {
	return s.store.Len()
}

// Pending returns pending events in dispatch order.
func (s *Scheduler) Pending() []Event {
	return s.store.Pending()
}

func (s *Scheduler) Now() time.Time {
	return s.getNow.GetNow()
}
