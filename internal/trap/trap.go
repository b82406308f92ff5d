// Package trap provides a Scheduler that traps the bound handler for tests.
package trap

import (
	"sync"
	"time"

	"github.com/ngicks/gapsched/common"
	"github.com/ngicks/gapsched/scheduler"
)

type Scheduler struct {
	mu      sync.Mutex
	handler scheduler.EventHandler
	store   *scheduler.Store
}

func New() *Scheduler {
	return &Scheduler{store: scheduler.NewStore(common.GetNowImpl{})}
}

func (s *Scheduler) SetEventHandler(handler scheduler.EventHandler) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

func (s *Scheduler) Handler() scheduler.EventHandler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler
}

// Fire calls the trapped handler as if an event holding value fired at fireAt
// was dispatched at dispatchedAt. It returns the delivered record.
//
// panic: if no handler is trapped.
func (s *Scheduler) Fire(value any, fireAt, dispatchedAt time.Time) scheduler.Fired {
	handler := s.Handler()
	if handler == nil {
		panic("trap: no handler is set")
	}
	ev := s.store.Insert(scheduler.Value(value), fireAt)
	_, _ = s.store.Remove(ev.Handle())
	fired := scheduler.Fired{
		Event:        ev,
		Value:        value,
		DispatchedAt: dispatchedAt,
	}
	handler(fired)
	return fired
}
