package cron

import (
	"errors"
	"sync"
	"time"

	"github.com/ngicks/gapsched/scheduler"
)

var (
	ErrOnceTask         = errors.New("row returned same schedule time")
	ErrAlreadyScheduled = errors.New("row is already scheduled")
)

// Scheduler is the part of *scheduler.Scheduler Rescheduler uses.
type Scheduler interface {
	ScheduleAt(at time.Time, payload scheduler.Payload) scheduler.Handle
	Cancel(h scheduler.Handle) error
}

var _ Scheduler = (*scheduler.Scheduler)(nil)

type RowLike interface {
	NextScheduler
	GetPayload() scheduler.Payload
}

// Rescheduler keeps exactly one occurrence of a RowLike scheduled.
//
// Each occurrence is a deferred payload. When it fires it schedules the next occurrence,
// then resolves the payload of the row; the result is what the handler receives.
type Rescheduler struct {
	mu               sync.Mutex
	err              error
	scheduler        Scheduler
	row              RowLike
	state            *ScheduleState
	scheduled        bool
	gen              uint64
	handle           scheduler.Handle
	shouldReschedule func(payloadErr error, callCount int) bool
}

// NewRescheduler creates a Rescheduler. Occurrences are computed from whence onwards.
// If shouldReschedule is nil, row is rescheduled after every occurrence.
// Otherwise it is called with the error of resolving the payload
// and the zero-based count of the occurrence that has fired.
func NewRescheduler(
	row RowLike,
	whence time.Time,
	shouldReschedule func(payloadErr error, callCount int) bool,
	scheduler Scheduler,
) *Rescheduler {
	return &Rescheduler{
		row:              row,
		state:            NewScheduleState(row, whence),
		scheduler:        scheduler,
		shouldReschedule: shouldReschedule,
	}
}

// Schedule starts scheduling.
//
// ErrAlreadyScheduled is returned if second or more call is without preceding Cancel.
//
// ErrOnceTask is returned if RowLike returned a time not after its previous occurrence,
// which means the row is done.
//
// An error of NextSchedule is returned as is, e.g. ErrNoNext.
//
// Errors are sticky. Once Schedule returned it, Schedule always return that error.
func (c *Rescheduler) Schedule() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	if c.scheduled {
		return ErrAlreadyScheduled
	}
	c.scheduled = true
	c.gen++
	return c.schedule(c.gen)
}

func (c *Rescheduler) schedule(gen uint64) error {
	same, callCount, next, err := c.state.Next()
	if err != nil {
		c.err = err
		c.scheduled = false
		return c.err
	}
	if same {
		// the row has nothing after its previous occurrence.
		c.err = ErrOnceTask
		c.scheduled = false
		return c.err
	}

	payload := c.row.GetPayload()
	c.handle = c.scheduler.ScheduleAt(next, scheduler.Deferred(func() (any, error) {
		return c.fire(gen, payload, callCount)
	}))
	return nil
}

func (c *Rescheduler) fire(gen uint64, payload scheduler.Payload, callCount int) (any, error) {
	v, ok, err := resolve(payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen == c.gen && c.scheduled {
		c.handle = scheduler.Handle{}
		if c.shouldReschedule == nil || c.shouldReschedule(err, callCount) {
			_ = c.schedule(gen)
		} else {
			c.scheduled = false
		}
	}

	if err != nil || !ok {
		return nil, err
	}
	return v, nil
}

func resolve(payload scheduler.Payload) (v any, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, ok, err = nil, false, &scheduler.PanicError{Recovered: rec}
		}
	}()
	return payload.Resolve()
}

// Cancel cancels the pending occurrence and stops rescheduling.
// An occurrence being dispatched at the moment is delivered but not rescheduled.
func (c *Rescheduler) Cancel() (cancelled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scheduled = false
	c.gen++
	if !c.handle.IsZero() {
		err := c.scheduler.Cancel(c.handle)
		c.handle = scheduler.Handle{}
		return err == nil
	}
	return
}

// Next returns the fire time of the pending occurrence.
func (c *Rescheduler) Next() (next time.Time, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle.IsZero() {
		return time.Time{}, false
	}
	return c.handle.FireAt(), true
}

// Err returns the sticky error, if any.
func (c *Rescheduler) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
