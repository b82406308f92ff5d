package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ngicks/gapsched/common"
)

const DefaultInterval = 100 * time.Millisecond

// TimerLoop polls the Store and dispatches every due event.
//
// Each sweep drains all due events without sleeping in between,
// then the loop waits one interval. Dispatch latency is bounded by the interval.
type TimerLoop struct {
	workingState
	store     *Store
	dispatch  func(ev Event)
	getNow    common.GetNow
	interval  time.Duration
	newTicker common.TickerFactory
}

// NewTimerLoop creates a TimerLoop.
//
// panic: when one or more of arguments is nil or interval is not positive.
func NewTimerLoop(
	store *Store,
	dispatch func(ev Event),
	getNow common.GetNow,
	interval time.Duration,
	newTicker common.TickerFactory,
) *TimerLoop {
	if store == nil || dispatch == nil || getNow == nil || newTicker == nil || interval <= 0 {
		panic(fmt.Errorf(
			"%w: one or more of aruguments is nil or invalid. "+
				"store is nil=[%t], dispatch is nil=[%t], getNow is nil=[%t], newTicker is nil=[%t], interval=[%s]",
			ErrInvalidArg,
			store == nil,
			dispatch == nil,
			getNow == nil,
			newTicker == nil,
			interval,
		))
	}
	return &TimerLoop{
		store:     store,
		dispatch:  dispatch,
		getNow:    getNow,
		interval:  interval,
		newTicker: newTicker,
	}
}

// Run sweeps the store until ctx is cancelled. It returns nil on cancellation.
//
// If ctx is nil, Run immediately returns ErrInvalidArg.
// If the loop is already running in some goroutine, Run immediately returns ErrAlreadyStarted.
func (l *TimerLoop) Run(ctx context.Context) error {
	if ctx == nil {
		return ErrInvalidArg
	}
	if !l.setWorking() {
		return ErrAlreadyStarted
	}
	defer l.setWorking(false)

	ticker := l.newTicker(l.interval)
	defer ticker.Stop()

	for {
		l.Drain()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.GetChan():
		}
	}
}

// Drain dispatches due events until none is left, returning how many were popped.
// The store lock is not held while dispatching.
func (l *TimerLoop) Drain() (popped int) {
	for {
		ev, ok := l.store.PopDue(l.getNow.GetNow())
		if !ok {
			return
		}
		popped++
		l.dispatch(ev)
	}
}

func (l *TimerLoop) Interval() time.Duration {
	return l.interval
}
