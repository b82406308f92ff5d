package deadline

import (
	"fmt"
	"time"

	"github.com/ngicks/gapsched/common"
	"github.com/ngicks/gapsched/scheduler"
)

type DeadlineExceededError struct {
	Handle     scheduler.Handle
	FireAt     time.Time
	Dispatched time.Time
	Deadline   time.Duration
}

func (e *DeadlineExceededError) Error() string {
	return fmt.Sprintf(
		"deadline exceeded: event id = %s, fire at = %s, but dispatched at = %s, deadline = %s",
		e.Handle.Id(),
		e.FireAt.Format(time.RFC3339Nano),
		e.Dispatched.Format(time.RFC3339Nano),
		e.Deadline,
	)
}

// DeadlineMiddleware drops an event if it reached the handler later than deadline after its fire time.
type DeadlineMiddleware struct {
	deadline   time.Duration
	getNow     common.GetNow
	shouldSkip func(fired scheduler.Fired) bool
	onDropped  func(err *DeadlineExceededError)
}

type Option = func(mw *DeadlineMiddleware) *DeadlineMiddleware

// WithNowGetter replaces the clock used to measure lateness.
// Without it the dispatch time recorded by the scheduler is used.
func WithNowGetter(getNow common.GetNow) Option {
	return func(mw *DeadlineMiddleware) *DeadlineMiddleware {
		mw.getNow = getNow
		return mw
	}
}

// WithSkip exempts events for which shouldSkip returns true.
func WithSkip(shouldSkip func(fired scheduler.Fired) bool) Option {
	return func(mw *DeadlineMiddleware) *DeadlineMiddleware {
		mw.shouldSkip = shouldSkip
		return mw
	}
}

// New creates DeadlineMiddleware. onDropped is called with each dropped event and may be nil.
//
// panic: if deadline is negative.
func New(deadline time.Duration, onDropped func(err *DeadlineExceededError), options ...Option) *DeadlineMiddleware {
	if deadline < 0 {
		panic(fmt.Errorf("%w: negative deadline %s", scheduler.ErrInvalidArg, deadline))
	}
	if onDropped == nil {
		onDropped = func(*DeadlineExceededError) {}
	}
	mw := &DeadlineMiddleware{
		deadline:   deadline,
		shouldSkip: func(scheduler.Fired) bool { return false },
		onDropped:  onDropped,
	}
	for _, opt := range options {
		mw = opt(mw)
	}
	return mw
}

func (mw *DeadlineMiddleware) Middleware(handler scheduler.EventHandler) scheduler.EventHandler {
	return func(fired scheduler.Fired) {
		if mw.shouldSkip(fired) {
			handler(fired)
			return
		}

		dispatched := fired.DispatchedAt
		if mw.getNow != nil {
			dispatched = mw.getNow.GetNow()
		}
		if dispatched.Sub(fired.Event.FireAt()) > mw.deadline {
			mw.onDropped(&DeadlineExceededError{
				Handle:     fired.Event.Handle(),
				FireAt:     fired.Event.FireAt(),
				Dispatched: dispatched,
				Deadline:   mw.deadline,
			})
			return
		}
		handler(fired)
	}
}
