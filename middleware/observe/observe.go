package observe

import (
	"github.com/ngicks/gapsched/scheduler"
)

type ObserveMiddleware struct {
	beforeObserver func(fired scheduler.Fired)
	afterObserver  func(fired scheduler.Fired)
}

// New creates ObserveMiddleware.
// beforeObserver is called before the inner handler, afterObserver after it returned normally.
// Either can be nil.
func New(beforeObserver, afterObserver func(fired scheduler.Fired)) *ObserveMiddleware {
	if beforeObserver == nil {
		beforeObserver = func(scheduler.Fired) {}
	}
	if afterObserver == nil {
		afterObserver = func(scheduler.Fired) {}
	}

	return &ObserveMiddleware{
		beforeObserver: beforeObserver,
		afterObserver:  afterObserver,
	}
}

func (mw *ObserveMiddleware) Middleware(handler scheduler.EventHandler) scheduler.EventHandler {
	return func(fired scheduler.Fired) {
		mw.beforeObserver(fired)
		handler(fired)
		mw.afterObserver(fired)
	}
}
