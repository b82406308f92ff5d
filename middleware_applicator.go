package gapsched

import (
	"sync"

	"github.com/ngicks/gapsched/scheduler"
)

type HandlerFn = scheduler.EventHandler

type MiddlewareFunc = func(handler HandlerFn) HandlerFn

type MiddlewareApplicator[T Scheduler] struct {
	scheduler T
	mwMu      sync.Mutex
	mw        []MiddlewareFunc
	handler   HandlerFn
}

func NewMiddlewareApplicator[T Scheduler](scheduler T) *MiddlewareApplicator[T] {
	return &MiddlewareApplicator[T]{
		scheduler: scheduler,
		mw:        make([]MiddlewareFunc, 0),
	}
}

// SetEventHandler sets handler to inner scheduler with middlewares applied.
// Middlewares will be called in first-in-first-applied order.
func (ma *MiddlewareApplicator[T]) SetEventHandler(handler HandlerFn) {
	ma.mwMu.Lock()
	defer ma.mwMu.Unlock()

	ma.handler = handler
	ma.bind()
}

// SetHandler is SetEventHandler for a handler only interested in the value.
func (ma *MiddlewareApplicator[T]) SetHandler(fn func(value any)) {
	if fn == nil {
		ma.SetEventHandler(nil)
		return
	}
	ma.SetEventHandler(func(fired scheduler.Fired) {
		fn(fired.Value)
	})
}

// Scheduler is getter of inner sheculer.
func (ma *MiddlewareApplicator[T]) Scheduler() T {
	return ma.scheduler
}

// Use registers MiddlewareFunc.
// First registered one will be invoked first.
// If a handler is already set, it is re-bound with the new chain.
func (ma *MiddlewareApplicator[T]) Use(mw ...MiddlewareFunc) {
	ma.mwMu.Lock()
	defer ma.mwMu.Unlock()

	ma.mw = append(ma.mw, mw...)
	if ma.handler != nil {
		ma.bind()
	}
}

func (ma *MiddlewareApplicator[T]) bind() {
	if ma.handler == nil {
		// an unset handler stays unset; the scheduler reports it.
		ma.scheduler.SetEventHandler(nil)
		return
	}
	ma.scheduler.SetEventHandler(ma.apply(ma.handler))
}

func (ma *MiddlewareApplicator[T]) apply(handler HandlerFn) HandlerFn {
	var wrapped HandlerFn
	wrapped = handler
	for i := len(ma.mw) - 1; i >= 0; i-- {
		handlerFunc := ma.mw[i]
		if handlerFunc != nil {
			wrapped = handlerFunc(wrapped)
		}
	}
	return wrapped
}
