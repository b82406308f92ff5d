package scheduler

import (
	"fmt"
	"sync"

	"github.com/ngicks/gapsched/common"
)

// EventHandler receives each fired event.
type EventHandler = func(fired Fired)

// dispatchBinding is the single handler slot. Last write wins.
type dispatchBinding struct {
	mu      sync.RWMutex
	handler EventHandler
}

func (b *dispatchBinding) set(handler EventHandler) {
	b.mu.Lock()
	b.handler = handler
	b.mu.Unlock()
}

func (b *dispatchBinding) get() EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.handler
}

// dispatcher pushes popped events through the binding.
// It never lets a panic escape; failures go to hooks.OnDispatchError.
type dispatcher struct {
	binding *dispatchBinding
	hooks   LoopHooks
	getNow  common.GetNow
}

func newDispatcher(binding *dispatchBinding, hooks LoopHooks, getNow common.GetNow) *dispatcher {
	if binding == nil || hooks == nil || getNow == nil {
		panic(fmt.Errorf(
			"%w: one or more of aruguments is nil. binding is nil=[%t], hooks is nil=[%t], getNow is nil=[%t]",
			ErrInvalidArg,
			binding == nil,
			hooks == nil,
			getNow == nil,
		))
	}
	return &dispatcher{
		binding: binding,
		hooks:   hooks,
		getNow:  getNow,
	}
}

func (d *dispatcher) Dispatch(ev Event) {
	// deferred payloads run even without a handler; they may carry side effects.
	v, ok, err := resolve(ev)
	if err != nil {
		d.hooks.OnDispatchError(err)
		return
	}
	if !ok {
		return
	}

	handler := d.binding.get()
	if handler == nil {
		d.hooks.OnDispatchError(&DispatchError{Handle: ev.Handle(), Kind: NoHandler})
		return
	}

	fired := Fired{
		Event:        ev,
		Value:        v,
		DispatchedAt: d.getNow.GetNow(),
	}
	if err := callHandler(handler, fired); err != nil {
		d.hooks.OnDispatchError(err)
		return
	}
	d.hooks.OnDispatched(fired)
}

func resolve(ev Event) (v any, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, ok = nil, false
			err = &DispatchError{
				Handle: ev.Handle(),
				Kind:   DeferredPanicked,
				Err:    &PanicError{Recovered: rec},
			}
		}
	}()
	v, ok, err = ev.Payload().Resolve()
	if err != nil {
		return nil, false, &DispatchError{Handle: ev.Handle(), Kind: DeferredFailed, Err: err}
	}
	return v, ok, nil
}

func callHandler(handler EventHandler, fired Fired) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &DispatchError{
				Handle: fired.Event.Handle(),
				Kind:   HandlerPanicked,
				Err:    &PanicError{Recovered: rec},
			}
		}
	}()
	handler(fired)
	return nil
}
