package scheduler

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlreadyStarted = errors.New("already started")
	ErrNotStarted     = errors.New("not started")
	ErrInvalidArg     = errors.New("invalid argument")
)

type StoreErrorKind string

const (
	EventNotFound StoreErrorKind = "event_not_found"
)

// StoreError is returned from the Event Store.
// Handle is the one passed by the caller.
type StoreError struct {
	Handle Handle
	Kind   StoreErrorKind
}

func (e *StoreError) Error() string {
	return fmt.Sprintf(
		"error: kind = %s, id = %s, fire_at = %s",
		e.Kind,
		e.Handle.Id(),
		e.Handle.FireAt().Format(time.RFC3339Nano),
	)
}

func IsStoreErr(err error, kind StoreErrorKind) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Kind == kind
	}
	return false
}

// IsEventNotFound reports whether err is EventNotFound.
// It does not tell an already fired event from a never scheduled one.
func IsEventNotFound(err error) bool {
	return IsStoreErr(err, EventNotFound)
}

type DispatchErrorKind string

const (
	NoHandler        DispatchErrorKind = "no_handler"
	DeferredFailed   DispatchErrorKind = "deferred_failed"
	DeferredPanicked DispatchErrorKind = "deferred_panicked"
	HandlerPanicked  DispatchErrorKind = "handler_panicked"
)

// DispatchError is reported to LoopHooks.OnDispatchError
// when a popped event could not be delivered.
// The event is consumed anyway.
type DispatchError struct {
	Handle Handle
	Kind   DispatchErrorKind
	// Err is the error returned from a deferred payload,
	// or a *PanicError if something panicked.
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf(
		"dispatch error: kind = %s, id = %s, raw error = %+v",
		e.Kind,
		e.Handle.Id(),
		e.Err,
	)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

func IsDispatchErr(err error, kind DispatchErrorKind) bool {
	var dispatchErr *DispatchError
	if errors.As(err, &dispatchErr) {
		return dispatchErr.Kind == kind
	}
	return false
}

func IsNoHandler(err error) bool {
	return IsDispatchErr(err, NoHandler)
}
func IsDeferredFailed(err error) bool {
	return IsDispatchErr(err, DeferredFailed)
}
func IsDeferredPanicked(err error) bool {
	return IsDispatchErr(err, DeferredPanicked)
}
func IsHandlerPanicked(err error) bool {
	return IsDispatchErr(err, HandlerPanicked)
}

// PanicError holds a value recovered from a panic.
type PanicError struct {
	Recovered any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("recovered from panic: %v", e.Recovered)
}
