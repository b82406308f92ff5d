package scheduler

import (
	"time"

	"github.com/google/uuid"
)

type PayloadKind int

const (
	// ValueKind payload is delivered verbatim.
	ValueKind PayloadKind = iota
	// DeferredKind payload is computed at fire time.
	DeferredKind
)

func (k PayloadKind) String() string {
	switch k {
	case ValueKind:
		return "value"
	case DeferredKind:
		return "deferred"
	}
	return "unknown"
}

// DeferredFn produces a value at fire time.
// Returning a nil value means there is nothing to deliver.
type DeferredFn = func() (any, error)

// Payload is either a plain value or a deferred computation.
type Payload struct {
	kind     PayloadKind
	value    any
	deferred DeferredFn
}

// Value creates a Payload delivered to the handler as is, including nil.
func Value(v any) Payload {
	return Payload{kind: ValueKind, value: v}
}

// Deferred creates a Payload whose fn is invoked on the loop goroutine when the event fires.
// A non-nil result of fn is delivered instead of fn itself.
func Deferred(fn DeferredFn) Payload {
	return Payload{kind: DeferredKind, deferred: fn}
}

func (p Payload) Kind() PayloadKind {
	return p.kind
}

// Raw returns the value of a ValueKind payload.
// It is nil for DeferredKind.
func (p Payload) Raw() any {
	return p.value
}

// Resolve returns the value to be delivered.
// ok is false if p is deferred and it produced nil or an error.
func (p Payload) Resolve() (v any, ok bool, err error) {
	if p.kind == ValueKind {
		return p.value, true, nil
	}
	if p.deferred == nil {
		return nil, false, nil
	}
	v, err = p.deferred()
	if err != nil {
		return nil, false, err
	}
	return v, v != nil, nil
}

// Handle identifies an Event in the store that created it.
// It stays valid after the event is gone; Cancel then reports EventNotFound.
type Handle struct {
	storeId uuid.UUID
	seq     uint64
	fireAt  time.Time
	id      string
}

func (h Handle) Id() string {
	return h.id
}

func (h Handle) FireAt() time.Time {
	return h.fireAt
}

func (h Handle) IsZero() bool {
	return h.storeId == uuid.Nil
}

// Equal reports whether h and other point to the same event.
func (h Handle) Equal(other Handle) bool {
	return h.storeId == other.storeId && h.seq == other.seq
}

// Event is an immutable pair of fire time and payload.
type Event struct {
	handle    Handle
	payload   Payload
	createdAt time.Time
}

func (e Event) Handle() Handle {
	return e.handle
}

func (e Event) Id() string {
	return e.handle.id
}

func (e Event) FireAt() time.Time {
	return e.handle.fireAt
}

func (e Event) Payload() Payload {
	return e.payload
}

func (e Event) CreatedAt() time.Time {
	return e.createdAt
}

// Fired is what the Dispatch Binding receives for each delivered event.
type Fired struct {
	Event Event
	// Value is the payload value or the result of a deferred payload.
	Value        any
	DispatchedAt time.Time
}

// Delay is how late the event was dispatched.
func (f Fired) Delay() time.Duration {
	return f.DispatchedAt.Sub(f.Event.FireAt())
}
