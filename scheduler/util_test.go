package scheduler_test

import (
	"sync"
	"time"

	"github.com/ngicks/gapsched/common"
	"github.com/ngicks/gapsched/scheduler"
)

var _ common.GetNow = new(getNowDummyImpl)
var _ common.ITicker = new(tickerDummyImpl)

type getNowDummyImpl struct {
	mu    sync.Mutex
	dummy time.Time
}

func (g *getNowDummyImpl) GetNow() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dummy
}

func (g *getNowDummyImpl) Set(t time.Time) {
	g.mu.Lock()
	g.dummy = t
	g.mu.Unlock()
}

func (g *getNowDummyImpl) Advance(d time.Duration) {
	g.mu.Lock()
	g.dummy = g.dummy.Add(d)
	g.mu.Unlock()
}

// tickerDummyImpl emits only when Tick is called.
type tickerDummyImpl struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newTickerDummy() *tickerDummyImpl {
	return &tickerDummyImpl{
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
}

func (t *tickerDummyImpl) GetChan() <-chan time.Time {
	return t.ch
}

func (t *tickerDummyImpl) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

// Tick blocks until the loop receives the tick, which means the previous sweep is done.
func (t *tickerDummyImpl) Tick() {
	t.ch <- time.Now()
}

// recorder collects handler calls.
type recorder struct {
	mu     sync.Mutex
	values []any
}

func (r *recorder) Handle(v any) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

func (r *recorder) Values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

// errHooks collects errors passed to OnDispatchError.
type errHooks struct {
	mu   sync.Mutex
	errs []error
}

func (h *errHooks) OnScheduled(_ scheduler.Event)  {}
func (h *errHooks) OnCancelled(_ scheduler.Event)  {}
func (h *errHooks) OnDispatched(_ scheduler.Fired) {}
func (h *errHooks) OnDispatchError(err error) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func (h *errHooks) Errors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]error, len(h.errs))
	copy(out, h.errs)
	return out
}
