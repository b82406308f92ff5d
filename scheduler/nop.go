package scheduler

var _ LoopHooks = NopHooks{}

// NopHooks does nothing.
type NopHooks struct{}

func (NopHooks) OnScheduled(_ Event)     {}
func (NopHooks) OnCancelled(_ Event)     {}
func (NopHooks) OnDispatched(_ Fired)    {}
func (NopHooks) OnDispatchError(_ error) {}
