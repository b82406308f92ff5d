package common

import "time"

// ITicker is the polling source of a sweep loop.
type ITicker interface {
	GetChan() <-chan time.Time
	Stop()
}

// TickerFactory creates an ITicker emitting at the given interval.
type TickerFactory = func(interval time.Duration) ITicker

type TickerImpl struct {
	*time.Ticker
}

func NewTickerImpl(interval time.Duration) ITicker {
	return &TickerImpl{time.NewTicker(interval)}
}

func (t *TickerImpl) GetChan() <-chan time.Time {
	return t.C
}

func (t *TickerImpl) Stop() {
	t.Ticker.Stop()
	// non-blocking receive.
	// drops a tick that was already buffered before Stop.
	select {
	case <-t.C:
	default:
	}
}
