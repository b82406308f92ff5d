package common

import "time"

// GetNow abstracts the wall clock so that callers can be tested against a fixed time.
type GetNow interface {
	GetNow() time.Time
}

type GetNowImpl struct {
}

func (g GetNowImpl) GetNow() time.Time {
	return time.Now()
}
