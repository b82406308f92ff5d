package cron

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ngicks/gapsched/scheduler"
)

var randomReader io.Reader = rand.Reader

// Jitter delays every occurrence of Row by a random duration in [Min, Max).
// Following occurrences are computed from the delayed time.
type Jitter struct {
	Row      RowLike
	Min, Max time.Duration
}

func (j Jitter) NextSchedule(now time.Time) (time.Time, error) {
	if j.Row == nil || j.Min < 0 || j.Max < j.Min {
		return time.Time{}, fmt.Errorf("%w: jitter min = %s, max = %s", ErrMalformed, j.Min, j.Max)
	}
	next, err := j.Row.NextSchedule(now)
	if err != nil {
		return time.Time{}, err
	}

	diff := j.Max - j.Min
	if diff == 0 {
		return next.Add(j.Min), nil
	}
	randBigVal, err := rand.Int(randomReader, big.NewInt(int64(diff)))
	if err != nil {
		return time.Time{}, err
	}
	return next.Add(j.Min + time.Duration(randBigVal.Int64())), nil
}

func (j Jitter) GetPayload() scheduler.Payload {
	return j.Row.GetPayload()
}
