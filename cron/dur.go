package cron

import (
	"time"

	"github.com/ngicks/gapsched/scheduler"
)

// Duration emits Payload every Duration.
// Unlike "@every" expressions it is not rounded to seconds.
type Duration struct {
	Duration time.Duration
	Payload  scheduler.Payload
}

func (d Duration) NextSchedule(now time.Time) (time.Time, error) {
	if d.Duration <= 0 {
		return time.Time{}, ErrMalformed
	}
	return now.Add(d.Duration), nil
}

// Next implements cron.Schedule.
func (d Duration) Next(t time.Time) time.Time {
	next, _ := d.NextSchedule(t)
	return next
}

func (d Duration) GetPayload() scheduler.Payload {
	return d.Payload
}
