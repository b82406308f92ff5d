package cron_test

import (
	"testing"
	"time"

	"github.com/ngicks/gapsched/cron"
	"github.com/ngicks/gapsched/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJitter(t *testing.T) {
	now := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	j := cron.Jitter{
		Row: cron.Duration{Duration: time.Minute, Payload: scheduler.Value("foo")},
		Min: time.Second,
		Max: 2 * time.Second,
	}

	for i := 0; i < 100; i++ {
		next, err := j.NextSchedule(now)
		require.NoError(t, err)
		delay := next.Sub(now.Add(time.Minute))
		assert.GreaterOrEqual(t, delay, time.Second)
		assert.Less(t, delay, 2*time.Second)
	}
	assert.Equal(t, "foo", j.GetPayload().Raw())

	fixed := cron.Jitter{Row: j.Row, Min: time.Second, Max: time.Second}
	next, err := fixed.NextSchedule(now)
	require.NoError(t, err)
	assert.True(t, now.Add(time.Minute+time.Second).Equal(next))

	for _, bad := range []cron.Jitter{
		{Row: j.Row, Min: -time.Second, Max: time.Second},
		{Row: j.Row, Min: 2 * time.Second, Max: time.Second},
		{Min: 0, Max: time.Second},
	} {
		_, err := bad.NextSchedule(now)
		assert.ErrorIs(t, err, cron.ErrMalformed)
	}
}
