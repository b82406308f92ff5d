package cron_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ngicks/gapsched/cron"
	"github.com/stretchr/testify/require"
)

type fixedNextScheduler struct {
	next time.Time
	err  error
}

func (s fixedNextScheduler) NextSchedule(now time.Time) (time.Time, error) {
	return s.next, s.err
}

func TestScheduleState(t *testing.T) {
	nextScheduler := cron.Duration{
		Duration: time.Second,
	}
	now := time.Now()
	state := cron.NewScheduleState(nextScheduler, now)

	for i := 0; i < 100; i++ {
		same, count, next, err := state.Next()
		require.NoError(t, err)
		require.Equal(t, false, same)
		require.Equal(t, i, count)
		require.Equal(t, now.Add(time.Duration(i+1)*time.Second).Equal(next), true)
	}

	fixed := time.Date(2022, 1, 1, 1, 0, 0, 0, time.UTC)
	state = cron.NewScheduleState(fixedNextScheduler{next: fixed}, fixed.Add(-time.Hour))

	for i := 0; i < 100; i++ {
		same, count, next, err := state.Next()
		require.NoError(t, err)
		if i == 0 {
			require.Equal(t, false, same)
		} else {
			require.Equal(t, true, same)
		}
		require.Equal(t, i, count)
		require.Equal(t, fixed.Equal(next), true)
	}

	sampleErr := errors.New("sample")
	state = cron.NewScheduleState(fixedNextScheduler{err: sampleErr}, now)
	_, count, _, err := state.Next()
	require.ErrorIs(t, err, sampleErr)
	require.Equal(t, 0, count)
	_, count, _, _ = state.Next()
	require.Equal(t, 0, count, "must not advance on error")
}
