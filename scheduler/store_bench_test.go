package scheduler_test

import (
	"testing"
	"time"

	"github.com/ngicks/gapsched/scheduler"
)

func BenchmarkStore_Insert_10000_sameTime(b *testing.B) {
	now := time.Now()
	for n := 0; n < b.N; n++ {
		s := scheduler.NewStore(&getNowDummyImpl{dummy: now})
		for i := 0; i < 10000; i++ {
			s.Insert(scheduler.Value(i), now)
		}
	}
}

func BenchmarkStore_Remove_10000_halfCancelled(b *testing.B) {
	now := time.Now()
	for n := 0; n < b.N; n++ {
		b.StopTimer()
		s := scheduler.NewStore(&getNowDummyImpl{dummy: now})
		handles := make([]scheduler.Handle, 0, 10000)
		for i := 0; i < 10000; i++ {
			handles = append(handles, s.Insert(scheduler.Value(i), now.Add(time.Duration(i%100)*time.Millisecond)).Handle())
		}
		b.StartTimer()
		for i := 0; i < len(handles); i += 2 {
			_, _ = s.Remove(handles[i])
		}
	}
}
