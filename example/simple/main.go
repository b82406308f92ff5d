package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ngicks/gapsched"
	logmw "github.com/ngicks/gapsched/middleware/log"
	recovermw "github.com/ngicks/gapsched/middleware/recover"
	"github.com/ngicks/gapsched/scheduler"
)

func main() {
	logger := scheduler.NewStdLogger(log.New(os.Stdout, "", log.LstdFlags))

	sched := gapsched.New(
		scheduler.WithInterval(50*time.Millisecond),
		scheduler.WithLogger(logger, false),
	)
	sched.Use(
		recovermw.New(func(fired scheduler.Fired, err *recovermw.RecoveredError) {
			logger.Error(err, "event_id", fired.Event.Id())
		}).Middleware,
		logmw.New(logger, logmw.LogPayload()).Middleware,
	)

	done := make(chan struct{})
	sched.SetHandler(func(value any) {
		fmt.Printf("fired: %v\n", value)
		if value == "C" {
			close(done)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := sched.Scheduler().Start(ctx); err != nil {
		panic(err)
	}
	defer sched.Scheduler().Stop()

	s := sched.Scheduler()
	s.ScheduleAfter(200*time.Millisecond, scheduler.Value("B"))
	s.ScheduleNow(scheduler.Value("A"))
	x := s.ScheduleAfter(300*time.Millisecond, scheduler.Value("X"))
	s.ScheduleAfter(400*time.Millisecond, scheduler.Deferred(func() (any, error) {
		return "C", nil
	}))

	if err := s.Cancel(x); err != nil {
		panic(err)
	}
	fmt.Printf("cancelled %s\n", x.Id())

	<-done
}
