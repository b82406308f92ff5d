package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ngicks/gapsched"
	"github.com/ngicks/gapsched/cron"
	"github.com/ngicks/gapsched/scheduler"
)

func main() {
	sched := gapsched.New()

	var count int
	sched.SetHandler(func(value any) {
		count++
		fmt.Printf("<%s> %v\n", time.Now().Format(time.RFC3339Nano), value)
	})

	table := cron.NewTable(sched.Scheduler(), nil)
	if err := table.Add(
		"every-second",
		mustParse(cron.RowRaw{Schedule: "* * * * * *", Payload: "cron tick"}),
		nil,
	); err != nil {
		panic(err)
	}
	if err := table.Add(
		"half-second",
		cron.Duration{
			Duration: 500 * time.Millisecond,
			Payload: scheduler.Deferred(func() (any, error) {
				return fmt.Sprintf("computed at fire time, %d delivered so far", count), nil
			}),
		},
		// five times, then stop.
		func(payloadErr error, callCount int) bool { return callCount < 4 },
	); err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := table.Start(); err != nil {
		panic(err)
	}
	defer table.Stop()

	if err := sched.Scheduler().Run(ctx); err != nil {
		panic(err)
	}
}

func mustParse(raw cron.RowRaw) cron.Row {
	row, err := raw.Parse()
	if err != nil {
		panic(err)
	}
	return row
}
