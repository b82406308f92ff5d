package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/ngicks/gapsched"
	"github.com/ngicks/gapsched/cron"
	"github.com/ngicks/gapsched/journal"
	"github.com/ngicks/gapsched/middleware/deadline"
	logmw "github.com/ngicks/gapsched/middleware/log"
	recovermw "github.com/ngicks/gapsched/middleware/recover"
	"github.com/ngicks/gapsched/middleware/route"
	"github.com/ngicks/gapsched/scheduler"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	interval      time.Duration
	flushInterval time.Duration
	maxDelay      time.Duration
	runFor        time.Duration
	verbose       bool
	sqlLog        bool

	runFlags = []cli.Flag{
		cli.DurationFlag{
			Name:        "interval, i",
			Value:       scheduler.DefaultInterval,
			Usage:       "polling interval of the scheduler",
			Destination: &interval,
		},
		cli.DurationFlag{
			Name:        "flush-interval",
			Value:       journal.DefaultFlushInterval,
			Usage:       "interval of writing the journal",
			Destination: &flushInterval,
		},
		cli.DurationFlag{
			Name:        "max-delay",
			Value:       5 * time.Second,
			Usage:       "drop events dispatched later than this after their fire time",
			Destination: &maxDelay,
		},
		cli.DurationFlag{
			Name:        "for",
			Usage:       "stop after this duration (default: until interrupted)",
			Destination: &runFor,
		},
		cli.BoolFlag{
			Name:        "verbose, v",
			Usage:       "log every dispatch",
			Destination: &verbose,
		},
		cli.BoolFlag{
			Name:        "sql-log",
			Usage:       "log sql statements of the journal",
			Destination: &sqlLog,
		},
	}
)

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if interval <= 0 || flushInterval <= 0 {
		return printErr(ctx, "flags", fmt.Errorf("%w: intervals must be positive", scheduler.ErrInvalidArg))
	}

	tableJson, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return printErr(ctx, "read_table", err)
	}
	raws, err := cron.ParseTable(tableJson)
	if err != nil {
		return printErr(ctx, "parse_table", err)
	}

	stdLogger := scheduler.NewStdLogger(log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds))

	gormLogger := logger.Default.LogMode(logger.Silent)
	if sqlLog {
		gormLogger = logger.Default.LogMode(logger.Info)
	}
	db, err := journal.OpenDB(journalPath, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return printErr(ctx, "open_journal", err)
	}
	jr, err := journal.New(db, journal.WithFlushInterval(flushInterval), journal.WithLogger(stdLogger))
	if err != nil {
		return printErr(ctx, "open_journal", err)
	}
	defer jr.Close()

	sched := gapsched.New(
		scheduler.WithInterval(interval),
		scheduler.WithLogger(stdLogger, verbose),
		scheduler.WithHooks(jr),
	)

	router := route.New("type", func(fired scheduler.Fired, err error) {
		stdLogger.Error(err, "event_id", fired.Event.Id())
	}).
		Fallback(func(fired scheduler.Fired) {
			fmt.Printf("%s\t%s\t%s\n", fired.DispatchedAt.Format(time.RFC3339Nano), fired.Event.Id(), fired.Value)
		})
	for _, typ := range payloadTypes(raws) {
		typ := typ
		router.On(typ, func(fired scheduler.Fired) {
			fmt.Printf("%s\t%s\t[%s] %s\n", fired.DispatchedAt.Format(time.RFC3339Nano), fired.Event.Id(), typ, fired.Value)
		})
	}

	mws := []gapsched.MiddlewareFunc{
		recovermw.New(func(fired scheduler.Fired, err *recovermw.RecoveredError) {
			stdLogger.Error(err, "event_id", fired.Event.Id())
		}).Middleware,
		deadline.New(maxDelay, func(err *deadline.DeadlineExceededError) {
			stdLogger.Error(err, "event_id", err.Handle.Id())
		}).Middleware,
	}
	if verbose {
		mws = append(mws, logmw.New(stdLogger, logmw.LogPayload()).Middleware)
	}
	sched.Use(mws...)
	sched.SetEventHandler(router.Handle)

	table := cron.NewTable(sched.Scheduler(), nil)
	if err := table.AddRaw(raws); err != nil {
		return printErr(ctx, "add_rows", err)
	}

	runCtx, cancel := signalContext(runFor)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := jr.Run(runCtx); err != nil {
			stdLogger.Error(err, "component", "journal")
		}
	}()

	if err := table.Start(); err != nil {
		cancel()
		wg.Wait()
		return printErr(ctx, "start_table", err)
	}
	err = sched.Scheduler().Run(runCtx)
	table.Stop()
	cancel()
	wg.Wait()
	return err
}

// payloadTypes collects the distinct "type" of row payloads.
func payloadTypes(raws map[string]cron.RowRaw) []string {
	seen := make(map[string]bool)
	types := make([]string, 0)
	for _, raw := range raws {
		bin, ok := raw.Payload.(json.RawMessage)
		if !ok {
			continue
		}
		typ := gjson.GetBytes(bin, "type")
		if typ.Type != gjson.String || seen[typ.String()] {
			continue
		}
		seen[typ.String()] = true
		types = append(types, typ.String())
	}
	sort.Strings(types)
	return types
}
