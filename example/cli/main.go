package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli"
)

const description = `gapsched emits the rows of a cron table to handlers routed by payload type,
and keeps a sqlite journal of every scheduled, cancelled, dispatched and failed event.

A table is a JSON object of rows:

    {
      "report": {"schedule": "@every 10s", "payload": {"type": "report"}},
      "ping":   {"schedule": "*/2 * * * * *", "payload": {"type": "ping", "to": "peer"}}
    }`

var (
	journalPath string

	commonFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "journal, j",
			Value:       "gapsched.db",
			Usage:       "path of the sqlite journal",
			Destination: &journalPath,
		},
	}
)

func main() {
	app := cli.App{
		Name:        "gapsched",
		Usage:       "run a cron table on an embedded scheduler",
		UsageText:   "gapsched <command> [arguments...]",
		Description: description,
		Commands: []cli.Command{
			{
				Name:      "run",
				Aliases:   []string{"r"},
				Usage:     "run a cron table until interrupted",
				ArgsUsage: "<table.json>",
				Action:    run,
				Flags:     append(runFlags, commonFlags...),
			},
			{
				Name:    "history",
				Aliases: []string{"h"},
				Usage:   "show journal records",
				Action:  history,
				Flags:   append(historyFlags, commonFlags...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// signalContext is cancelled on interrupt, or after timeout if it is positive.
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func printErr(ctx *cli.Context, op string, err error) error {
	return cli.NewExitError(fmt.Sprintf("%s: %s: %v", ctx.Command.Name, op, err), 1)
}
