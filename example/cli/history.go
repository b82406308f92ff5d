package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/ngicks/gapsched/journal"
	"github.com/urfave/cli"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	eventId     string
	states      cli.StringSlice
	payloadType string
	since       time.Duration
	limit       int

	historyFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "event, e",
			Usage:       "show records of this event id only",
			Destination: &eventId,
		},
		cli.StringSliceFlag{
			Name:  "state, s",
			Usage: "scheduled, cancelled, dispatched or failed. can be repeated",
			Value: &states,
		},
		cli.StringFlag{
			Name:        "type, t",
			Usage:       "show records whose payload has this \"type\"",
			Destination: &payloadType,
		},
		cli.DurationFlag{
			Name:        "since",
			Usage:       "show records of this last duration only",
			Destination: &since,
		},
		cli.IntFlag{
			Name:        "limit, n",
			Value:       100,
			Usage:       "maximum number of records, 0 for unlimited",
			Destination: &limit,
		},
	}
)

func history(ctx *cli.Context) error {
	db, err := journal.OpenDB(journalPath, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return printErr(ctx, "open_journal", err)
	}
	jr, err := journal.New(db)
	if err != nil {
		return printErr(ctx, "open_journal", err)
	}
	defer jr.Close()

	q := journal.Query{
		EventId: eventId,
		Limit:   limit,
	}
	for _, s := range states {
		q.States = append(q.States, journal.State(s))
	}
	if payloadType != "" {
		q.PayloadEquals = append(q.PayloadEquals, journal.PayloadCond{Keys: []string{"type"}, Value: payloadType})
	}
	if since > 0 {
		q.Since = time.Now().Add(-since)
	}

	records, err := jr.Find(context.Background(), q)
	if err != nil {
		return printErr(ctx, "find", err)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return printErr(ctx, "encode", err)
		}
	}
	return nil
}
