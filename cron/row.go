package cron

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ngicks/gapsched/scheduler"
	"github.com/robfig/cron/v3"
	"github.com/tidwall/gjson"
)

var (
	ErrMalformed = errors.New("malformed row")
	ErrNoNext    = errors.New("schedule has no next time")
)

// RawExpression is any of cron standard expression both without and with sec,
// e.g. "15,45 30 12 *" or "@every 4h25m".
// Or JsonExp.
type RawExpression any

func ParseRawExpression(raw RawExpression) (cron.Schedule, error) {
	switch x := raw.(type) {
	case JsonExp:
		return x.Parse()
	case string:
		if len(x) > 0 && !strings.Contains(x, "@") {
			scanner := bufio.NewScanner(strings.NewReader(x))
			scanner.Split(bufio.ScanWords)
			var count int
			for scanner.Scan() {
				text := scanner.Text()
				if !strings.HasPrefix(text, "TZ=") &&
					!strings.HasPrefix(text, "CRON_TZ=") {
					count++
				}
			}
			if count == 6 {
				return parser.Parse(x)
			}
		}
		return cron.ParseStandard(x)
	}

	return nil, fmt.Errorf(
		"%w: ParseRawExpression: input must be string or JsonExp, but is %T",
		ErrMalformed,
		raw,
	)
}

type JsonExp struct {
	Second, Minute, Hour, Dom, Month, Dow []uint64

	// Override location for this schedule.
	Location string
}

func (e JsonExp) Format() string {
	var buf bytes.Buffer

	if e.Location != "" {
		buf.WriteString("TZ=")
		buf.WriteString(e.Location)
		buf.WriteByte(' ')
	}

	for _, nums := range [...][]uint64{
		e.Second, e.Minute, e.Hour, e.Dom, e.Month, e.Dow,
	} {
		if len(nums) == 0 {
			buf.WriteByte('*')
		} else {
			for _, num := range nums {
				buf.WriteString(strconv.FormatUint(num, 10))
				buf.WriteByte(',')
			}
			buf.Truncate(buf.Len() - 1)
		}
		buf.WriteByte(' ')
	}
	buf.Truncate(buf.Len() - 1)
	return buf.String()
}

var (
	parser = cron.NewParser(
		cron.Second |
			cron.Minute |
			cron.Hour |
			cron.Dom |
			cron.Month |
			cron.Dow,
	)
)

func (e JsonExp) Parse() (cron.Schedule, error) {
	return parser.Parse(e.Format())
}

// RowRaw is an unparsed Row.
//
// In JSON, schedule is either an expression string or a JsonExp object,
// and payload is kept as json.RawMessage:
//
//	{"schedule": "@every 1h", "payload": {"type": "report"}}
type RowRaw struct {
	Schedule RawExpression
	Payload  any
}

func (r *RowRaw) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: invalid json", ErrMalformed)
	}

	sched := gjson.GetBytes(data, "schedule")
	switch {
	case sched.Type == gjson.String:
		r.Schedule = sched.String()
	case sched.IsObject():
		var exp JsonExp
		if err := json.Unmarshal([]byte(sched.Raw), &exp); err != nil {
			return fmt.Errorf("%w: schedule: %w", ErrMalformed, err)
		}
		r.Schedule = exp
	default:
		return fmt.Errorf("%w: schedule must be string or object", ErrMalformed)
	}

	if payload := gjson.GetBytes(data, "payload"); payload.Exists() {
		r.Payload = json.RawMessage(payload.Raw)
	} else {
		r.Payload = nil
	}
	return nil
}

// Parse parses r into a Row which emits r.Payload.
// A scheduler.Payload is used as is, any other value is wrapped by scheduler.Value.
func (r RowRaw) Parse() (Row, error) {
	sched, err := ParseRawExpression(r.Schedule)
	if err != nil {
		return Row{}, err
	}

	payload, ok := r.Payload.(scheduler.Payload)
	if !ok {
		payload = scheduler.Value(r.Payload)
	}
	return Row{
		Payload:  payload,
		Schedule: sched,
	}, nil
}

// Row is a cron schedule paired with the payload it emits.
type Row struct {
	Payload  scheduler.Payload
	Schedule cron.Schedule
}

func (r Row) NextSchedule(now time.Time) (time.Time, error) {
	if r.Schedule == nil {
		return time.Time{}, ErrMalformed
	}
	next := r.Schedule.Next(now)
	if next.IsZero() {
		return time.Time{}, ErrNoNext
	}
	return next, nil
}

func (r Row) GetPayload() scheduler.Payload {
	return r.Payload
}
