package log

import (
	"encoding/json"
	"time"

	"github.com/ngicks/gapsched/scheduler"
)

type Logger = scheduler.Logger

type LogMiddleware struct {
	logger           Logger
	timeFormat       string
	shouldLogPayload bool
	additionalValues []string
}

type Option = func(mw *LogMiddleware) *LogMiddleware

// SetTimeFormat sets the layout used for fire_at and dispatched_at.
// It returns an error if timeFormat does not round-trip.
func SetTimeFormat(timeFormat string) (Option, error) {
	_, err := time.Parse(timeFormat, time.Now().Format(timeFormat))
	if err != nil {
		return nil, err
	}

	return func(mw *LogMiddleware) *LogMiddleware {
		mw.timeFormat = timeFormat
		return mw
	}, nil
}

// LogPayload makes the middleware log the JSON-encoded delivered value.
func LogPayload() Option {
	return func(mw *LogMiddleware) *LogMiddleware {
		mw.shouldLogPayload = true
		return mw
	}
}

// LogValues appends fixed key/value pairs to every line.
func LogValues(keyValues ...string) Option {
	return func(mw *LogMiddleware) *LogMiddleware {
		mw.additionalValues = append(mw.additionalValues, keyValues...)
		return mw
	}
}

func New(logger Logger, options ...Option) *LogMiddleware {
	mw := &LogMiddleware{
		logger:     logger,
		timeFormat: time.RFC3339Nano,
	}
	for _, opt := range options {
		mw = opt(mw)
	}
	if mw.additionalValues == nil {
		mw.additionalValues = make([]string, 0)
	}
	return mw
}

func (mw *LogMiddleware) Middleware(handler scheduler.EventHandler) scheduler.EventHandler {
	return func(fired scheduler.Fired) {
		values := mw.buildLogValueSet(fired)
		mw.logger.Info(nil, append(values, "timing", "before_handler")...)

		panicking := true
		defer func() {
			if panicking {
				recovered := recover()
				mw.logger.Error(
					&scheduler.PanicError{Recovered: recovered},
					append(values, "timing", "after_handler")...,
				)
				panic(recovered)
			}
		}()

		handler(fired)
		panicking = false
		mw.logger.Info(nil, append(values, "timing", "after_handler")...)
	}
}

func (mw *LogMiddleware) buildLogValueSet(fired scheduler.Fired) (logValues []string) {
	logValues = append(
		logValues,
		"event_id", fired.Event.Id(),
		"fire_at", fired.Event.FireAt().Format(mw.timeFormat),
		"dispatched_at", fired.DispatchedAt.Format(mw.timeFormat),
		"delay", fired.Delay().String(),
	)

	if mw.shouldLogPayload {
		marshaled, err := json.Marshal(fired.Value)
		if err == nil {
			logValues = append(logValues, "payload", string(marshaled))
		} else {
			logValues = append(logValues, "payload", "marshalling error")
		}
	}

	logValues = append(logValues, mw.additionalValues...)
	// the slice is appended to twice; keep those appends from sharing a backing array.
	return logValues[:len(logValues):len(logValues)]
}
