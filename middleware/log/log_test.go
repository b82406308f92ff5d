package log_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ngicks/gapsched"
	"github.com/ngicks/gapsched/internal/trap"
	logmw "github.com/ngicks/gapsched/middleware/log"
	"github.com/ngicks/gapsched/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logLine struct {
	Err       bool
	Value     any
	LogValues []string
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
	errs  []error
}

func (l *recordingLogger) Info(v any, logValues ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, logLine{Value: v, LogValues: logValues})
}

func (l *recordingLogger) Error(e error, logValues ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, logLine{Err: true, LogValues: logValues})
	l.errs = append(l.errs, e)
}

func TestLog(t *testing.T) {
	logger := &recordingLogger{}
	trapped := trap.New()
	ma := gapsched.NewMiddlewareApplicator(trapped)

	timeFormat, err := logmw.SetTimeFormat(time.RFC3339)
	require.NoError(t, err)

	ma.Use(
		logmw.New(
			logger,
			timeFormat,
			logmw.LogPayload(),
			logmw.LogValues("component", "test"),
		).Middleware,
	)

	var called bool
	ma.SetHandler(func(value any) {
		called = true
	})

	fireAt := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	fired := trapped.Fire(map[string]int{"foo": 1}, fireAt, fireAt.Add(2*time.Second))
	require.True(t, called)

	base := []string{
		"event_id", fired.Event.Id(),
		"fire_at", "2023-01-01T00:00:00Z",
		"dispatched_at", "2023-01-01T00:00:02Z",
		"delay", "2s",
		"payload", `{"foo":1}`,
		"component", "test",
	}
	expected := []logLine{
		{LogValues: append(append([]string{}, base...), "timing", "before_handler")},
		{LogValues: append(append([]string{}, base...), "timing", "after_handler")},
	}
	if diff := cmp.Diff(expected, logger.lines); diff != "" {
		t.Fatalf("unexpected log lines. diff = %s", diff)
	}
}

func TestLogPanic(t *testing.T) {
	logger := &recordingLogger{}
	trapped := trap.New()
	ma := gapsched.NewMiddlewareApplicator(trapped)
	ma.Use(logmw.New(logger).Middleware)

	mockErr := errors.New("mock error")
	ma.SetHandler(func(value any) {
		panic(mockErr)
	})

	now := time.Now()
	assert.PanicsWithValue(t, mockErr, func() { trapped.Fire("foo", now, now) })

	require.Len(t, logger.lines, 2)
	assert.False(t, logger.lines[0].Err)
	assert.True(t, logger.lines[1].Err)
	require.Len(t, logger.errs, 1)
	var panicErr *scheduler.PanicError
	require.ErrorAs(t, logger.errs[0], &panicErr)
	assert.Equal(t, mockErr, panicErr.Recovered)
}

func TestSetTimeFormat(t *testing.T) {
	_, err := logmw.SetTimeFormat("not a layout")
	assert.Error(t, err)
}
