package observe_test

import (
	"testing"
	"time"

	"github.com/ngicks/gapsched"
	"github.com/ngicks/gapsched/internal/trap"
	"github.com/ngicks/gapsched/middleware/observe"
	"github.com/ngicks/gapsched/scheduler"
	"github.com/stretchr/testify/assert"
)

func sampleMw(handler scheduler.EventHandler) scheduler.EventHandler {
	return func(fired scheduler.Fired) {
		fired.Value = fired.Value.(string) + "bar"
		handler(fired)
	}
}

func TestObserve(t *testing.T) {
	trapped := trap.New()
	ma := gapsched.NewMiddlewareApplicator(trapped)

	var received any
	ma.Use(
		observe.New(
			func(fired scheduler.Fired) {
				assert.Equal(t, "foo", fired.Value)
			},
			func(fired scheduler.Fired) {
				assert.Equal(t, "foo", fired.Value)
			},
		).Middleware,
		sampleMw,
		observe.New(
			func(fired scheduler.Fired) {
				assert.Equal(t, "foobar", fired.Value)
			},
			nil,
		).Middleware,
	)
	ma.SetHandler(func(value any) {
		received = value
	})

	now := time.Now()
	trapped.Fire("foo", now, now)
	assert.Equal(t, "foobar", received)
}
