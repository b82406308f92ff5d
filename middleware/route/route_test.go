package route_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ngicks/gapsched"
	"github.com/ngicks/gapsched/internal/trap"
	"github.com/ngicks/gapsched/middleware/route"
	"github.com/ngicks/gapsched/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	Type string `json:"type"`
	Body string `json:"body"`
}

func TestRouter(t *testing.T) {
	var (
		got  []string
		errs []error
	)
	record := func(label string) scheduler.EventHandler {
		return func(scheduler.Fired) { got = append(got, label) }
	}

	router := route.New("type", func(_ scheduler.Fired, err error) {
		errs = append(errs, err)
	}).
		On("greet", record("greet")).
		On("bye", record("bye"))

	trapped := trap.New()
	ma := gapsched.NewMiddlewareApplicator(trapped)
	ma.SetEventHandler(router.Handle)

	now := time.Now()
	trapped.Fire(`{"type":"greet"}`, now, now)
	trapped.Fire([]byte(`{"type":"bye"}`), now, now)
	trapped.Fire(json.RawMessage(`{"type":"greet"}`), now, now)
	trapped.Fire(message{Type: "bye", Body: "x"}, now, now)
	trapped.Fire(`{"type":"unknown"}`, now, now)
	trapped.Fire(`{"kind":"greet"}`, now, now)
	trapped.Fire(make(chan int), now, now)

	assert.Equal(t, []string{"greet", "bye", "greet", "bye"}, got)
	require.Len(t, errs, 3)

	var noRoute *route.NoRouteError
	require.True(t, errors.As(errs[0], &noRoute))
	assert.True(t, noRoute.Found)
	assert.Equal(t, "unknown", noRoute.Key)
	require.True(t, errors.As(errs[1], &noRoute))
	assert.False(t, noRoute.Found)
	assert.False(t, errors.As(errs[2], &noRoute), "marshaling error")

	router.Fallback(record("fallback"))
	trapped.Fire(`{"type":"unknown"}`, now, now)
	assert.Equal(t, "fallback", got[len(got)-1])
}

func TestRouterMiddleware(t *testing.T) {
	var got []string
	router := route.New("meta.kind", nil).
		On("a", func(scheduler.Fired) { got = append(got, "a") })

	trapped := trap.New()
	ma := gapsched.NewMiddlewareApplicator(trapped)
	ma.Use(router.Middleware)
	ma.SetHandler(func(any) { got = append(got, "next") })

	now := time.Now()
	trapped.Fire(`{"meta":{"kind":"a"}}`, now, now)
	trapped.Fire(`{"meta":{"kind":"b"}}`, now, now)
	trapped.Fire(`{}`, now, now)

	assert.Equal(t, []string{"a", "next", "next"}, got)
}

func TestMatch(t *testing.T) {
	router := route.New("n", nil)
	key, found, err := router.Match(map[string]int{"n": 12})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "12", key)
}
