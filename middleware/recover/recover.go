package recover

import (
	"fmt"

	"github.com/ngicks/gapsched/scheduler"
)

type RecoveredError struct {
	OriginalErr any
}

func (re *RecoveredError) Error() string {
	return fmt.Sprintf(
		"recovered error: handler panicked and recovered in Recover middleware. original err = %v",
		re.OriginalErr,
	)
}

// RecoverMiddleware stops a handler panic from reaching the scheduler.
// Without it the scheduler still recovers, reporting HandlerPanicked to its hooks.
type RecoverMiddleware struct {
	onRecovered func(fired scheduler.Fired, err *RecoveredError)
}

// New creates RecoverMiddleware. onRecovered may be nil.
func New(onRecovered func(fired scheduler.Fired, err *RecoveredError)) *RecoverMiddleware {
	if onRecovered == nil {
		onRecovered = func(scheduler.Fired, *RecoveredError) {}
	}
	return &RecoverMiddleware{onRecovered: onRecovered}
}

func (mw *RecoverMiddleware) Middleware(handler scheduler.EventHandler) scheduler.EventHandler {
	return func(fired scheduler.Fired) {
		defer func() {
			if recovered := recover(); recovered != nil {
				mw.onRecovered(fired, &RecoveredError{OriginalErr: recovered})
			}
		}()
		handler(fired)
	}
}
