package scheduler_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ngicks/gapsched/scheduler"
	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	assert := assert.New(t)

	errSample := errors.New("sample")

	type tc struct {
		fn     func(error) bool
		input  error
		result bool
		label  string
	}

	for _, testCase := range []tc{
		{scheduler.IsEventNotFound, &scheduler.StoreError{Kind: scheduler.EventNotFound}, true, "EventNotFound"},
		{scheduler.IsEventNotFound, errSample, false, "non store error"},
		{scheduler.IsEventNotFound, nil, false, "nil"},
		{scheduler.IsNoHandler, &scheduler.DispatchError{Kind: scheduler.NoHandler}, true, "NoHandler"},
		{scheduler.IsNoHandler, &scheduler.DispatchError{Kind: scheduler.HandlerPanicked}, false, "NoHandler mismatch"},
		{scheduler.IsDeferredFailed, &scheduler.DispatchError{Kind: scheduler.DeferredFailed}, true, "DeferredFailed"},
		{scheduler.IsDeferredPanicked, &scheduler.DispatchError{Kind: scheduler.DeferredPanicked}, true, "DeferredPanicked"},
		{scheduler.IsHandlerPanicked, &scheduler.DispatchError{Kind: scheduler.HandlerPanicked}, true, "HandlerPanicked"},
		{scheduler.IsHandlerPanicked, errSample, false, "non dispatch error"},
	} {
		assert.Equal(testCase.result, testCase.fn(testCase.input), testCase.label)
	}

	storeErr := &scheduler.StoreError{Kind: scheduler.EventNotFound}
	wrapped := fmt.Errorf("%w", storeErr)
	nonStoreErrWrapped := fmt.Errorf("%w", errSample)
	for i := 0; i < 10; i++ {
		assert.True(
			scheduler.IsEventNotFound(wrapped),
			"wrapped error must return true if it has StoreError in its chain.",
		)
		assert.False(scheduler.IsEventNotFound(nonStoreErrWrapped))
		wrapped = fmt.Errorf("%w", wrapped)
		nonStoreErrWrapped = fmt.Errorf("%w", nonStoreErrWrapped)
	}

	dispatchErr := &scheduler.DispatchError{Kind: scheduler.DeferredFailed, Err: errSample}
	assert.ErrorIs(dispatchErr, errSample)
	assert.Contains(dispatchErr.Error(), "deferred_failed")
	assert.Contains(storeErr.Error(), "event_not_found")
	assert.Contains((&scheduler.PanicError{Recovered: "x"}).Error(), "x")
}
