// Package gapsched emits scheduled payloads to a single handler in fire time order.
//
// The core lives in package scheduler. This package adds handler middleware on top of it.
package gapsched

import (
	"github.com/ngicks/gapsched/scheduler"
)

type Scheduler interface {
	SetEventHandler(handler scheduler.EventHandler)
}

var _ Scheduler = (*scheduler.Scheduler)(nil)

// New creates a scheduler.Scheduler wrapped by a MiddlewareApplicator.
func New(options ...scheduler.Option) *MiddlewareApplicator[*scheduler.Scheduler] {
	return NewMiddlewareApplicator(scheduler.New(options...))
}
