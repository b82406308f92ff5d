package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/ngicks/gapsched/common"
)

type config struct {
	interval  time.Duration
	getNow    common.GetNow
	newTicker common.TickerFactory
	logger    Logger
	verbose   bool
	hooks     []LoopHooks
}

func defaultConfig() config {
	return config{
		interval:  DefaultInterval,
		getNow:    common.GetNowImpl{},
		newTicker: common.NewTickerImpl,
		logger:    NewStdLogger(log.Default()),
	}
}

type Option func(c *config)

// WithInterval sets the idle time between drain sweeps.
//
// panic: if interval is not positive.
func WithInterval(interval time.Duration) Option {
	if interval <= 0 {
		panic(fmt.Errorf("%w: interval must be positive but is %s", ErrInvalidArg, interval))
	}
	return func(c *config) {
		c.interval = interval
	}
}

func WithNowGetter(getNow common.GetNow) Option {
	return func(c *config) {
		if getNow != nil {
			c.getNow = getNow
		}
	}
}

func WithTickerFactory(newTicker common.TickerFactory) Option {
	return func(c *config) {
		if newTicker != nil {
			c.newTicker = newTicker
		}
	}
}

// WithLogger replaces the logger of dispatch errors. Passing nil disables logging.
// If verbose is true, every scheduling, cancellation and dispatch is logged as well.
func WithLogger(logger Logger, verbose bool) Option {
	return func(c *config) {
		c.logger = logger
		c.verbose = verbose
	}
}

// WithHooks adds hooks. They are called after the log hooks, in given order.
func WithHooks(hooks ...LoopHooks) Option {
	return func(c *config) {
		for _, h := range hooks {
			if h != nil {
				c.hooks = append(c.hooks, h)
			}
		}
	}
}

func (c config) buildHooks() LoopHooks {
	var hooks MultiHooks
	if c.logger != nil {
		hooks = append(hooks, &LogHooks{Logger: c.logger, Verbose: c.verbose})
	}
	hooks = append(hooks, c.hooks...)
	switch len(hooks) {
	case 0:
		return NopHooks{}
	case 1:
		return hooks[0]
	}
	return hooks
}
