package node

import (
	"time"

	"github.com/joeycumines/go-catrate"

	"github.com/joeycumines/go-pipeline/pipelog"
)

// ErrorHandler is invoked whenever processing an item fails: the action
// errored, or forwarding to a broadcast target or the linear successor
// failed. Returning true tells the Node to continue with the next item;
// returning false tells the worker loop to stop, returning err from the
// Node's run.
type ErrorHandler func(err *ActionError) bool

// Option configures a Node at construction time.
type Option func(*config)

type config struct {
	queueCapacity  int
	errHandler     ErrorHandler
	logger         pipelog.Logger
	errRateLimit   map[time.Duration]int
	disableErrRate bool
}

func defaultConfig() config {
	return config{
		queueCapacity: 1024,
		logger:        pipelog.Noop(),
		errRateLimit:  map[time.Duration]int{time.Second: 1},
	}
}

// WithQueueCapacity overrides the inbound queue's buffer size (default 1024).
func WithQueueCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.queueCapacity = n
		}
	}
}

// WithErrorHandler overrides the default error handler (log-and-continue,
// rate-limited per Node identity).
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) { c.errHandler = h }
}

// WithLogger sets the Logger used by the default error handler. Ignored if
// WithErrorHandler is also given.
func WithLogger(l pipelog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorRateLimit overrides the rates passed to catrate.NewLimiter for the
// default error handler's logging. WithNoErrorRateLimit disables rate
// limiting entirely.
func WithErrorRateLimit(rates map[time.Duration]int) Option {
	return func(c *config) { c.errRateLimit = rates }
}

// WithNoErrorRateLimit disables rate limiting of the default error handler's
// log lines; every failure is logged.
func WithNoErrorRateLimit() Option {
	return func(c *config) { c.disableErrRate = true }
}

func (c config) buildErrorHandler(identity string) ErrorHandler {
	if c.errHandler != nil {
		return c.errHandler
	}
	logger := c.logger
	if c.disableErrRate {
		return func(err *ActionError) bool {
			logger.Error("node action failed", err, map[string]any{
				"identity": identity,
				"trace":    err.Trace,
			})
			return true
		}
	}
	limiter := catrate.NewLimiter(c.errRateLimit)
	return func(err *ActionError) bool {
		if _, ok := limiter.Allow(identity); ok {
			logger.Error("node action failed", err, map[string]any{
				"identity": identity,
				"trace":    err.Trace,
			})
		}
		return true
	}
}
