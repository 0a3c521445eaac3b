package hashd

import (
	"time"

	"github.com/bft-labs/hashd/internal/app"
	"github.com/bft-labs/hashd/pkg/log"
)

// Logger is the structured logging interface used by the server.
type Logger = log.Logger

// Option configures optional behavior of a Server.
type Option func(*options)

type options struct {
	logger          Logger
	eventHandler    EventHandler
	plugins         []Plugin
	shutdownTimeout time.Duration
}

func defaultOptions() options {
	return options{
		logger:          log.NewNoopLogger(),
		shutdownTimeout: app.ShutdownTimeout,
	}
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for server events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin. Plugins are initialized in registration
// order on Start and shut down in reverse order on Stop.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithShutdownTimeout bounds how long Stop waits for the accept loop.
// Default: 30 seconds
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}
