package hashd

import "context"

// Plugin extends a Server with optional behavior.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize is called from Start after the socket is bound. Returning
	// an error aborts Start.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called from Stop.
	Shutdown(ctx context.Context) error
}

// Reloader applies configuration changes to a running server.
type Reloader interface {
	Config() Config
	Reload(cfg Config) error
}

// PluginConfig is handed to plugins on Initialize.
type PluginConfig struct {
	Config   Config
	Logger   Logger
	Reloader Reloader
}
