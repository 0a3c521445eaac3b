package configwatcher

import "github.com/bft-labs/hashd/pkg/hashd"

// WithConfigWatcher returns a hashd Option that enables config file watching.
//
// Usage:
//
//	srv, err := hashd.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:   "/etc/hashd/config.toml",
//	        Loader: loadConfig,
//	    }),
//	)
func WithConfigWatcher(cfg Config) hashd.Option {
	return hashd.WithPlugin(New(cfg))
}
