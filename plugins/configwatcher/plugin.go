// Package configwatcher reloads hashd session settings when the config
// file changes on disk.
package configwatcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/hashd/pkg/hashd"
	"github.com/bft-labs/hashd/pkg/log"
)

// Loader produces the configuration to apply after the watched file
// changes. The CLI layers the file, environment and flags here so the
// usual precedence holds on reload.
type Loader func() (hashd.Config, error)

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the config file to watch.
	Path string

	// Loader builds the new configuration. Required.
	Loader Loader

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with the default debounce delay.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// Plugin watches one config file and reloads the server when it changes.
type Plugin struct {
	mu sync.Mutex

	path          string
	loader        Loader
	debounceDelay time.Duration

	logger   hashd.Logger
	reloader hashd.Reloader
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		loader:        cfg.Loader,
		debounceDelay: cfg.DebounceDelay,
		logger:        log.NewNoopLogger(),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching the directory holding the config file.
// A missing directory disables the watcher without failing Start.
func (p *Plugin) Initialize(ctx context.Context, cfg hashd.PluginConfig) error {
	if p.loader == nil {
		return errors.New("configwatcher: loader is required")
	}
	if cfg.Reloader == nil {
		return errors.New("configwatcher: reloader is required")
	}

	p.mu.Lock()
	if cfg.Logger != nil {
		p.logger = cfg.Logger.With(log.String("plugin", p.Name()))
	}
	p.reloader = cfg.Reloader
	p.mu.Unlock()

	if p.path == "" {
		p.logger.Warn("config watcher disabled: no config file")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		p.logger.Warn("config watcher disabled",
			log.String("dir", dir),
			log.Err(err))
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("watching config file", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Clean(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			// Editors often replace the file by rename, which shows up as Create.
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.scheduleReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) scheduleReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

// reload applies the loader's result. A bad file keeps the running
// settings.
func (p *Plugin) reload() {
	cfg, err := p.loader()
	if err != nil {
		p.logger.Error("config reload failed, keeping current settings",
			log.String("path", p.path),
			log.Err(err))
		return
	}
	if err := p.reloader.Reload(cfg); err != nil {
		p.logger.Error("config rejected, keeping current settings",
			log.String("path", p.path),
			log.Err(err))
		return
	}
	p.logger.Info("config reloaded", log.String("path", p.path))
}
