package hashd

import (
	"context"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/hashd/internal/app"
	"github.com/bft-labs/hashd/internal/domain"
	"github.com/bft-labs/hashd/internal/ports"
	"github.com/bft-labs/hashd/pkg/digest"
)

// Server is a digest server that can be embedded in other applications.
// Use New to create an instance, then Start to bind and begin serving.
type Server struct {
	opts      options
	lifecycle *app.Lifecycle
	emitter   *eventEmitter
	logger    ports.Logger
	plugins   []Plugin

	config  atomic.Pointer[Config]
	session atomic.Pointer[app.SessionConfig]

	mu       sync.Mutex
	listener *app.Listener
}

// New creates a Server in StateStopped. Returns an error if cfg is invalid.
func New(cfg Config, opts ...Option) (*Server, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	emitter := &eventEmitter{handler: o.eventHandler}
	s := &Server{
		opts:      o,
		lifecycle: app.NewLifecycle(o.logger, emitter),
		emitter:   emitter,
		logger:    o.logger,
		plugins:   o.plugins,
	}
	s.store(cfg)
	return s, nil
}

func (s *Server) store(cfg Config) {
	s.config.Store(&cfg)
	s.session.Store(&app.SessionConfig{
		ChunkSize:    cfg.ChunkSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Digester:     digest.NewRegistry(cfg.ExtendedAlgorithms),
	})
}

func (s *Server) settings() app.SessionConfig {
	return *s.session.Load()
}

// acceptedAlgorithms lists the algorithm tokens cfg accepts, comma separated.
func acceptedAlgorithms(cfg Config) string {
	accepted := digest.NewRegistry(cfg.ExtendedAlgorithms).Accepted()
	names := make([]string, len(accepted))
	for i, a := range accepted {
		names[i] = a.String()
	}
	return strings.Join(names, ",")
}

// Start binds the listening socket and begins serving in the background.
// Bind failures are returned synchronously and leave the server in
// StateCrashed. The provided context bounds the lifetime of the server:
// when it ends, plugins are shut down and the server moves to StateStopped.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	cfg := s.Config()
	ln, err := app.Bind(ctx, cfg.Addr())
	if err != nil {
		s.logger.Error("bind failed", ports.String("addr", cfg.Addr()), ports.Err(err))
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "bind failed")
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		Config:   cfg,
		Logger:   s.logger,
		Reloader: s,
	}
	for _, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			_ = ln.Close()
			_ = s.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	s.listener = app.NewListener(ln, s.settings, s.logger, s.emitter)
	if err := s.lifecycle.TransitionTo(app.StateRunning, "listening on "+ln.Addr().String()); err != nil {
		cancel()
		_ = ln.Close()
		return err
	}

	s.logger.Info("accepting algorithms",
		ports.String("addr", ln.Addr().String()),
		ports.String("algorithms", acceptedAlgorithms(cfg)))

	listener := s.listener
	s.lifecycle.Go(func() {
		if err := listener.Run(runCtx); err != nil {
			s.logger.Error("listener error", ports.Err(err))
		}
		s.exited(runCtx.Err())
	})
	return nil
}

// exited settles the state when the accept loop returns without Stop,
// either because the parent context ended or the listener failed.
func (s *Server) exited(ctxErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lifecycle.State() != app.StateRunning {
		return
	}
	if ctxErr == nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "listener closed")
		s.shutdownPlugins()
		return
	}
	_ = s.lifecycle.TransitionTo(app.StateStopping, "context cancelled")
	s.shutdownPlugins()
	_ = s.lifecycle.TransitionTo(app.StateStopped, "context cancelled")
}

// shutdownPlugins shuts plugins down in reverse initialization order.
func (s *Server) shutdownPlugins() {
	ctx := context.Background()
	for i := len(s.plugins) - 1; i >= 0; i-- {
		p := s.plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			s.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
}

// Stop closes the listening socket and waits for the session in progress
// to finish. Returns ErrShutdownTimeout if it outlives the shutdown
// timeout.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}
	s.lifecycle.Cancel()
	s.mu.Unlock()

	err := s.lifecycle.WaitWithTimeout(s.opts.shutdownTimeout)
	s.shutdownPlugins()

	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Server) Status() State {
	return State(s.lifecycle.State())
}

// Addr returns the bound address, or nil before the first Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Config returns the active configuration.
func (s *Server) Config() Config {
	return *s.config.Load()
}

// Reload validates cfg and applies its session settings from the next
// accepted connection. Host and Port cannot change while running and are
// kept at their current values.
func (s *Server) Reload(cfg Config) error {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	cur := s.Config()
	if cfg.Host != cur.Host || cfg.Port != cur.Port {
		s.logger.Warn("listen address change ignored until restart",
			ports.String("current", cur.Addr()),
			ports.String("requested", cfg.Addr()))
		cfg.Host, cfg.Port = cur.Host, cur.Port
	}

	s.store(cfg)
	s.logger.Info("configuration reloaded",
		ports.Int("chunk_size", cfg.ChunkSize),
		ports.Duration("read_timeout", cfg.ReadTimeout),
		ports.Duration("write_timeout", cfg.WriteTimeout),
		ports.Bool("extended_algorithms", cfg.ExtendedAlgorithms),
		ports.String("algorithms", acceptedAlgorithms(cfg)))
	return nil
}
