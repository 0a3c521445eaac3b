package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"

	"github.com/bft-labs/hashd/internal/domain"
	"github.com/bft-labs/hashd/internal/ports"
)

// Bind opens a TCP listening socket on addr with address reuse enabled.
func Bind(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: reuseAddr}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return ln, nil
}

// Listener accepts connections one at a time and runs each to completion
// before accepting the next.
type Listener struct {
	ln       net.Listener
	settings func() SessionConfig
	logger   ports.Logger
	emitter  SessionEmitter
}

// NewListener serves ln. settings is called once per accepted connection;
// the returned snapshot is fixed for that session.
func NewListener(ln net.Listener, settings func() SessionConfig, logger ports.Logger, emitter SessionEmitter) *Listener {
	return &Listener{
		ln:       ln,
		settings: settings,
		logger:   logger,
		emitter:  emitter,
	}
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close closes the listening socket. A blocked Run returns nil.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Run accepts and serves connections until ctx is done or the listener is
// closed. Session failures are logged and never end the loop.
func (l *Listener) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = l.ln.Close() })
	defer stop()

	l.logger.Info("accepting connections", ports.Stringer("addr", l.ln.Addr()))

	bo := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			delay := bo.Current()
			l.logger.Error("accept failed", ports.Err(err), ports.Duration("retry_in", delay))
			if !bo.Wait(ctx) {
				return nil
			}
			continue
		}
		bo.Reset()
		l.serve(ctx, conn)
	}
}

// serve runs one session on the calling goroutine.
func (l *Listener) serve(ctx context.Context, conn net.Conn) {
	id := uuid.NewString()
	logger := l.logger.With(
		ports.String("session", id),
		ports.Stringer("remote", conn.RemoteAddr()),
	)
	session := NewSession(id, conn, l.settings(), logger, l.emitter)

	defer func() {
		if r := recover(); r != nil {
			_ = conn.Close()
			logger.Error("session panicked", ports.Any("panic", r))
			session.abort(fmt.Errorf("%w: %v", domain.ErrSessionPanic, r))
		}
	}()

	err := session.Run(ctx)
	summary := session.Summary()
	fields := []ports.Field{
		ports.String("algorithm", summary.Algorithm),
		ports.Uint32("files", summary.FilesProcessed),
		ports.Uint32("declared", summary.FilesDeclared),
		ports.Int64("bytes", summary.Bytes),
		ports.Duration("duration", summary.Duration),
	}
	if err != nil {
		logger.Warn("session aborted", append(fields, ports.Err(err))...)
		return
	}
	logger.Info("session complete", fields...)
}
