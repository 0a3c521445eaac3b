package domain

import "errors"

// Lifecycle errors, returned by the public server API.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running server.
	ErrAlreadyRunning = errors.New("hashd: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped server.
	ErrNotRunning = errors.New("hashd: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("hashd: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("hashd: invalid configuration")
)

// Session errors. Each one ends the session that produced it and nothing
// else.
var (
	// ErrBadAlgorithmFrame means the algorithm frame could not be read or
	// was not UTF-8 text. No response is sent.
	ErrBadAlgorithmFrame = errors.New("hashd: bad algorithm frame")

	// ErrUnsupportedAlgorithm means the client asked for an algorithm the
	// server does not accept. The diagnostic line has been sent.
	ErrUnsupportedAlgorithm = errors.New("hashd: unsupported hashing algorithm")

	// ErrBadFileCount means the 4-byte file count was truncated.
	ErrBadFileCount = errors.New("hashd: bad file count")

	// ErrFileReceive means a file could not be received or its digest
	// could not be sent. Remaining files are not processed.
	ErrFileReceive = errors.New("hashd: file receive failed")

	// ErrSessionPanic means the session goroutine panicked. The connection
	// was closed and the listener moved on to the next client.
	ErrSessionPanic = errors.New("hashd: session panicked")
)

// ResponseSent reports whether err leaves the client with a diagnostic
// response rather than a bare close.
func ResponseSent(err error) bool {
	return errors.Is(err, ErrUnsupportedAlgorithm)
}
