package hashd

import "github.com/bft-labs/hashd/internal/domain"

// Errors returned by Server methods and reported in SessionEndEvent.Err.
// Compare with errors.Is.
var (
	ErrAlreadyRunning       = domain.ErrAlreadyRunning
	ErrNotRunning           = domain.ErrNotRunning
	ErrShutdownTimeout      = domain.ErrShutdownTimeout
	ErrInvalidConfig        = domain.ErrInvalidConfig
	ErrBadAlgorithmFrame    = domain.ErrBadAlgorithmFrame
	ErrUnsupportedAlgorithm = domain.ErrUnsupportedAlgorithm
	ErrBadFileCount         = domain.ErrBadFileCount
	ErrFileReceive          = domain.ErrFileReceive
	ErrSessionPanic         = domain.ErrSessionPanic
)
