// Package domain holds the error taxonomy and value objects shared by the
// hashd application layer.
//
// It has no dependencies on sockets, logging or configuration.
//
// # Values
//
//   - [SessionSummary]: what one connection did, reported when it ends
//
// # Errors
//
// Session errors are sentinels checked with errors.Is. Framing causes from
// package wire are wrapped alongside them, so both
// errors.Is(err, domain.ErrFileReceive) and
// errors.Is(err, wire.ErrConnectionClosed) hold for a client that hangs up
// mid-file.
package domain
