//go:build !unix

package app

import "syscall"

// reuseAddr is a no-op where SO_REUSEADDR has different semantics.
func reuseAddr(network, address string, c syscall.RawConn) error {
	return nil
}
