package ports

import (
	"hash"

	"github.com/bft-labs/hashd/pkg/digest"
)

// Digester resolves algorithm names and creates hash states.
// *digest.Registry satisfies this interface.
type Digester interface {
	// Lookup returns the algorithm for a wire token and whether it is
	// accepted by this server.
	Lookup(name string) (digest.Algorithm, bool)

	// New returns a fresh hash state for an accepted algorithm.
	New(a digest.Algorithm) (hash.Hash, error)
}

var _ Digester = (*digest.Registry)(nil)
