package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// ErrUnknown is returned when asked to hash with an algorithm outside the
// enumeration.
var ErrUnknown = errors.New("digest: unknown algorithm")

// New returns a fresh hash state for a.
func New(a Algorithm) (hash.Hash, error) {
	switch a {
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	case MD5:
		return md5.New(), nil
	case BLAKE2b:
		return blake2b.New512(nil)
	case BLAKE3:
		return blake3.New(), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknown, a)
}

// Hex returns the lowercase hex encoding of the current sum of h.
func Hex(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// HexSum hashes payload with a and returns the hex digest.
func HexSum(a Algorithm, payload []byte) (string, error) {
	h, err := New(a)
	if err != nil {
		return "", err
	}
	h.Write(payload)
	return Hex(h), nil
}

// Registry resolves wire tokens against the set of algorithms a server
// accepts.
type Registry struct {
	extended bool
}

// NewRegistry returns a Registry. When extended is false only Standard
// algorithms are accepted.
func NewRegistry(extended bool) *Registry {
	return &Registry{extended: extended}
}

// Lookup parses name and reports whether it is accepted.
func (r *Registry) Lookup(name string) (Algorithm, bool) {
	a, ok := Parse(name)
	if !ok {
		return Unknown, false
	}
	if a.Extended() && !r.extended {
		return Unknown, false
	}
	return a, true
}

// New returns a hash state for a.
func (r *Registry) New(a Algorithm) (hash.Hash, error) {
	return New(a)
}

// Accepted lists the accepted algorithms in wire order.
func (r *Registry) Accepted() []Algorithm {
	if r.extended {
		return All()
	}
	return Standard()
}
