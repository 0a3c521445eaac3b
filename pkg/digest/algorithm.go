package digest

// Algorithm identifies a supported hash function.
type Algorithm uint8

const (
	Unknown Algorithm = iota
	SHA1
	SHA256
	SHA512
	MD5
	BLAKE2b
	BLAKE3
)

var tokens = map[string]Algorithm{
	"sha1":    SHA1,
	"sha256":  SHA256,
	"sha512":  SHA512,
	"md5":     MD5,
	"blake2b": BLAKE2b,
	"blake3":  BLAKE3,
}

// Parse maps a wire token to an Algorithm. Tokens are case-sensitive and
// must match exactly.
func Parse(name string) (Algorithm, bool) {
	a, ok := tokens[name]
	return a, ok
}

// String returns the wire token.
func (a Algorithm) String() string {
	switch a {
	case SHA1:
		return "sha1"
	case SHA256:
		return "sha256"
	case SHA512:
		return "sha512"
	case MD5:
		return "md5"
	case BLAKE2b:
		return "blake2b"
	case BLAKE3:
		return "blake3"
	default:
		return "unknown"
	}
}

// Extended reports whether a belongs to the opt-in algorithm set.
func (a Algorithm) Extended() bool {
	return a == BLAKE2b || a == BLAKE3
}

// Size returns the digest length in bytes, or 0 for Unknown.
func (a Algorithm) Size() int {
	switch a {
	case SHA1:
		return 20
	case SHA256, BLAKE3:
		return 32
	case SHA512, BLAKE2b:
		return 64
	case MD5:
		return 16
	default:
		return 0
	}
}

// HexLen returns the length of the hex-encoded digest.
func (a Algorithm) HexLen() int { return 2 * a.Size() }

// Standard returns the algorithms every server accepts.
func Standard() []Algorithm {
	return []Algorithm{SHA1, SHA256, SHA512, MD5}
}

// All returns every known algorithm, standard first.
func All() []Algorithm {
	return append(Standard(), BLAKE2b, BLAKE3)
}
