// Package digest is the hashing capability behind hashd.
//
// Algorithms are a closed enumeration ([Algorithm]). The wire tokens of the
// standard set are "sha1", "sha256", "sha512" and "md5". Two extended
// algorithms, "blake2b" (BLAKE2b-512) and "blake3" (256-bit output), exist
// but a [Registry] only accepts them when built with extended support.
//
// Digests are reported as lowercase hexadecimal text:
//
//	sum, err := digest.HexSum(digest.MD5, []byte("hello"))
//	// sum == "5d41402abc4b2a76b9719d911017c592"
package digest
