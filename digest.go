package cloak

import (
	"crypto/md5"  //nolint:gosec // fingerprinting only, part of the fixed algorithm set
	"crypto/sha1" //nolint:gosec // fingerprinting only, part of the fixed algorithm set
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // part of the fixed algorithm set
)

// DigestAlgo represents a supported digest algorithm.
type DigestAlgo string

const (
	// DigestSHA1 uses SHA-1. Fingerprinting only, NOT collision resistant.
	DigestSHA1 DigestAlgo = "sha1"

	// DigestSHA256 uses SHA-256.
	DigestSHA256 DigestAlgo = "sha256"

	// DigestSHA384 uses SHA-384.
	DigestSHA384 DigestAlgo = "sha384"

	// DigestSHA512 uses SHA-512. This is the default algorithm.
	DigestSHA512 DigestAlgo = "sha512"

	// DigestMD5 uses MD5. Fingerprinting only, NOT collision resistant.
	DigestMD5 DigestAlgo = "md5"

	// DigestRIPEMD160 uses RIPEMD-160.
	DigestRIPEMD160 DigestAlgo = "ripemd160"
)

// DefaultDigestAlgo is used when the caller does not pick an algorithm.
const DefaultDigestAlgo = DigestSHA512

// digestConstructors maps each valid algorithm to its hash constructor.
var digestConstructors = map[DigestAlgo]func() hash.Hash{
	DigestSHA1:      sha1.New,
	DigestSHA256:    sha256.New,
	DigestSHA384:    sha512.New384,
	DigestSHA512:    sha512.New,
	DigestMD5:       md5.New,
	DigestRIPEMD160: ripemd160.New,
}

// IsValidDigestAlgo returns true if the algorithm is a known digest algorithm.
func IsValidDigestAlgo(algo DigestAlgo) bool {
	_, ok := digestConstructors[algo]
	return ok
}

// digest computes the one-way hex digest of content under the given
// algorithm. Deterministic: the same input always yields the same digest,
// and nothing recovers the input from it.
func digest(algo DigestAlgo, content string) (string, error) {
	newHash, ok := digestConstructors[algo]
	if !ok {
		return "", fmt.Errorf("%w: unknown algorithm %q", ErrHashFailed, algo)
	}

	h := newHash()
	if _, err := h.Write([]byte(content)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashFailed, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
