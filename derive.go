package cloak

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Minimum lengths enforced before key derivation.
const (
	MinSecretLen = 32
	MinSaltLen   = 16
)

// KeyLen is the derived key length in bytes (AES-256).
const KeyLen = 32

// contextSeparator joins context labels and the static salt into the
// combined derivation salt.
const contextSeparator = "::"

// Config holds the inputs for key derivation. It is owned by the caller and
// must not change for the lifetime of a derived key.
//
// Context label order is significant: the labels are joined in the order
// given, so ["a", "b"] and ["b", "a"] derive different keys. Callers that
// reorder equivalent labels will be unable to decrypt earlier output.
type Config struct {
	Secret  string   // at least 32 bytes
	Salt    string   // at least 16 bytes
	Context []string // ordered derivation labels, may be empty
}

// Validate checks the minimum length requirements.
func (c Config) Validate() error {
	if len(c.Secret) < MinSecretLen {
		return &ConfigError{Field: "secret", Min: MinSecretLen, Actual: len(c.Secret)}
	}
	if len(c.Salt) < MinSaltLen {
		return &ConfigError{Field: "salt", Min: MinSaltLen, Actual: len(c.Salt)}
	}
	return nil
}

// ScryptParams configures the key derivation cost.
type ScryptParams struct {
	N int // CPU/memory cost, power of two
	R int // block size
	P int // parallelism
}

// DefaultScryptParams returns the derivation cost used by DeriveKey.
func DefaultScryptParams() ScryptParams {
	return ScryptParams{
		N: 32768,
		R: 8,
		P: 1,
	}
}

// DeriveKey derives 32 bytes of key material from the config.
//
// The context labels are joined with "::" and appended to the salt with the
// same separator to form the combined derivation salt; scrypt then stretches
// the secret over it. Derivation is fully deterministic: the same config
// always yields the same key.
func DeriveKey(cfg Config) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return deriveKey(cfg, DefaultScryptParams())
}

func deriveKey(cfg Config, params ScryptParams) ([]byte, error) {
	salt := cfg.Salt
	if len(cfg.Context) > 0 {
		salt += contextSeparator + strings.Join(cfg.Context, contextSeparator)
	}

	key, err := scrypt.Key([]byte(cfg.Secret), []byte(salt), params.N, params.R, params.P, KeyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	return key, nil
}
