package cloak

import (
	"errors"
	"fmt"
)

// ErrCrypto is the root of the error taxonomy. Every error returned by this
// package matches it via errors.Is, so callers can catch the whole family or
// a specific kind.
var ErrCrypto = errors.New("cloak")

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error kinds.
var (
	// ErrConfig indicates an invalid Config (secret or salt too short).
	ErrConfig = fmt.Errorf("%w: invalid config", ErrCrypto)

	// ErrInvalidCiphertext indicates an envelope that cannot be parsed or
	// whose encryptedData field is not valid hex.
	ErrInvalidCiphertext = fmt.Errorf("%w: invalid ciphertext", ErrCrypto)

	// ErrInvalidIV indicates an envelope iv field that is not valid hex.
	ErrInvalidIV = fmt.Errorf("%w: invalid iv", ErrCrypto)

	// ErrInvalidAuthTag indicates an envelope authTag field that is not valid hex.
	ErrInvalidAuthTag = fmt.Errorf("%w: invalid auth tag", ErrCrypto)

	// ErrEncryptionFailed indicates the underlying encrypt operation failed.
	ErrEncryptionFailed = fmt.Errorf("%w: encryption failed", ErrCrypto)

	// ErrDecryptionFailed indicates cipher verification failed (tag mismatch)
	// or the underlying decrypt operation errored. No plaintext is released.
	ErrDecryptionFailed = fmt.Errorf("%w: decryption failed", ErrCrypto)

	// ErrHashFailed indicates an unsupported digest algorithm or an internal
	// digest failure.
	ErrHashFailed = fmt.Errorf("%w: hash failed", ErrCrypto)

	// ErrUnsupportedType indicates a value outside the supported union
	// (null, bool, number, string, array, object) was encountered during
	// traversal.
	ErrUnsupportedType = fmt.Errorf("%w: unsupported type", ErrCrypto)

	// ErrInvalidPrefix is reserved for a future envelope version tag.
	// No current code path returns it.
	ErrInvalidPrefix = fmt.Errorf("%w: invalid prefix", ErrCrypto)
)

// ConfigError reports a Config field that failed validation.
type ConfigError struct {
	Field  string // "secret" or "salt"
	Min    int    // required minimum length
	Actual int    // observed length
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s must be at least %d bytes, got %d", ErrConfig.Error(), e.Field, e.Min, e.Actual)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// TransformError reports a failure at a specific location during traversal.
// It wraps a sentinel error with the dot path that triggered it.
type TransformError struct {
	Err   error  // Underlying sentinel error (ErrUnsupportedType, ErrEncryptionFailed, ...)
	Path  string // Dot path of the offending value
	Cause error  // Original error from the leaf operation, if any
}

func (e *TransformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s at %q: %v", e.Err.Error(), e.Path, e.Cause)
	}
	return fmt.Sprintf("%s at %q", e.Err.Error(), e.Path)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// newTransformError creates a TransformError for a traversal failure.
func newTransformError(sentinel error, path string, cause error) error {
	return &TransformError{
		Err:   sentinel,
		Path:  path,
		Cause: cause,
	}
}
