// Package cloak provides selective encryption, decryption, and hashing of
// structured data.
//
// A recursive traversal walks arbitrarily nested values (objects, arrays,
// primitives) and applies an authenticated-encryption, decryption, or one-way
// hashing transform at exactly the locations named by a set of dot-notation
// paths, leaving everything else untouched.
//
// # Basic Usage
//
//	cfg := cloak.Config{
//	    Secret:  "at-least-thirty-two-bytes-secret",
//	    Salt:    "sixteen-byte-salt",
//	    Context: []string{"users", "v1"},
//	}
//
//	enc, _ := cloak.NewEncrypter(cfg)
//	dec, _ := cloak.NewDecrypter(cfg)
//
//	out, _ := enc.Object(map[string]any{
//	    "name":  "John Doe",
//	    "email": "john@example.com",
//	}, "email")
//	// out["name"] == "John Doe", out["email"] is an envelope JSON string
//
//	back, _ := dec.Object(out, "email")
//	// back equals the original object
//
// # Path Selection
//
// Paths use dot notation ("profile.email"). A selected object or array is
// serialized to canonical JSON and transformed as one opaque unit; an
// unselected object is recursed into with the path set narrowed to its
// descendants. Arrays are atomic: they are never recursed into, and paths
// naming array indices never select individual elements. When no paths are
// given, every top-level field is selected.
//
// # Keys
//
// The AES-256 key is derived deterministically from the config by scrypt over
// the secret and a salt combined with the ordered context labels. Context
// order matters: reordering labels derives a different key.
//
// # Envelope Format
//
// Each encrypted location holds a self-contained JSON envelope with
// hex-encoded fields:
//
//	{"iv": <24 hex chars>, "encryptedData": <hex>, "authTag": <32 hex chars>}
//
// Every encryption draws a fresh random nonce, so equal plaintexts produce
// different envelopes that decrypt identically.
//
// # Hashing
//
// Hashing replaces selected values with hex digests (sha1, sha256, sha384,
// sha512, md5, ripemd160; default sha512). There is no inverse.
//
// # Errors
//
// All failures are terminal for the operation and match ErrCrypto plus a
// specific sentinel (ErrConfig, ErrInvalidCiphertext, ErrInvalidIV,
// ErrInvalidAuthTag, ErrEncryptionFailed, ErrDecryptionFailed, ErrHashFailed,
// ErrUnsupportedType) via errors.Is. A failed traversal returns no partial
// result, and decryption never releases plaintext without tag verification.
package cloak

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Encrypter applies authenticated encryption to selected locations.
// Safe for concurrent use; each encryption draws its own nonce.
type Encrypter struct {
	aead *aead
}

// NewEncrypter validates the config, derives the key, and binds the cipher.
func NewEncrypter(cfg Config) (*Encrypter, error) {
	key, err := derivedKey(cfg)
	if err != nil {
		return nil, err
	}

	a, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	emitCodecCreated(context.Background(), opEncrypt)
	return &Encrypter{aead: a}, nil
}

// String encrypts text directly and returns the envelope as JSON.
func (e *Encrypter) String(text string) (string, error) {
	return e.aead.SealString(text)
}

// Object returns a copy of value with every selected location replaced by an
// envelope JSON string. Selected subtrees are serialized to canonical JSON
// and encrypted as one unit. With no paths, every top-level field is
// selected. The input is never mutated.
func (e *Encrypter) Object(value map[string]any, paths ...string) (map[string]any, error) {
	start := time.Now()
	emitTransformStart(context.Background(), opEncrypt, len(paths))

	out, err := transformObject(value, NewPathSet(paths...), e.encryptLeaf)

	emitTransformComplete(context.Background(), opEncrypt, len(paths), time.Since(start), err)
	return out, err
}

// encryptLeaf serializes a selected value and seals it into an envelope.
func (e *Encrypter) encryptLeaf(v any) (any, error) {
	text, err := serializeValue(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	return e.aead.SealString(text)
}

// Decrypter reverses Encrypter output for the same config and paths.
// Safe for concurrent use.
type Decrypter struct {
	aead *aead
}

// NewDecrypter validates the config, derives the key, and binds the cipher.
func NewDecrypter(cfg Config) (*Decrypter, error) {
	key, err := derivedKey(cfg)
	if err != nil {
		return nil, err
	}

	a, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	emitCodecCreated(context.Background(), opDecrypt)
	return &Decrypter{aead: a}, nil
}

// String parses an envelope from JSON and returns the verified plaintext.
func (d *Decrypter) String(envelope string) (string, error) {
	return d.aead.OpenString(envelope)
}

// Object returns a copy of value with every selected envelope string
// decrypted and parsed back into its original form. Paths must match the
// ones used for encryption. The input is never mutated.
func (d *Decrypter) Object(value map[string]any, paths ...string) (map[string]any, error) {
	start := time.Now()
	emitTransformStart(context.Background(), opDecrypt, len(paths))

	out, err := transformObject(value, NewPathSet(paths...), d.decryptLeaf)

	emitTransformComplete(context.Background(), opDecrypt, len(paths), time.Since(start), err)
	return out, err
}

// decryptLeaf opens a selected envelope string and reparses the plaintext,
// mirroring the serialize-before-encrypt step.
func (d *Decrypter) decryptLeaf(v any) (any, error) {
	text, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: expected envelope string, got %T", ErrInvalidCiphertext, v)
	}

	plain, err := d.aead.OpenString(text)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal([]byte(plain), &parsed); err != nil {
		// Foreign producers may encrypt raw text rather than JSON.
		return plain, nil
	}
	return parsed, nil
}

// Hasher replaces selected locations with one-way hex digests.
// Deterministic and stateless; safe for concurrent use.
type Hasher struct {
	algo DigestAlgo
}

// NewHasher returns a Hasher for the given algorithm, or sha512 when none
// is given.
func NewHasher(algo ...DigestAlgo) (*Hasher, error) {
	selected := DefaultDigestAlgo
	if len(algo) > 0 {
		selected = algo[0]
	}

	if !IsValidDigestAlgo(selected) {
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrHashFailed, selected)
	}

	emitCodecCreated(context.Background(), opHash)
	return &Hasher{algo: selected}, nil
}

// Algo returns the digest algorithm in use.
func (h *Hasher) Algo() DigestAlgo {
	return h.algo
}

// String returns the hex digest of text.
func (h *Hasher) String(text string) (string, error) {
	return digest(h.algo, text)
}

// Object returns a copy of value with every selected location replaced by
// its hex digest. The result is structurally isomorphic to the input but
// digests are irreversible. The input is never mutated.
func (h *Hasher) Object(value map[string]any, paths ...string) (map[string]any, error) {
	start := time.Now()
	emitTransformStart(context.Background(), opHash, len(paths))

	out, err := transformObject(value, NewPathSet(paths...), h.hashLeaf)

	emitTransformComplete(context.Background(), opHash, len(paths), time.Since(start), err)
	return out, err
}

// hashLeaf digests a selected value. String scalars are digested as raw
// text; everything else is digested over its canonical JSON form. Hashing
// has no inverse, so no parse step needs to round-trip.
func (h *Hasher) hashLeaf(v any) (any, error) {
	if s, ok := v.(string); ok {
		return digest(h.algo, s)
	}

	text, err := serializeValue(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashFailed, err)
	}
	return digest(h.algo, text)
}
