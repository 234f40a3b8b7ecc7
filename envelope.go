package cloak

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
)

// AEAD geometry. AES-256-GCM with a 96-bit nonce and a 128-bit tag.
const (
	nonceSize = 12
	tagSize   = 16
)

// Envelope is the self-describing record of one encrypted leaf or subtree.
// All fields are hex-encoded. It carries no key material.
type Envelope struct {
	IV            string `json:"iv"`
	EncryptedData string `json:"encryptedData"`
	AuthTag       string `json:"authTag"`
}

// aead wraps an AES-256-GCM instance bound to a derived key.
type aead struct {
	gcm cipher.AEAD
}

// newAEAD builds the cipher for a 32-byte derived key.
func newAEAD(key []byte) (*aead, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	return &aead{gcm: gcm}, nil
}

// Seal encrypts plaintext under a fresh random nonce and returns the
// envelope. Each call draws new entropy, so equal plaintexts produce
// distinct envelopes.
func (a *aead) Seal(plaintext string) (Envelope, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	sealed := a.gcm.Seal(nil, nonce, []byte(plaintext), nil)

	// gcm.Seal appends the tag to the ciphertext; the envelope keeps them
	// as separate fields.
	split := len(sealed) - tagSize

	return Envelope{
		IV:            hex.EncodeToString(nonce),
		EncryptedData: hex.EncodeToString(sealed[:split]),
		AuthTag:       hex.EncodeToString(sealed[split:]),
	}, nil
}

// Open verifies and decrypts an envelope. Plaintext is released only after
// the authentication tag verifies.
func (a *aead) Open(env Envelope) (string, error) {
	nonce, err := hex.DecodeString(env.IV)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIV, err)
	}

	ciphertext, err := hex.DecodeString(env.EncryptedData)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}

	tag, err := hex.DecodeString(env.AuthTag)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAuthTag, err)
	}

	if len(nonce) != nonceSize {
		return "", fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrInvalidIV, nonceSize, len(nonce))
	}

	plaintext, err := a.gcm.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	return string(plaintext), nil
}

// SealString encrypts text and returns the envelope serialized as JSON.
func (a *aead) SealString(text string) (string, error) {
	env, err := a.Seal(text)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	return string(data), nil
}

// OpenString parses an envelope from JSON and decrypts it.
func (a *aead) OpenString(text string) (string, error) {
	env, err := parseEnvelope(text)
	if err != nil {
		return "", err
	}
	return a.Open(env)
}

// parseEnvelope decodes the JSON wire form of an envelope.
func parseEnvelope(text string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	return env, nil
}
