// Package privilege encrypts attorney-client communications at rest.
package privilege

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
	"log/slog"

	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/platform/sentinel"
)

// KeyLen is the required key length: AES-256.
const KeyLen = 32

// Cipher seals and opens privileged content with AES-256-GCM. Ciphertexts
// are self-contained: the nonce is prepended before base64 encoding, so no
// per-message state lives outside the ciphertext.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeyLen {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "privilege key must be %d bytes, got %d", KeyLen, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEncryptionFailure, "initialize cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEncryptionFailure, "initialize GCM")
	}
	return &Cipher{aead: aead}, nil
}

// NewEphemeralCipher generates a random key and builds a Cipher from it.
// Anything encrypted with it is unreadable after restart, so this is only
// acceptable in dev mode. The warning is deliberate and loud.
func NewEphemeralCipher(logger *slog.Logger) (*Cipher, error) {
	key := make([]byte, KeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEncryptionFailure, "generate ephemeral key")
	}
	logger.Warn("PRIVILEGE KEY IS EPHEMERAL: encrypted communications will be unreadable after restart")
	return NewCipher(key)
}

// Encrypt seals plaintext and returns base64url(nonce || ciphertext).
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeEncryptionFailure, "generate nonce")
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a ciphertext produced by Encrypt. A ciphertext that fails
// authentication returns sentinel.ErrTampered wrapped with an encryption
// failure code; the caller must treat it as a potential integrity incident.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeEncryptionFailure, "malformed ciphertext")
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", dErrors.Wrap(sentinel.ErrTampered, dErrors.CodeEncryptionFailure, "ciphertext too short")
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", dErrors.Wrap(sentinel.ErrTampered, dErrors.CodeEncryptionFailure, "decryption failed")
	}
	return string(plaintext), nil
}
