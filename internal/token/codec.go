package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrAuthentication is returned by Decrypt when the ciphertext is truncated,
// corrupted, or fails tag verification. No distinction is made between those
// cases.
var ErrAuthentication = errors.New("token: authentication failed")

const keySize = 32 // AES-256

// hkdfInfo binds the derived key to this usage; changing it invalidates all
// outstanding tokens.
const hkdfInfo = "login-mail token encryption v1"

// Codec performs authenticated symmetric encryption of token payloads using
// AES-256-GCM. The key is derived once from the application secret via
// HKDF-SHA256, so the secret itself does not need to be key-sized.
//
// Encrypted blobs are laid out as nonce ‖ ciphertext ‖ tag with fixed-width
// nonce and tag, so the boundaries are unambiguous.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec derives the encryption key from secret and builds the AEAD.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: empty secret")
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// Encrypt seals plaintext with a freshly-random nonce. The nonce is prepended
// to the sealed output.
func (c *Codec) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt. Any structural or tag failure is
// reported as ErrAuthentication.
func (c *Codec) Decrypt(blob []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(blob) < ns+c.aead.Overhead() {
		return nil, ErrAuthentication
	}
	plaintext, err := c.aead.Open(nil, blob[:ns], blob[ns:], nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}
