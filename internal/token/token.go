// Package token implements the encrypted, self-contained login token.
//
// A token carries its own email, mail type, expiry, and per-issuance salt
// inside an AES-GCM envelope, so the server can re-validate it against the
// persisted mail record without a separate lookup table keyed by token hash.
// The encoded form is unpadded URL-safe base64, so it can be embedded in a
// hyperlink query parameter as-is and survives the server-side query parse
// unchanged.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/login-mail/internal/domain"
)

// ErrFormat is returned by Parse for any malformed or tampered token:
// bad base64, failed decryption, or a payload that does not deserialize
// into a well-formed Payload.
var ErrFormat = errors.New("token: malformed token")

// saltBytes is the entropy of the per-issuance salt. 16 random bytes make
// salt collisions across issuances negligible.
const saltBytes = 16

// Payload is the structured content of a token. It is constructed per
// issuance and never stored as-is; the salt and expiry are mirrored into the
// durable mail record for later comparison.
type Payload struct {
	Email     string          `json:"email"`
	MailType  domain.MailType `json:"mail_type"`
	ExpiresAt int64           `json:"expires_at"`
	Salt      string          `json:"salt"`
}

// Expiry returns the payload expiry as a time.Time in UTC.
func (p Payload) Expiry() time.Time {
	return time.Unix(p.ExpiresAt, 0).UTC()
}

// Manager issues and parses tokens. It is stateless apart from the codec and
// is safe for concurrent use.
type Manager struct {
	codec *Codec
	now   func() time.Time
}

// NewManager builds a Manager whose key is derived from secret.
// now may be nil, in which case time.Now is used.
func NewManager(secret []byte, now func() time.Time) (*Manager, error) {
	codec, err := NewCodec(secret)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{codec: codec, now: now}, nil
}

// Issue builds a payload expiring validFor from now, encrypts it, and encodes
// it for embedding in a link. The returned payload carries the salt and
// expiry the caller must persist.
func (m *Manager) Issue(email string, mt domain.MailType, validFor time.Duration) (string, Payload, error) {
	salt, err := generateSalt()
	if err != nil {
		return "", Payload{}, fmt.Errorf("generate salt: %w", err)
	}

	p := Payload{
		Email:     email,
		MailType:  mt,
		ExpiresAt: m.now().Add(validFor).Unix(),
		Salt:      salt,
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", Payload{}, fmt.Errorf("marshal payload: %w", err)
	}
	blob, err := m.codec.Encrypt(raw)
	if err != nil {
		return "", Payload{}, fmt.Errorf("encrypt payload: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(blob), p, nil
}

// Parse reverses Issue: base64 decoding, decryption, and deserialization.
// Every failure mode collapses into ErrFormat so callers cannot tell which
// stage rejected the input.
func (m *Manager) Parse(s string) (Payload, error) {
	if s == "" {
		return Payload{}, ErrFormat
	}

	blob, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Payload{}, ErrFormat
	}
	raw, err := m.codec.Decrypt(blob)
	if err != nil {
		return Payload{}, ErrFormat
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, ErrFormat
	}
	if p.Email == "" || p.Salt == "" || !p.MailType.Valid() {
		return Payload{}, ErrFormat
	}
	return p, nil
}

func generateSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
