package domain

import (
	"strings"
	"time"
)

// MailType distinguishes login-flow tokens from registration-flow tokens.
// It alters identity resolution at verification time: login requires an
// existing active account, register creates one if absent.
type MailType string

const (
	MailLogin    MailType = "login"
	MailRegister MailType = "register"
)

// Valid reports whether mt is a known mail type.
func (mt MailType) Valid() bool {
	return mt == MailLogin || mt == MailRegister
}

// MailRecord is the durable per-email record backing token verification.
// Exactly one record exists per email; every new issuance overwrites the
// salt and expiry and resets Validated.
type MailRecord struct {
	Email     string     `json:"email" db:"email"`
	Salt      string     `json:"-" db:"salt"`
	MailType  MailType   `json:"mail_type" db:"mail_type"`
	ExpiresAt *time.Time `json:"expires_at" db:"expires_at"`
	Validated bool       `json:"validated" db:"validated"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Live reports whether the record still has an unexpired, unconsumed token.
// A live record blocks re-issuance until its expiry passes.
func (r *MailRecord) Live(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.After(now)
}

// NormalizeEmail lowercases and trims an email address so that lookups and
// record keys are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail performs a cheap structural check on an email address. It is a
// gate against junk input, not RFC 5322 validation.
func ValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	local, host := email[:at], email[at+1:]
	if len(local) > 64 || host == "" {
		return false
	}
	dot := strings.LastIndex(host, ".")
	return dot > 0 && dot < len(host)-1
}
