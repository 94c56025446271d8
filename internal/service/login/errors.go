package login

import "errors"

// Sentinel errors for the login service layer. Handlers map these to
// user-facing responses; the distinction between ErrToken and a parse
// failure is never surfaced externally.
var (
	// ErrRateLimit: a live, unexpired token already exists for the address.
	ErrRateLimit = errors.New("login: a live token already exists for this address")

	// ErrTransport: the notification could not be dispatched. The mail
	// record was already persisted, so a retry is rejected until the stored
	// expiry passes.
	ErrTransport = errors.New("login: mail dispatch failed")

	// ErrToken: salt mismatch (a newer token superseded this one, or it was
	// forged) or expiry passed. The two cases are deliberately not
	// distinguished.
	ErrToken = errors.New("login: invalid or expired token")

	// ErrAlreadyValidated: the token was already consumed.
	ErrAlreadyValidated = errors.New("login: token already used")

	// ErrInactiveIdentity: login token for an account that does not exist
	// or is not active.
	ErrInactiveIdentity = errors.New("login: account is missing or inactive")
)
