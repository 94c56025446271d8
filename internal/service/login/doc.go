// Package login implements token issuance and verification for the
// passwordless email login flow.
//
// Issuance is gated per email: at most one live, unexpired token exists per
// address at a time, and a prior token's expiry is also the earliest moment a
// new one may be sent. Verification is single-use: consuming a token is an
// atomic conditional update against the mail record, so concurrent
// verifications of the same token yield exactly one winner.
//
// The service layer contains pure business logic and depends on the
// repository and sender interfaces defined in repository.go. It never
// imports net/http or database/sql directly.
package login
