package domain

import "time"

// User is an account identified by its email address. Accounts are created
// by the registration flow and hold no credentials; possession of the email
// inbox is the only authentication factor.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
