package login

import (
	"context"

	"github.com/ignite/login-mail/internal/domain"
)

// RecordRepository defines the data access contract for durable mail records.
type RecordRepository interface {
	// Get returns the record for an email, or (nil, nil) if none exists.
	Get(ctx context.Context, email string) (*domain.MailRecord, error)

	// Save upserts the record for rec.Email in a single atomic write. A race
	// between two concurrent saves resolves as last writer wins.
	Save(ctx context.Context, rec *domain.MailRecord) error

	// Consume atomically sets validated=true for the record iff the email
	// and salt match and the record is not yet validated. It returns true
	// iff this call performed the transition; concurrent losers get false.
	Consume(ctx context.Context, email, salt string) (bool, error)
}

// IdentityRepository is the identity store consumed by the login flow.
type IdentityRepository interface {
	Exists(ctx context.Context, email string) (bool, error)
	IsActive(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, email string) (*domain.User, error)
}

// Sender dispatches the verification mail carrying the encoded token.
type Sender interface {
	Deliver(ctx context.Context, to string, mt domain.MailType, token string) error
}
