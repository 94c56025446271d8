package login

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/login-mail/internal/domain"
	"github.com/ignite/login-mail/internal/pkg/logger"
	"github.com/ignite/login-mail/internal/token"
)

// DefaultTokenTTL is how long an issued token (and therefore the per-email
// send cooldown) remains live.
const DefaultTokenTTL = 10 * time.Minute

// Service implements the login business logic. It holds no per-request state
// and is safe for concurrent use; all durable state lives behind the
// repositories.
type Service struct {
	tokens  *token.Manager
	records RecordRepository
	users   IdentityRepository
	sender  Sender
	ttl     time.Duration
	now     func() time.Time
}

// NewService wires a login service. ttl <= 0 selects DefaultTokenTTL and a
// nil clock selects time.Now.
func NewService(tokens *token.Manager, records RecordRepository, users IdentityRepository, sender Sender, ttl time.Duration, now func() time.Time) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		tokens:  tokens,
		records: records,
		users:   users,
		sender:  sender,
		ttl:     ttl,
		now:     now,
	}
}

// Send issues a fresh token for email and dispatches it in a verification
// mail. The mail type is register when no identity exists yet, login
// otherwise, so an unknown address silently takes the registration flow.
//
// Sending is allowed iff no prior token is still live. On ErrTransport the
// record has already been persisted: the token is valid server-side but was
// never delivered, and a resend is rejected until the stored expiry passes.
func (s *Service) Send(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	exists, err := s.users.Exists(ctx, email)
	if err != nil {
		return fmt.Errorf("check identity: %w", err)
	}
	mt := domain.MailLogin
	if !exists {
		mt = domain.MailRegister
	}

	rec, err := s.records.Get(ctx, email)
	if err != nil {
		return fmt.Errorf("load mail record: %w", err)
	}
	if rec != nil && rec.Live(s.now()) {
		return ErrRateLimit
	}

	encoded, payload, err := s.tokens.Issue(email, mt, s.ttl)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	expiry := payload.Expiry()
	if err := s.records.Save(ctx, &domain.MailRecord{
		Email:     email,
		Salt:      payload.Salt,
		MailType:  mt,
		ExpiresAt: &expiry,
		Validated: false,
	}); err != nil {
		return fmt.Errorf("save mail record: %w", err)
	}

	if err := s.sender.Deliver(ctx, email, mt, encoded); err != nil {
		logger.Error("mail dispatch failed", "email", email, "mail_type", string(mt), "err", err.Error())
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	logger.Info("token issued", "email", email, "mail_type", string(mt), "expires_at", expiry.Format(time.RFC3339))
	return nil
}

// Verify parses and validates an encoded token, consumes it, and returns the
// resolved identity.
//
// The check order matters: the validated flag is inspected before the
// salt/expiry comparison so that replaying a used link yields
// ErrAlreadyValidated rather than the generic ErrToken, and the final
// consumption is a conditional update so two racing verifications of the
// same token produce exactly one winner.
func (s *Service) Verify(ctx context.Context, encoded string) (*domain.User, error) {
	payload, err := s.tokens.Parse(encoded)
	if err != nil {
		return nil, err
	}

	rec, err := s.records.Get(ctx, payload.Email)
	if err != nil {
		return nil, fmt.Errorf("load mail record: %w", err)
	}
	if rec == nil {
		return nil, ErrToken
	}
	if rec.Validated {
		return nil, ErrAlreadyValidated
	}
	if rec.Salt != payload.Salt || !payload.Expiry().After(s.now()) {
		return nil, ErrToken
	}

	user, err := s.resolveIdentity(ctx, payload)
	if err != nil {
		return nil, err
	}

	won, err := s.records.Consume(ctx, payload.Email, payload.Salt)
	if err != nil {
		return nil, fmt.Errorf("consume token: %w", err)
	}
	if !won {
		return nil, ErrAlreadyValidated
	}

	logger.Info("token verified", "email", payload.Email, "mail_type", string(payload.MailType))
	return user, nil
}

func (s *Service) resolveIdentity(ctx context.Context, p token.Payload) (*domain.User, error) {
	exists, err := s.users.Exists(ctx, p.Email)
	if err != nil {
		return nil, fmt.Errorf("check identity: %w", err)
	}

	switch p.MailType {
	case domain.MailLogin:
		if !exists {
			return nil, ErrInactiveIdentity
		}
		active, err := s.users.IsActive(ctx, p.Email)
		if err != nil {
			return nil, fmt.Errorf("check identity state: %w", err)
		}
		if !active {
			return nil, ErrInactiveIdentity
		}
		return s.users.Get(ctx, p.Email)
	case domain.MailRegister:
		if !exists {
			return s.users.Create(ctx, p.Email)
		}
		return s.users.Get(ctx, p.Email)
	default:
		// Parse validates the mail type, so this is unreachable via the
		// public API.
		return nil, token.ErrFormat
	}
}
