package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/login-mail/internal/domain"
)

// IdentityRepo implements login.IdentityRepository against PostgreSQL.
// Accounts carry no credentials; the row is the identity.
type IdentityRepo struct{ db *sql.DB }

// NewIdentityRepo creates a Postgres-backed identity repository.
func NewIdentityRepo(db *sql.DB) *IdentityRepo { return &IdentityRepo{db: db} }

func (r *IdentityRepo) Exists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

func (r *IdentityRepo) IsActive(ctx context.Context, email string) (bool, error) {
	var active bool
	err := r.db.QueryRowContext(ctx,
		`SELECT active FROM users WHERE email = $1`, email,
	).Scan(&active)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user state: %w", err)
	}
	return active, nil
}

// Create inserts a new active account. Two concurrent registrations of the
// same email collapse onto one row; the loser reads the winner's row back.
func (r *IdentityRepo) Create(ctx context.Context, email string) (*domain.User, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, active, created_at)
		VALUES ($1, $2, true, NOW())
		ON CONFLICT (email) DO NOTHING
	`, uuid.New().String(), email)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return r.Get(ctx, email)
}

func (r *IdentityRepo) Get(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, active, created_at FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
