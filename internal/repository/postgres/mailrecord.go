// Package postgres implements the service repository interfaces against
// PostgreSQL via database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/login-mail/internal/domain"
)

// MailRecordRepo implements login.RecordRepository against PostgreSQL.
type MailRecordRepo struct{ db *sql.DB }

// NewMailRecordRepo creates a Postgres-backed mail record repository.
func NewMailRecordRepo(db *sql.DB) *MailRecordRepo { return &MailRecordRepo{db: db} }

func (r *MailRecordRepo) Get(ctx context.Context, email string) (*domain.MailRecord, error) {
	var rec domain.MailRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT email, salt, mail_type, expires_at, validated, updated_at
		FROM mail_records WHERE email = $1
	`, email).Scan(&rec.Email, &rec.Salt, &rec.MailType, &rec.ExpiresAt, &rec.Validated, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mail record: %w", err)
	}
	return &rec, nil
}

// Save upserts the record in a single statement; a race between two
// concurrent sends for the same email resolves as last writer wins.
func (r *MailRecordRepo) Save(ctx context.Context, rec *domain.MailRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mail_records (email, salt, mail_type, expires_at, validated, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (email) DO UPDATE
		SET salt = $2, mail_type = $3, expires_at = $4, validated = $5, updated_at = NOW()
	`, rec.Email, rec.Salt, rec.MailType, rec.ExpiresAt, rec.Validated)
	if err != nil {
		return fmt.Errorf("save mail record: %w", err)
	}
	return nil
}

// Consume is the single conditional update that makes verification
// single-use: of any number of concurrent attempts against the same salt,
// exactly one sees a row affected.
func (r *MailRecordRepo) Consume(ctx context.Context, email, salt string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE mail_records SET validated = true, updated_at = NOW()
		WHERE email = $1 AND salt = $2 AND validated = false
	`, email, salt)
	if err != nil {
		return false, fmt.Errorf("consume mail record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume mail record: %w", err)
	}
	return n == 1, nil
}
