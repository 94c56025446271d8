package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/login-mail/internal/domain"
	"github.com/ignite/login-mail/internal/service/admission"
)

// IPBanRepo implements admission.BanRepository against PostgreSQL.
type IPBanRepo struct{ db *sql.DB }

// NewIPBanRepo creates a Postgres-backed ban repository.
func NewIPBanRepo(db *sql.DB) *IPBanRepo { return &IPBanRepo{db: db} }

func (r *IPBanRepo) IsBanned(ctx context.Context, ip string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM ip_bans WHERE ip = $1)`,
		ip,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ban: %w", err)
	}
	return exists, nil
}

// Ban records a ban. The first breach wins; repeats keep the original reason
// and timestamp.
func (r *IPBanRepo) Ban(ctx context.Context, ban *domain.IPBan) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ip_bans (ip, reason, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (ip) DO NOTHING
	`, ban.IP, ban.Reason)
	if err != nil {
		return fmt.Errorf("record ban: %w", err)
	}
	return nil
}

func (r *IPBanRepo) Remove(ctx context.Context, ip string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ip_bans WHERE ip = $1`, ip)
	if err != nil {
		return fmt.Errorf("remove ban: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return admission.ErrBanNotFound
	}
	return nil
}

func (r *IPBanRepo) List(ctx context.Context) ([]domain.IPBan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ip, reason, created_at FROM ip_bans ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list bans: %w", err)
	}
	defer rows.Close()

	var out []domain.IPBan
	for rows.Next() {
		var b domain.IPBan
		if err := rows.Scan(&b.IP, &b.Reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ban: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
