package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/login-mail/internal/domain"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestMailRecordGet(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMailRecordRepo(db)

	expires := time.Now().Add(10 * time.Minute)
	mock.ExpectQuery(`SELECT email, salt, mail_type, expires_at, validated, updated_at`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(
			[]string{"email", "salt", "mail_type", "expires_at", "validated", "updated_at"},
		).AddRow("a@x.com", "salt-1", "login", expires, false, time.Now()))

	rec, err := repo.Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "salt-1", rec.Salt)
	assert.Equal(t, domain.MailLogin, rec.MailType)
	require.NotNil(t, rec.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMailRecordGetMissing(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMailRecordRepo(db)

	mock.ExpectQuery(`SELECT email, salt, mail_type`).
		WithArgs("none@x.com").
		WillReturnError(sql.ErrNoRows)

	rec, err := repo.Get(context.Background(), "none@x.com")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMailRecordSaveUpserts(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMailRecordRepo(db)

	expires := time.Now().Add(10 * time.Minute)
	mock.ExpectExec(`INSERT INTO mail_records .+ ON CONFLICT \(email\) DO UPDATE`).
		WithArgs("a@x.com", "salt-2", "register", &expires, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &domain.MailRecord{
		Email:     "a@x.com",
		Salt:      "salt-2",
		MailType:  domain.MailRegister,
		ExpiresAt: &expires,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMailRecordConsume(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMailRecordRepo(db)

	mock.ExpectExec(`UPDATE mail_records SET validated = true`).
		WithArgs("a@x.com", "salt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.Consume(context.Background(), "a@x.com", "salt-1")
	require.NoError(t, err)
	assert.True(t, won)
}

func TestMailRecordConsumeLoser(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMailRecordRepo(db)

	// Zero rows affected: already validated, or the salt was superseded.
	mock.ExpectExec(`UPDATE mail_records SET validated = true`).
		WithArgs("a@x.com", "stale-salt").
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.Consume(context.Background(), "a@x.com", "stale-salt")
	require.NoError(t, err)
	assert.False(t, won)
}
