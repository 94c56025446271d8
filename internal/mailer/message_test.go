package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignite/login-mail/internal/domain"
)

func TestMessageFor(t *testing.T) {
	const verifyURL = "https://example.com/auth/verify?token="

	tests := []struct {
		name        string
		mailType    domain.MailType
		wantSubject string
	}{
		{"login", domain.MailLogin, "Your login link"},
		{"register", domain.MailRegister, "Confirm your registration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := MessageFor(tt.mailType, verifyURL, "TOK%3D")
			assert.Equal(t, tt.wantSubject, msg.Subject)
			assert.Contains(t, msg.HTML, `href="https://example.com/auth/verify?token=TOK%3D"`)
		})
	}
}
