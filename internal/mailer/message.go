// Package mailer builds and dispatches the verification mails that carry
// login tokens.
package mailer

import (
	"fmt"

	"github.com/ignite/login-mail/internal/domain"
)

// Message is a rendered verification mail.
type Message struct {
	Subject string
	HTML    string
}

// MessageFor renders the mail for a mail type. The token alphabet is
// URL-safe, so it is concatenated onto the verify URL as-is.
func MessageFor(mt domain.MailType, verifyURL, token string) Message {
	link := verifyURL + token

	switch mt {
	case domain.MailRegister:
		return Message{
			Subject: "Confirm your registration",
			HTML: "Welcome! Please confirm your address to finish registering.<br>" +
				fmt.Sprintf(`Click <a href="%s">Link</a> to activate your account. The link is valid once and expires shortly.`, link),
		}
	default:
		return Message{
			Subject: "Your login link",
			HTML: "Welcome back! Please click the link below to login.<br>" +
				fmt.Sprintf(`Click <a href="%s">Link</a> to sign in. The link is valid once and expires shortly.`, link),
		}
	}
}
