package services

import (
	"fmt"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"
)

// Mailer delivers notification mail. Delivery failures never fail the
// operation that triggered them; implementations log and move on.
type Mailer interface {
	SendVerificationEmail(to, token string)
}

type SMTPMailer struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
	log         zerolog.Logger
}

func NewSMTPMailer(host string, port int, username, password, from, frontendURL string, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer:      gomail.NewDialer(host, port, username, password),
		from:        from,
		frontendURL: frontendURL,
		log:         log,
	}
}

// SendVerificationEmail mails the signup verification link. It runs on its
// own goroutine; a failed send is logged for manual resend and the signup
// that triggered it still succeeds.
func (m *SMTPMailer) SendVerificationEmail(to, token string) {
	go func() {
		link := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)

		msg := gomail.NewMessage()
		msg.SetHeader("From", m.from)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", "Verify your email")
		msg.SetBody("text/plain", fmt.Sprintf(
			"Click the link below to verify your email:\n\n%s\n\nThis link expires in 24 hours.", link))

		if err := m.dialer.DialAndSend(msg); err != nil {
			m.log.Error().Err(err).Str("to", to).Msg("verification mail delivery failed")
			return
		}
		m.log.Info().Str("to", to).Msg("verification mail sent")
	}()
}

// NopMailer is used in tests and when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) SendVerificationEmail(string, string) {}
