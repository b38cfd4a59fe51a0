// Package mail sends the transactional mail of the service: password reset
// links and contact form messages.
package mail

import (
	"context"
	"fmt"
	"html"

	"ngolib/pkg/types"

	"gopkg.in/gomail.v2"
)

// Sender delivers one HTML message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPSender(config *types.Config) *SMTPSender {
	return &SMTPSender{
		from: config.MailFrom,
		dialer: gomail.NewDialer(
			config.SMTPHost,
			config.SMTPPort,
			config.SMTPUser,
			config.SMTPPassword,
		),
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	return nil
}

const (
	ResetSubject          = "Password Reset"
	DefaultContactSubject = "Contact Message"
)

func ResetBody(link string) string {
	return fmt.Sprintf(
		`<p>You requested a password reset.</p><p>Click <a href="%s">here</a> to reset your password. The link expires soon.</p>`,
		html.EscapeString(link),
	)
}

// ContactBody renders a contact form message. label names who the visitor
// wanted to reach.
func ContactBody(message, label string) string {
	return fmt.Sprintf("<p>%s to %s</p>", html.EscapeString(message), html.EscapeString(label))
}
