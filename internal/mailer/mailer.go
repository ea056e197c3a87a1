package mailer

import (
	"bytes"
	"context"
	"errors"

	"github.com/wneessen/go-mail"
)

// Mailer sends a message with a single PDF attachment to one address.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string, attachment []byte, filename string) error
}

// ErrNotConfigured is returned when SMTP credentials are missing from
// the environment.
var ErrNotConfigured = errors.New("EMAIL_ADDRESS and EMAIL_PASSWORD must be set")

// SMTP delivers mail over implicit TLS with username/password auth.
type SMTP struct {
	host     string
	port     int
	from     string
	password string
}

// NewSMTP creates an SMTP mailer. Credentials are checked at send
// time, so an unconfigured mailer can still be wired in.
func NewSMTP(host string, port int, from, password string) *SMTP {
	return &SMTP{host: host, port: port, from: from, password: password}
}

// Send transmits the message. Returns ErrNotConfigured when the
// sending address or password is absent.
func (s *SMTP) Send(ctx context.Context, to, subject, body string, attachment []byte, filename string) error {
	if s.from == "" || s.password == "" {
		return ErrNotConfigured
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	if err := msg.AttachReader(filename, bytes.NewReader(attachment)); err != nil {
		return err
	}

	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.from),
		mail.WithPassword(s.password),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
