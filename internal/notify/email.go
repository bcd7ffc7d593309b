package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Email sends alert messages over SMTP.
type Email struct {
	addr    string // host:port
	from    string
	to      []string
	auth    smtp.Auth
	subject string
}

// NewEmail creates an Email sender. password may be empty for unauthenticated
// relays.
func NewEmail(addr, from string, to []string, username, password string) *Email {
	var auth smtp.Auth
	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Email{
		addr:    addr,
		from:    from,
		to:      to,
		auth:    auth,
		subject: "coldwatch alert",
	}
}

// Send delivers message as a plain-text mail to all recipients.
func (e *Email) Send(_ context.Context, message string) error {
	if e.addr == "" || len(e.to) == 0 {
		return fmt.Errorf("smtp not configured")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		e.from, strings.Join(e.to, ", "), e.subject, message)

	if err := smtp.SendMail(e.addr, e.auth, e.from, e.to, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
