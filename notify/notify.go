package notify

import (
	"fmt"
	"log"
	"time"

	"gopkg.in/gomail.v2"
)

// Notifier delivers a short text message to an email address. Delivery
// guarantees belong to the implementation; callers only see success or
// failure of the blocking send.
type Notifier interface {
	Send(to, subject, body string) error
}

const sendTimeout = 10 * time.Second

// SMTPNotifier sends through a single SMTP account. Send blocks for at
// most sendTimeout.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (n *SMTPNotifier) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() { done <- n.dialer.DialAndSend(m) }()
	select {
	case err := <-done:
		return err
	case <-time.After(sendTimeout):
		return fmt.Errorf("smtp send to %s timed out after %s", to, sendTimeout)
	}
}

// LogNotifier prints messages instead of delivering them. Useful for
// local development without an SMTP account.
type LogNotifier struct{}

func (LogNotifier) Send(to, subject, body string) error {
	log.Printf("notify %s: %s: %s", to, subject, body)
	return nil
}
