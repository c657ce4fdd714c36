package email

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"
)

// Sender dispatches a plain text email. Implementations must be safe for
// concurrent use; callers treat delivery as best-effort.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through a single SMTP relay.
type SMTPSender struct {
	Host     string
	Port     string
	From     string
	Password string
	Timeout  time.Duration
}

// NewSMTPSender creates a sender with a bounded dial timeout so a dead
// relay cannot hang the caller.
func NewSMTPSender(host, port, from, password string) *SMTPSender {
	return &SMTPSender{
		Host:     host,
		Port:     port,
		From:     from,
		Password: password,
		Timeout:  10 * time.Second,
	}
}

// Send delivers a plain text email using SMTP with STARTTLS when the
// server offers it.
func (s *SMTPSender) Send(to, subject, body string) error {
	address := net.JoinHostPort(s.Host, s.Port)

	conn, err := net.DialTimeout("tcp", address, s.Timeout)
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %v", err)
	}
	conn.SetDeadline(time.Now().Add(s.Timeout))

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create smtp client: %v", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return fmt.Errorf("failed to start tls: %v", err)
		}
	}

	if ok, _ := client.Extension("AUTH"); ok {
		auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %v", err)
		}
	}

	if err := client.Mail(s.From); err != nil {
		return fmt.Errorf("failed to set sender: %v", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %v", err)
	}

	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %v", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message body: %v", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message body: %v", err)
	}

	return client.Quit()
}
