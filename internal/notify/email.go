package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/brandpulse/alerts-backend-go/internal/models"
	"github.com/brandpulse/alerts-backend-go/internal/repository"
)

// smtpTimeout bounds the whole SMTP conversation so a stalled relay cannot
// block a worker.
const smtpTimeout = 15 * time.Second

// EmailSender delivers alerts over SMTP
type EmailSender struct {
	users *repository.UserRepository

	host string
	port string
	user string
	pass string
	from string
}

// NewEmailSender creates an email sender using the given SMTP settings
func NewEmailSender(users *repository.UserRepository, host, port, user, pass, from string) *EmailSender {
	return &EmailSender{users: users, host: host, port: port, user: user, pass: pass, from: from}
}

// Channel implements Sender
func (s *EmailSender) Channel() models.Channel { return models.ChannelEmail }

// Send resolves the recipient address and relays the alert over SMTP.
// The preference's email address wins over the user record's.
func (s *EmailSender) Send(ctx context.Context, alert *models.Alert, pref *models.NotificationPreference) *SendResult {
	subject := fmt.Sprintf("%s Alert: %s", models.SeverityLabel(alert.Severity), alert.Title)

	address := ""
	if pref.EmailAddress != nil && *pref.EmailAddress != "" {
		address = *pref.EmailAddress
	} else {
		user, err := s.users.GetUser(pref.UserID)
		if err != nil {
			return failure("", alert.Message, fmt.Sprintf("User %s not found", pref.UserID))
		}
		address = user.Email
	}

	if err := s.deliver(ctx, address, subject, alert.Message); err != nil {
		res := failure(address, alert.Message, fmt.Sprintf("Email sending failed: %v", err))
		res.Subject = &subject
		return res
	}

	return &SendResult{
		Status:    models.StatusSent,
		Recipient: address,
		Subject:   &subject,
		Content:   alert.Message,
		SentAt:    now(),
	}
}

// deliver runs one SMTP conversation under a hard deadline
func (s *EmailSender) deliver(ctx context.Context, to, subject, body string) error {
	deadline := time.Now().Add(smtpTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(s.host, s.port), smtpTimeout)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("handshake: %w", err)
	}
	defer client.Close()

	if s.user != "" {
		auth := smtp.PlainAuth("", s.user, s.pass, s.host)
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("auth: %w", err)
			}
		}
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return client.Quit()
}
