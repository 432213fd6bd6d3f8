// Package notification delivers recommendation results to the traveler.
package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/tigerroll/vacationspots/internal/config"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const moduleName = "notification"

// SMTPNotifier implements port.Notifier over plain SMTP.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
}

// NewSMTPNotifier creates a notifier from the email settings.
func NewSMTPNotifier(cfg *config.EmailConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, exception.NewBatchError(moduleName, "smtp host is required", nil, false, false)
	}
	if cfg.From == "" || len(cfg.To) == 0 {
		return nil, exception.NewBatchError(moduleName, "sender and at least one recipient are required", nil, false, false)
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return &SMTPNotifier{
		host:     cfg.Host,
		port:     port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		to:       cfg.To,
	}, nil
}

// Notify sends the message. A failed delivery is retried once before the
// error is returned.
func (n *SMTPNotifier) Notify(ctx context.Context, subject, body string) error {
	err := n.send(subject, body)
	if err == nil {
		return nil
	}
	logger.Warnf("Email delivery failed, retrying once: %v", err)

	select {
	case <-ctx.Done():
		return exception.NewBatchError(moduleName, "email delivery aborted", ctx.Err(), false, false)
	case <-time.After(2 * time.Second):
	}

	if err := n.send(subject, body); err != nil {
		return exception.NewBatchError(moduleName, "failed to deliver email", err, false, false)
	}
	return nil
}

func (n *SMTPNotifier) send(subject, body string) error {
	headers := []string{
		"From: " + n.from,
		"To: " + strings.Join(n.to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"Date: " + time.Now().Format(time.RFC1123Z),
	}
	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}
	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	if err := smtp.SendMail(addr, auth, n.from, n.to, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", addr, err)
	}
	return nil
}

var _ port.Notifier = (*SMTPNotifier)(nil)

// LogNotifier implements port.Notifier by writing to the application log.
// It is the fallback when email delivery is disabled.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the subject and body at INFO level.
func (n *LogNotifier) Notify(ctx context.Context, subject, body string) error {
	logger.Infof("Notification: %s\n%s", subject, body)
	return nil
}

var _ port.Notifier = (*LogNotifier)(nil)

// ForConfig selects the SMTP notifier when email is enabled and falls back
// to the log notifier otherwise.
func ForConfig(cfg *config.EmailConfig) (port.Notifier, error) {
	if !cfg.Enabled {
		logger.Infof("Email delivery disabled; notifications go to the log.")
		return NewLogNotifier(), nil
	}
	return NewSMTPNotifier(cfg)
}
