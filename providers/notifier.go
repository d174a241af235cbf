package providers

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"weatherbot.app/config"
	"weatherbot.app/errors"
	"weatherbot.app/models"
)

// LogNotifier writes notifications to the structured log. It is the default
// delivery channel when no transport is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(user *models.UserSettings, subject, body string) error {
	slog.Info("weather notification", "chat_id", user.ChatID, "subject", subject, "body", body)
	return nil
}

// SMTPNotifier delivers notifications by email to the address stored in the
// user's settings.
type SMTPNotifier struct {
	smtpHost     string
	smtpPort     int
	smtpUsername string
	smtpPassword string
	fromName     string
	fromAddress  string
}

func NewSMTPNotifier(cfg *config.NotifierConfig) *SMTPNotifier {
	return &SMTPNotifier{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromName:     cfg.FromName,
		fromAddress:  cfg.FromAddress,
	}
}

func (n *SMTPNotifier) Notify(user *models.UserSettings, subject, body string) error {
	if user.Email == "" {
		return errors.NewValidationError("user has no email address configured")
	}
	if subject == "" {
		return errors.NewValidationError("notification subject cannot be empty")
	}

	auth := smtp.PlainAuth("", n.smtpUsername, n.smtpPassword, n.smtpHost)

	// Remove line breaks from the subject to prevent header injection
	subject = strings.ReplaceAll(strings.ReplaceAll(subject, "\r\n", ""), "\n", "")

	from := fmt.Sprintf("%s <%s>", n.fromName, n.fromAddress)
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n",
		from, user.Email, subject)

	message := headers + body
	smtpAddr := fmt.Sprintf("%s:%d", n.smtpHost, n.smtpPort)

	if err := smtp.SendMail(smtpAddr, auth, n.fromAddress, []string{user.Email}, []byte(message)); err != nil {
		return errors.NewNotificationError("failed to send notification email", err)
	}

	return nil
}

// NewNotifier builds the delivery channel selected by configuration
func NewNotifier(cfg *config.NotifierConfig) (Notifier, error) {
	switch cfg.Type {
	case "log":
		return NewLogNotifier(), nil
	case "smtp":
		return NewSMTPNotifier(cfg), nil
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unknown notifier type %q", cfg.Type), nil)
	}
}
