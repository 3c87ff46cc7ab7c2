package messaging

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/alem-hub/mentorship-hub/internal/domain/notification"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// EMAIL SENDER
// ══════════════════════════════════════════════════════════════════════════════

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// EmailSender sends plain-text mail over SMTP.
type EmailSender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewEmailSender creates an SMTP sender. Connections are opened per message.
func NewEmailSender(cfg SMTPConfig) *EmailSender {
	return &EmailSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Channel returns ChannelTypeEmail.
func (s *EmailSender) Channel() notification.ChannelType { return notification.ChannelTypeEmail }

// Send delivers msg.
func (s *EmailSender) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("email: recipient has no address")
	}

	if err := s.dialer.DialAndSend(s.build(msg)); err != nil {
		return fmt.Errorf("email: send to %s: %w", msg.To, err)
	}
	return nil
}

func (s *EmailSender) build(msg notification.Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("X-Mentorship-Event", string(msg.Kind))
	m.SetBody("text/plain", msg.Body)
	return m
}

// ══════════════════════════════════════════════════════════════════════════════
// LOG SENDER
// ══════════════════════════════════════════════════════════════════════════════

// LogSender writes messages to the log instead of sending them.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(log *logger.Logger) *LogSender {
	if log == nil {
		log = logger.Default()
	}
	return &LogSender{log: log.With(logger.Component("log-sender"))}
}

// Channel returns ChannelTypeLog.
func (s *LogSender) Channel() notification.ChannelType { return notification.ChannelTypeLog }

// Send logs msg at info level.
func (s *LogSender) Send(_ context.Context, msg notification.Message) error {
	s.log.Info("notification",
		logger.String("to", msg.To),
		logger.String("kind", string(msg.Kind)),
		logger.String("subject", msg.Subject),
		logger.String("body", msg.Body),
	)
	return nil
}
