// Package mailer delivers outgoing email. Delivery itself is delegated to an
// SMTP relay; the log backend is meant for local development.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"github.com/yamdb/backend/internal/config"
	"github.com/yamdb/backend/pkg/logger"
	"go.uber.org/zap"
)

const sendTimeout = 15 * time.Second

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the backend configured by MAIL_BACKEND.
func New(cfg *config.Config) (Mailer, error) {
	if cfg.MailBackend == config.MailBackendSMTP {
		return NewSMTPMailer(SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			From:      cfg.MailFrom,
			TLSPolicy: cfg.SMTPTLSPolicy,
		})
	}
	return NewLogMailer(cfg.MailFrom), nil
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	TLSPolicy string
}

// SMTPMailer relays messages through an SMTP server. One connection is
// opened per message.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	policy, err := tlsPolicy(cfg.TLSPolicy)
	if err != nil {
		return nil, err
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(policy),
		mail.WithTimeout(sendTimeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

func tlsPolicy(name string) (mail.TLSPolicy, error) {
	switch name {
	case "", config.SMTPTLSOpportunistic:
		return mail.TLSOpportunistic, nil
	case config.SMTPTLSMandatory:
		return mail.TLSMandatory, nil
	case config.SMTPTLSNone:
		return mail.NoTLS, nil
	}
	return mail.NoTLS, fmt.Errorf("unknown smtp tls policy %q", name)
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	start := time.Now()

	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return fmt.Errorf("sender address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("recipient address: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		logger.Log.Error("Failed to send email",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return fmt.Errorf("send mail: %w", err)
	}

	logger.Log.Info("Email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	from string
}

func NewLogMailer(from string) *LogMailer {
	return &LogMailer{from: from}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Log.Info("Email (log backend)",
		zap.String("from", m.from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
