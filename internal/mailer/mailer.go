// Package mailer delivers certificate PDFs over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"dcportal/internal/config"
)

// Mailer sends one message with a single PDF attachment.
type Mailer interface {
	// Verify checks the SMTP connection and credentials before a batch.
	Verify(ctx context.Context) error
	Send(ctx context.Context, to, subject, body, attachmentName string, attachment []byte) error
}

// Unconfigured stands in when no SMTP settings were provided. Verify fails,
// so an email batch returns one clear error instead of a failure per row.
type Unconfigured struct{}

func (Unconfigured) Verify(ctx context.Context) error {
	return fmt.Errorf("SMTP connection failed: mailer not configured")
}

func (Unconfigured) Send(ctx context.Context, to, subject, body, attachmentName string, attachment []byte) error {
	return fmt.Errorf("mailer not configured")
}

type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTP(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP_HOST is not configured")
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

func (m *SMTPMailer) Verify(ctx context.Context) error {
	if err := m.client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("SMTP connection failed: %w", err)
	}
	return m.client.Close()
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body, attachmentName string, attachment []byte) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	if err := msg.AttachReader(attachmentName, bytes.NewReader(attachment)); err != nil {
		return err
	}
	return m.client.DialAndSendWithContext(ctx, msg)
}
