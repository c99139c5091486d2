// Package mail builds and delivers the reminder emails. Messages are
// composed as MIME with go-message and handed to an SMTP server; with
// no SMTP host configured a log-only sender is used instead so local
// development needs no mail server.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/taskdeck/taskdeck/internal/config"
)

// Sender delivers a plain-text email to a single recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewSender returns an SMTP-backed sender when a host is configured,
// otherwise a sender that only logs the message.
func NewSender(cfg config.MailConfig, logger *slog.Logger) Sender {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SMTPHost == "" {
		return &LogSender{logger: logger.With(slog.String("component", "mail_log_sender"))}
	}
	return &SMTPSender{
		addr:   fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:   cfg.From,
		logger: logger.With(slog.String("component", "mail_smtp_sender")),
	}
}

// SMTPSender delivers messages over plain SMTP.
type SMTPSender struct {
	addr   string
	from   string
	logger *slog.Logger
}

// Send implements the Sender interface.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg, err := buildMessage(s.from, to, subject, body)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	if err := smtp.SendMail(s.addr, nil, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", s.addr, err)
	}

	s.logger.Info("reminder email sent",
		slog.String("to", to),
		slog.String("subject", subject))
	return nil
}

// LogSender writes the message to the log instead of delivering it.
type LogSender struct {
	logger *slog.Logger
}

// Send implements the Sender interface.
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Info("mail delivery skipped, no SMTP host configured",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body))
	return nil
}

// buildMessage composes a single-part plain-text MIME message.
func buildMessage(from, to, subject, body string) ([]byte, error) {
	var h mail.Header
	h.SetDate(time.Now().UTC())
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
