package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	jemail "github.com/jordan-wright/email"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPProvider relays through a plain SMTP server. Attachments must be
// resolved to bytes before Send.
type SMTPProvider struct {
	cfg SMTPConfig
}

func NewSMTPProvider(cfg SMTPConfig) (*SMTPProvider, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPProvider{cfg: cfg}, nil
}

func (p *SMTPProvider) Name() string                    { return "smtp" }
func (p *SMTPProvider) SupportsRemoteAttachments() bool { return false }

func (p *SMTPProvider) Send(ctx context.Context, env Envelope) (string, error) {
	e := jemail.NewEmail()
	e.From = formatAddress(env.From)
	e.To = env.To
	e.Subject = env.Subject
	e.HTML = []byte(env.HTML)
	if env.ReplyTo != "" {
		e.ReplyTo = []string{env.ReplyTo}
	}
	if att := env.Attachment; att != nil {
		if att.RemoteURL != "" {
			return "", fmt.Errorf("smtp: %w: remote attachments unsupported", ErrAttachmentTypeInvalid)
		}
		if _, err := e.Attach(bytes.NewReader(att.Content), att.FileName, "application/pdf"); err != nil {
			return "", err
		}
	}

	var auth smtp.Auth
	if p.cfg.Username != "" {
		auth = smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	// net/smtp has no context support; the relay keeps running after the
	// deadline but its result is discarded.
	done := make(chan error, 1)
	go func() { done <- e.Send(addr, auth) }()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", err
		}
	}
	return "", nil
}
