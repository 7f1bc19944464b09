package email

import (
	"context"
	"errors"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendProvider sends through the Resend API.
type ResendProvider struct {
	client *resend.Client
}

func NewResendProvider(apiKey string) (*ResendProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("resend api key is required")
	}
	return &ResendProvider{client: resend.NewClient(apiKey)}, nil
}

func (p *ResendProvider) Name() string                    { return "resend" }
func (p *ResendProvider) SupportsRemoteAttachments() bool { return true }

func (p *ResendProvider) Send(ctx context.Context, env Envelope) (string, error) {
	params := &resend.SendEmailRequest{
		From:    formatAddress(env.From),
		To:      env.To,
		Subject: env.Subject,
		Html:    env.HTML,
		ReplyTo: env.ReplyTo,
	}
	if att := env.Attachment; att != nil {
		item := &resend.Attachment{Filename: att.FileName}
		if att.RemoteURL != "" {
			item.Path = att.RemoteURL
		} else {
			item.Content = att.Content
		}
		params.Attachments = []*resend.Attachment{item}
	}

	sent, err := p.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", err
	}
	return sent.Id, nil
}

func formatAddress(a Address) string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}
