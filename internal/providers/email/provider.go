package email

import (
	"context"
	"errors"
)

var (
	ErrAttachmentTypeInvalid = errors.New("attachment_type_invalid")
	ErrAttachmentUnavailable = errors.New("attachment_unavailable")
	ErrNotifyTimeout         = errors.New("notify_timeout")
	ErrProviderRejected      = errors.New("notify_provider_rejected")
)

type Address struct {
	Name  string
	Email string
}

// Envelope is a fully normalized message ready for a provider.
type Envelope struct {
	From       Address
	ReplyTo    string
	To         []string
	Subject    string
	HTML       string
	Attachment *payload
}

// Provider delivers envelopes through one transactional e-mail backend.
type Provider interface {
	Name() string
	// SupportsRemoteAttachments reports whether the provider fetches
	// attachments by URL itself.
	SupportsRemoteAttachments() bool
	// Send returns the provider message id.
	Send(ctx context.Context, env Envelope) (string, error)
}

// NoOpProvider accepts every message without sending it.
type NoOpProvider struct{}

func (NoOpProvider) Name() string                    { return "noop" }
func (NoOpProvider) SupportsRemoteAttachments() bool { return true }

func (NoOpProvider) Send(ctx context.Context, _ Envelope) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "noop", nil
}
