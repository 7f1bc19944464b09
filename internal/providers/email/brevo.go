package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

type BrevoConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// BrevoProvider sends through the Brevo transactional e-mail API.
type BrevoProvider struct {
	apiKey  string
	baseURL string
	client  *retryablehttp.Client
	log     *zap.Logger
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoAttachment struct {
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
	Name    string `json:"name"`
}

type brevoRequest struct {
	Sender      brevoContact      `json:"sender"`
	To          []brevoContact    `json:"to"`
	ReplyTo     *brevoContact     `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func NewBrevoProvider(cfg BrevoConfig, log *zap.Logger) (*BrevoProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("brevo api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.brevo.com/v3"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BrevoProvider{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  newRetryClient(cfg.Timeout, log.Named("brevo")),
		log:     log.Named("email.brevo"),
	}, nil
}

func (p *BrevoProvider) Name() string                    { return "brevo" }
func (p *BrevoProvider) SupportsRemoteAttachments() bool { return true }

func (p *BrevoProvider) Send(ctx context.Context, env Envelope) (string, error) {
	body := brevoRequest{
		Sender:      brevoContact{Name: env.From.Name, Email: env.From.Email},
		Subject:     env.Subject,
		HTMLContent: env.HTML,
	}
	for _, to := range env.To {
		body.To = append(body.To, brevoContact{Email: to})
	}
	if env.ReplyTo != "" {
		body.ReplyTo = &brevoContact{Email: env.ReplyTo}
	}
	if att := env.Attachment; att != nil {
		item := brevoAttachment{Name: att.FileName}
		if att.RemoteURL != "" {
			item.URL = att.RemoteURL
		} else {
			item.Content = base64.StdEncoding.EncodeToString(att.Content)
		}
		body.Attachment = []brevoAttachment{item}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/smtp/email", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out brevoResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(data, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("brevo: status %d: %s %s", resp.StatusCode, out.Code, out.Message)
	}
	return out.MessageID, nil
}
