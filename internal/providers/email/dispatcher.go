package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/smallbiznis/billdesk/internal/observability/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 10 * time.Second

	maxAttachmentBytes = 25 << 20
)

// Message is a single outbound e-mail. A nil Attachment sends no file.
type Message struct {
	To         string
	Subject    string
	HTMLBody   string
	Attachment Attachment
}

type Receipt struct {
	Provider  string
	MessageID string
}

type DispatcherConfig struct {
	From    Address
	ReplyTo string
	Timeout time.Duration
}

// Dispatcher resolves attachments for the configured provider and sends
// through a circuit breaker with a bounded deadline.
type Dispatcher struct {
	provider   Provider
	from       Address
	replyTo    string
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker
	downloader *retryablehttp.Client
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewDispatcher(provider Provider, cfg DispatcherConfig, m *metrics.Metrics, log *zap.Logger) *Dispatcher {
	if provider == nil {
		provider = NoOpProvider{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("email.dispatcher")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "email." + provider.Name(),
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("email circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Dispatcher{
		provider:   provider,
		from:       cfg.From,
		replyTo:    cfg.ReplyTo,
		timeout:    cfg.Timeout,
		breaker:    breaker,
		downloader: newRetryClient(cfg.Timeout, log),
		metrics:    m,
		log:        log,
	}
}

// Send delivers msg. Failures are reported as ErrAttachmentTypeInvalid,
// ErrAttachmentUnavailable, ErrNotifyTimeout or ErrProviderRejected.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (Receipt, error) {
	receipt := Receipt{Provider: d.provider.Name()}

	to := strings.TrimSpace(msg.To)
	if to == "" {
		return receipt, d.fail(ctx, fmt.Errorf("%w: empty recipient", ErrProviderRejected))
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	att, err := d.resolve(ctx, msg.Attachment)
	if err != nil {
		return receipt, d.fail(ctx, d.classify(ctx, err))
	}

	env := Envelope{
		From:       d.from,
		ReplyTo:    d.replyTo,
		To:         []string{to},
		Subject:    msg.Subject,
		HTML:       msg.HTMLBody,
		Attachment: att,
	}

	out, err := d.breaker.Execute(func() (interface{}, error) {
		return d.provider.Send(ctx, env)
	})
	if err != nil {
		return receipt, d.fail(ctx, d.classify(ctx, err))
	}

	receipt.MessageID, _ = out.(string)
	d.metrics.RecordNotification(ctx, d.provider.Name(), "sent")
	d.log.Info("email sent",
		zap.String("provider", d.provider.Name()),
		zap.String("message_id", receipt.MessageID),
	)
	return receipt, nil
}

// resolve turns an Attachment into the payload shape the provider accepts.
func (d *Dispatcher) resolve(ctx context.Context, a Attachment) (*payload, error) {
	switch att := a.(type) {
	case nil:
		return nil, nil
	case URLAttachment:
		u, err := url.Parse(strings.TrimSpace(att.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("%w: url %q", ErrAttachmentTypeInvalid, att.URL)
		}
		if d.provider.SupportsRemoteAttachments() {
			return &payload{FileName: att.name(), RemoteURL: u.String()}, nil
		}
		content, err := d.download(ctx, u.String())
		if err != nil {
			return nil, err
		}
		return &payload{FileName: att.name(), Content: content}, nil
	case PathAttachment:
		if strings.TrimSpace(att.Path) == "" {
			return nil, fmt.Errorf("%w: empty path", ErrAttachmentTypeInvalid)
		}
		content, err := os.ReadFile(att.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAttachmentUnavailable, err)
		}
		return &payload{FileName: baseName(att.Path), Content: content}, nil
	case BytesAttachment:
		if len(att.Data) == 0 {
			return nil, fmt.Errorf("%w: empty content", ErrAttachmentTypeInvalid)
		}
		name := att.FileName
		if name == "" {
			name = "attachment.pdf"
		}
		return &payload{FileName: name, Content: att.Data}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrAttachmentTypeInvalid, a)
	}
}

func (d *Dispatcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachmentUnavailable, err)
	}
	resp, err := d.downloader.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAttachmentUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAttachmentUnavailable, resp.StatusCode)
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAttachmentUnavailable, err)
	}
	if len(content) > maxAttachmentBytes {
		return nil, fmt.Errorf("%w: attachment exceeds %d bytes", ErrAttachmentUnavailable, maxAttachmentBytes)
	}
	return content, nil
}

func (d *Dispatcher) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrAttachmentTypeInvalid),
		errors.Is(err, ErrAttachmentUnavailable) && ctx.Err() == nil,
		errors.Is(err, ErrNotifyTimeout),
		errors.Is(err, ErrProviderRejected):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrNotifyTimeout, err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: circuit open: %v", ErrProviderRejected, err)
	default:
		return fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
}

func (d *Dispatcher) fail(ctx context.Context, err error) error {
	outcome := "rejected"
	switch {
	case errors.Is(err, ErrNotifyTimeout):
		outcome = "timeout"
	case errors.Is(err, ErrAttachmentTypeInvalid):
		outcome = "attachment_invalid"
	case errors.Is(err, ErrAttachmentUnavailable):
		outcome = "attachment_unavailable"
	}
	d.metrics.RecordNotification(context.WithoutCancel(ctx), d.provider.Name(), outcome)
	d.log.Warn("email send failed",
		zap.String("provider", d.provider.Name()),
		zap.String("outcome", outcome),
		zap.Error(err),
	)
	return err
}

func baseName(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	if p == "" {
		return "attachment.pdf"
	}
	return p
}
