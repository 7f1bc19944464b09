package email

import (
	"fmt"

	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
	fx.Provide(NewDispatcherFromConfig),
)

// NewFromConfig selects the provider named by EMAIL_PROVIDER.
func NewFromConfig(cfg config.Config, log *zap.Logger) (Provider, error) {
	switch cfg.Email.Provider {
	case "", "noop":
		log.Warn("email provider disabled, notifications will be dropped")
		return NoOpProvider{}, nil
	case "brevo":
		return NewBrevoProvider(BrevoConfig{
			APIKey:  cfg.Email.BrevoAPIKey,
			BaseURL: cfg.Email.BrevoBaseURL,
			Timeout: cfg.Email.Timeout,
		}, log)
	case "resend":
		return NewResendProvider(cfg.Email.ResendAPIKey)
	case "smtp":
		return NewSMTPProvider(SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
		})
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Email.Provider)
	}
}

func NewDispatcherFromConfig(cfg config.Config, provider Provider, m *metrics.Metrics, log *zap.Logger) *Dispatcher {
	return NewDispatcher(provider, DispatcherConfig{
		From:    Address{Name: cfg.Email.FromName, Email: cfg.Email.FromAddress},
		ReplyTo: cfg.Email.ReplyTo,
		Timeout: cfg.Email.Timeout,
	}, m, log)
}
