package services

import (
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/basekit-labs/basekit-mcp/internal/config"
	"github.com/basekit-labs/basekit-mcp/internal/lifecycle"
)

// EmailService bundles the SMTP client with the configured sender address.
type EmailService struct {
	Client *mail.Client
	From   string
}

// EmailActivator constructs the SMTP email adapter.
type EmailActivator struct {
	logger *slog.Logger
}

// NewEmailActivator creates the email activator.
func NewEmailActivator(logger *slog.Logger) *EmailActivator {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailActivator{logger: logger}
}

// Name implements lifecycle.Activator.
func (a *EmailActivator) Name() string {
	return CapabilityEmail
}

// TryActivate constructs an SMTP client when mail settings are configured.
// Construction validates options but opens no connection.
func (a *EmailActivator) TryActivate(_ lifecycle.Conn, cfg config.Config) (any, error) {
	if !cfg.HasEmailConfig() {
		return nil, fmt.Errorf("%s and %s must be set", config.EnvSMTPHost, config.EnvSMTPFrom)
	}

	opts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPPort != 0 {
		opts = append(opts, mail.WithPort(cfg.SMTPPort))
	}
	if cfg.SMTPUsername != "" || cfg.SMTPPassword != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	mc, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("construct mail client: %w", err)
	}

	a.logger.Debug("email client constructed", "host", cfg.SMTPHost)
	return &EmailService{Client: mc, From: cfg.SMTPFrom}, nil
}
