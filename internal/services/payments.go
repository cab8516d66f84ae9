// Package services provides the dependent service activators: optional
// subsystems constructed once the backend connection is up. Each activation
// is independently optional and independently fallible; a failure is a
// capability gap, never an initialization failure.
package services

import (
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v82/client"

	"github.com/basekit-labs/basekit-mcp/internal/config"
	"github.com/basekit-labs/basekit-mcp/internal/lifecycle"
)

// Capability names as exposed to tool handlers.
const (
	CapabilityPayments = "payments"
	CapabilityEmail    = "email"
)

// PaymentsActivator constructs the Stripe payment-processor adapter.
type PaymentsActivator struct {
	logger *slog.Logger
}

// NewPaymentsActivator creates the payments activator.
func NewPaymentsActivator(logger *slog.Logger) *PaymentsActivator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentsActivator{logger: logger}
}

// Name implements lifecycle.Activator.
func (a *PaymentsActivator) Name() string {
	return CapabilityPayments
}

// TryActivate constructs a Stripe API client when a secret key is
// configured. Construction performs no network I/O.
func (a *PaymentsActivator) TryActivate(_ lifecycle.Conn, cfg config.Config) (any, error) {
	if !cfg.HasPaymentConfig() {
		return nil, fmt.Errorf("%s is not set", config.EnvStripeSecret)
	}

	sc := client.New(cfg.StripeSecretKey, nil)
	a.logger.Debug("payment processor client constructed")
	return sc, nil
}
