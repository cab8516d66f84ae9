// Package config provides configuration resolution and shared defaults for
// the basekit-mcp server. Resolution is synchronous and performs no I/O so it
// is safe to run lazily on the first tool call.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Environment keys read by Resolve. Override values are mirrored back into
// the environment so components reading these keys directly observe the same
// values.
const (
	EnvBackendURL    = "BASEKIT_URL"
	EnvAdminEmail    = "BASEKIT_ADMIN_EMAIL"
	EnvAdminPassword = "BASEKIT_ADMIN_PASSWORD"
	EnvStripeSecret  = "STRIPE_SECRET_KEY"
	EnvSMTPHost      = "SMTP_HOST"
	EnvSMTPPort      = "SMTP_PORT"
	EnvSMTPUsername  = "SMTP_USERNAME"
	EnvSMTPPassword  = "SMTP_PASSWORD"
	EnvSMTPFrom      = "SMTP_FROM"
)

// Config is the resolved configuration for one initialization attempt.
// It is immutable once resolved; a later attempt resolves a fresh value.
type Config struct {
	BackendURL    string
	AdminEmail    string
	AdminPassword string

	StripeSecretKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Overrides carries explicit configuration values that take precedence over
// the environment. A nil field means "use the environment".
type Overrides struct {
	BackendURL    string
	AdminEmail    string
	AdminPassword string

	StripeSecretKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Result is the outcome of a configuration resolution. Resolution itself
// never fails; Valid reports whether the resulting Config is usable for a
// backend connection attempt and ErrText carries the reason when it is not.
type Result struct {
	Config  Config
	Valid   bool
	ErrText string
}

// Resolve builds a Config from the process environment, applying override
// values where present. Overrides are mirrored into the environment.
func Resolve(override *Overrides) Result {
	if override != nil {
		mirrorOverrides(override)
	}

	cfg := Config{
		BackendURL:      os.Getenv(EnvBackendURL),
		AdminEmail:      os.Getenv(EnvAdminEmail),
		AdminPassword:   os.Getenv(EnvAdminPassword),
		StripeSecretKey: os.Getenv(EnvStripeSecret),
		SMTPHost:        os.Getenv(EnvSMTPHost),
		SMTPUsername:    os.Getenv(EnvSMTPUsername),
		SMTPPassword:    os.Getenv(EnvSMTPPassword),
		SMTPFrom:        os.Getenv(EnvSMTPFrom),
	}

	if portStr := os.Getenv(EnvSMTPPort); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.SMTPPort = port
		}
	}

	if err := cfg.validate(); err != nil {
		return Result{Config: cfg, Valid: false, ErrText: err.Error()}
	}

	return Result{Config: cfg, Valid: true}
}

// mirrorOverrides writes non-zero override fields into the environment so
// that the canonical keys are the single source of truth.
func mirrorOverrides(o *Overrides) {
	set := func(key, value string) {
		if value != "" {
			os.Setenv(key, value)
		}
	}

	set(EnvBackendURL, o.BackendURL)
	set(EnvAdminEmail, o.AdminEmail)
	set(EnvAdminPassword, o.AdminPassword)
	set(EnvStripeSecret, o.StripeSecretKey)
	set(EnvSMTPHost, o.SMTPHost)
	set(EnvSMTPUsername, o.SMTPUsername)
	set(EnvSMTPPassword, o.SMTPPassword)
	set(EnvSMTPFrom, o.SMTPFrom)
	if o.SMTPPort != 0 {
		os.Setenv(EnvSMTPPort, strconv.Itoa(o.SMTPPort))
	}
}

// validate performs shallow validation: URL well-formedness and credential
// pairing. Optional service settings are never a validity failure.
func (c Config) validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("%s is not set", EnvBackendURL)
	}

	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid backend URL %q: %w", c.BackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend URL %q must use http or https", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("backend URL %q has no host", c.BackendURL)
	}

	// Admin credentials are optional, but must come as a pair.
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("admin credentials must include both %s and %s", EnvAdminEmail, EnvAdminPassword)
	}

	return nil
}

// HasAdminCredentials reports whether an authentication attempt is possible.
func (c Config) HasAdminCredentials() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// HasPaymentConfig reports whether the payment service can be activated.
func (c Config) HasPaymentConfig() bool {
	return c.StripeSecretKey != ""
}

// HasEmailConfig reports whether the email service can be activated.
func (c Config) HasEmailConfig() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
