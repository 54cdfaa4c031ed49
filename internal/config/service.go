package config

import (
	"strings"
	"time"
)

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	ClientURL   string `yaml:"client_url"`
	// EventName is shown on the checkout widget and used as statement descriptor.
	EventName string `yaml:"event_name"`
	JWTSecret string `yaml:"jwt_secret"`
	// SettingsEncryptionKey is a 64 hex char AES-256 key for the stored secret
	// key. Empty stores the secret key unencrypted.
	SettingsEncryptionKey string       `yaml:"settings_encryption_key"`
	Stripe                StripeConfig `yaml:"stripe"`
}

type StripeConfig struct {
	// SecretKey and PublicKey seed the settings store on first start only.
	SecretKey string `yaml:"secret_key"`
	PublicKey string `yaml:"public_key"`

	// PredefinedAccounts are operator supplied credentials selectable by key.
	// They are never written to the settings store.
	PredefinedAccounts  map[string]PredefinedAccountConfig `yaml:"predefined_accounts"`
	SupportedCurrencies []string                           `yaml:"supported_currencies"`

	// APIURL overrides the Stripe API base URL (tests, stripe-mock).
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`

	// ReconcileOnNetworkError enables a read-only charge lookup after a
	// NETWORK_ERROR before the attempt is reported as failed.
	ReconcileOnNetworkError *bool `yaml:"reconcile_on_network_error"`
}

type PredefinedAccountConfig struct {
	Label     string `yaml:"label"`
	SecretKey string `yaml:"secret_key"`
	PublicKey string `yaml:"public_key"`
}

func (c *StripeConfig) applyDefaults() {
	if len(c.SupportedCurrencies) == 0 {
		c.SupportedCurrencies = []string{"AUD", "USD"}
	}
	for i, currency := range c.SupportedCurrencies {
		c.SupportedCurrencies[i] = strings.ToUpper(strings.TrimSpace(currency))
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.ReconcileOnNetworkError == nil {
		enabled := true
		c.ReconcileOnNetworkError = &enabled
	}
}

func (c StripeConfig) Reconcile() bool {
	return c.ReconcileOnNetworkError != nil && *c.ReconcileOnNetworkError
}
