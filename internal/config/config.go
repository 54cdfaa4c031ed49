package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wekeepgrowing/ticket-payment/pkg/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      logger.Config  `yaml:"log"`
}

func LoadConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/payment.yaml"
	}
	return LoadConfigFile(configPath)
}

// LoadConfigFile reads a YAML config file. ${VAR} references are expanded from
// the environment so that Stripe secrets never have to live in the file.
func LoadConfigFile(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes YAML config and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "ticket-payment"
	}
	c.Service.Stripe.applyDefaults()
	c.Database.applyDefaults()
	c.Redis.applyDefaults()
	if c.Server.HTTP.Port == 0 {
		c.Server.HTTP.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	for key, account := range c.Service.Stripe.PredefinedAccounts {
		if account.SecretKey == "" || account.PublicKey == "" {
			return fmt.Errorf("predefined account %q: secret_key and public_key are required", key)
		}
	}
	if key := c.Service.SettingsEncryptionKey; key != "" && len(key) != 64 {
		return fmt.Errorf("service.settings_encryption_key must be 64 hex characters")
	}
	if len(c.Service.Stripe.SupportedCurrencies) == 0 {
		return fmt.Errorf("stripe.supported_currencies must not be empty")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	return nil
}
