package config

import "time"

// RedisConfig enables the checkout lock and payment event publishing.
// An empty Addr disables both.
type RedisConfig struct {
	Addr          string        `yaml:"addr"`
	Password      string        `yaml:"password"`
	DB            int           `yaml:"db"`
	LockTTL       time.Duration `yaml:"lock_ttl"`
	EventsChannel string        `yaml:"events_channel"`
}

func (c *RedisConfig) applyDefaults() {
	if c.LockTTL == 0 {
		c.LockTTL = 2 * time.Minute
	}
	if c.EventsChannel == "" {
		c.EventsChannel = "ticket-payment.events"
	}
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}
