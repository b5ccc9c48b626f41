package config

import (
	"sync"
)

type Config struct {
	// ThermalMonitoring controls whether discovered adapters get hwmon
	// attribute files.
	ThermalMonitoring bool
	// SSLVerify controls TLS verification for outbound log shipping.
	SSLVerify bool
}

var (
	config *Config
	once   sync.Once
)

func NewConfig(c *Config) {
	once.Do(func() {
		if c != nil {
			config = c
		} else {
			config = &Config{}
		}
	})
}

func GetConfig() *Config {
	if config != nil {
		return config
	}

	NewConfig(nil)
	return config
}
