package config

import (
	"errors"
	"fmt"
)

type APIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (cfg *APIConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("api host is required")
	}
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return errors.New("api port must be between 1024 and 65535 (inclusive)")
	}

	return nil
}

func (cfg *APIConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
