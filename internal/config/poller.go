package config

import (
	"errors"
	"time"
)

const defaultMaturityCheckInterval = 1 * time.Minute

type PollerConfig struct {
	MaturityCheckInterval time.Duration `mapstructure:"maturity-check-interval"`
	MaturedStakesLimit    uint64        `mapstructure:"matured-stakes-limit"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.MaturityCheckInterval <= 0 {
		cfg.MaturityCheckInterval = defaultMaturityCheckInterval
	}

	if cfg.MaturedStakesLimit <= 0 {
		return errors.New("matured-stakes-limit must be positive")
	}

	return nil
}
