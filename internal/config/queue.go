package config

import (
	"errors"
	"time"
)

type QueueConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Url      string `mapstructure:"url"`
	// QueueName is the queue staking events are published to.
	QueueName        string        `mapstructure:"queue-name"`
	PublishTimeout   time.Duration `mapstructure:"publish-timeout"`
	MaxRetryAttempts uint          `mapstructure:"max-retry-attempts"`
	RetryInterval    time.Duration `mapstructure:"retry-interval"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.User == "" {
		return errors.New("queue user is required")
	}
	if cfg.Password == "" {
		return errors.New("queue password is required")
	}
	if cfg.Url == "" {
		return errors.New("queue url is required")
	}
	if cfg.QueueName == "" {
		return errors.New("queue queue-name is required")
	}
	if cfg.PublishTimeout <= 0 {
		return errors.New("queue publish-timeout must be positive")
	}
	if cfg.MaxRetryAttempts == 0 {
		return errors.New("queue max-retry-attempts must be positive")
	}
	if cfg.RetryInterval <= 0 {
		return errors.New("queue retry-interval must be positive")
	}

	return nil
}
