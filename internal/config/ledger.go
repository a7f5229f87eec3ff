package config

import (
	"errors"
	"time"
)

type LedgerConfig struct {
	// CustodyAddress is the asset-ledger address that holds staked funds.
	CustodyAddress string `mapstructure:"custody-address"`
	// OwnerAddress is the only caller allowed on the administrative surface.
	OwnerAddress string `mapstructure:"owner-address"`
	// MinStakingPeriod gates unstake and normalizes the reward rate.
	MinStakingPeriod time.Duration `mapstructure:"min-staking-period"`
	// RewardRatePercent falls back to the ledger default when not set.
	RewardRatePercent int64 `mapstructure:"reward-rate-percent"`
}

func (cfg *LedgerConfig) Validate() error {
	if cfg.CustodyAddress == "" {
		return errors.New("ledger custody-address is required")
	}
	if cfg.OwnerAddress == "" {
		return errors.New("ledger owner-address is required")
	}
	if cfg.CustodyAddress == cfg.OwnerAddress {
		return errors.New("ledger custody-address and owner-address must differ")
	}
	if cfg.MinStakingPeriod < time.Second {
		return errors.New("ledger min-staking-period must be at least one second")
	}
	if cfg.RewardRatePercent < 0 {
		return errors.New("ledger reward-rate-percent must not be negative")
	}

	return nil
}
